package tools

import (
	"context"
	"errors"
	"time"

	"monarchmcp/internal/monarch"
	"monarchmcp/pkg/logging"

	"github.com/cenkalti/backoff/v4"
	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) handleGetAccounts(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	result, err := s.runner.Run(ctx, "getting accounts", func(ctx context.Context) (any, error) {
		client, err := s.manager.AcquireClient(ctx)
		if err != nil {
			return nil, err
		}
		return client.GetAccounts(ctx)
	})
	if err != nil {
		return "", err
	}

	data, _ := result.(map[string]any)
	accountList := make([]map[string]any, 0)
	for _, raw := range listField(data, "accounts") {
		account, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		name := account["displayName"]
		if name == nil {
			name = account["name"]
		}

		var isActive any
		if active, ok := account["isActive"]; ok {
			isActive = active
		} else {
			isActive = account["deactivatedAt"] == nil
		}

		accountList = append(accountList, map[string]any{
			"id":          account["id"],
			"name":        name,
			"type":        subMap(account, "type")["name"],
			"balance":     account["currentBalance"],
			"institution": subMap(account, "institution")["name"],
			"is_active":   isActive,
		})
	}

	return marshalJSON(accountList)
}

func (s *Server) handleGetAccountHoldings(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	accountID := stringArg(request.GetArguments(), "account_id")

	result, err := s.acquireAndRun(ctx, "getting account holdings", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.GetAccountHoldings(ctx, accountID)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// errSyncInProgress marks a refresh poll that should be retried.
var errSyncInProgress = errors.New("account sync still in progress")

const (
	refreshPollInitialInterval = 500 * time.Millisecond
	refreshPollMaxRetries      = 4
)

func (s *Server) handleRefreshAccounts(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	result, err := s.runner.Run(ctx, "refreshing accounts", func(ctx context.Context) (any, error) {
		client, err := s.manager.AcquireClient(ctx)
		if err != nil {
			return nil, err
		}

		accounts, err := client.GetAccounts(ctx)
		if err != nil {
			return nil, err
		}

		var accountIDs []string
		for _, raw := range listField(accounts, "accounts") {
			account, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if id, ok := account["id"].(string); ok && id != "" {
				accountIDs = append(accountIDs, id)
			}
		}
		if len(accountIDs) == 0 {
			return map[string]any{"error": "No accounts found to refresh."}, nil
		}

		requested, err := client.RequestAccountsRefresh(ctx, accountIDs)
		if err != nil {
			return nil, err
		}

		// The institution sync runs asynchronously on Monarch's side. Poll
		// briefly with exponential backoff; an incomplete sync is not a
		// failure, the caller just sees sync_complete: false.
		synced := false
		poll := func() error {
			done, err := client.IsAccountsRefreshComplete(ctx, accountIDs)
			if err != nil {
				return backoff.Permanent(err)
			}
			if !done {
				return errSyncInProgress
			}
			synced = true
			return nil
		}

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = refreshPollInitialInterval
		pollErr := backoff.Retry(poll, backoff.WithContext(
			backoff.WithMaxRetries(policy, refreshPollMaxRetries), ctx))
		if pollErr != nil && !errors.Is(pollErr, errSyncInProgress) {
			return nil, pollErr
		}
		if !synced {
			logging.Info("Tools", "account refresh requested; sync still running after %d polls", refreshPollMaxRetries+1)
		}

		return map[string]any{
			"requested":     requested,
			"account_count": len(accountIDs),
			"sync_complete": synced,
		}, nil
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// acquireAndRun trims the boilerplate for the single-call tool bodies.
func (s *Server) acquireAndRun(ctx context.Context, operation string, call func(ctx context.Context, client *monarch.Client) (map[string]any, error)) (any, error) {
	return s.runner.Run(ctx, operation, func(ctx context.Context) (any, error) {
		client, err := s.manager.AcquireClient(ctx)
		if err != nil {
			return nil, err
		}
		return call(ctx, client)
	})
}
