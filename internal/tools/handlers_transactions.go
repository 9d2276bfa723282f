package tools

import (
	"context"

	"monarchmcp/internal/monarch"

	"github.com/mark3labs/mcp-go/mcp"
)

const datePairError = "Both start_date and end_date are required when filtering by date."

// datePair validates the both-or-neither date filter convention shared by
// the transaction, budget, and cashflow tools.
func datePair(args map[string]any) (start, end string, ok bool) {
	start = stringArg(args, "start_date")
	end = stringArg(args, "end_date")
	if (start == "") != (end == "") {
		return "", "", false
	}
	return start, end, true
}

func (s *Server) handleGetTransactions(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()
	start, end, ok := datePair(args)
	if !ok {
		return jsonError(datePairError), nil
	}

	filter := monarch.TransactionFilter{
		Limit:     intArg(args, "limit", 100),
		Offset:    intArg(args, "offset", 0),
		StartDate: start,
		EndDate:   end,
	}
	if accountID := stringArg(args, "account_id"); accountID != "" {
		filter.AccountIDs = []string{accountID}
	}

	result, err := s.acquireAndRun(ctx, "getting transactions", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.GetTransactions(ctx, filter)
	})
	if err != nil {
		return "", err
	}

	data, _ := result.(map[string]any)
	transactionList := make([]map[string]any, 0)
	for _, raw := range listField(subMap(data, "allTransactions"), "results") {
		txn, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		var category, merchant any
		if c := subMap(txn, "category"); c != nil {
			category = c["name"]
		}
		if m := subMap(txn, "merchant"); m != nil {
			merchant = m["name"]
		}

		tags := make([]map[string]any, 0)
		for _, rawTag := range listField(txn, "tags") {
			if tag, ok := rawTag.(map[string]any); ok {
				tags = append(tags, map[string]any{
					"id":    tag["id"],
					"name":  tag["name"],
					"color": tag["color"],
				})
			}
		}

		pending, _ := txn["pending"].(bool)
		recurring, _ := txn["isRecurring"].(bool)

		transactionList = append(transactionList, map[string]any{
			"id":            txn["id"],
			"date":          txn["date"],
			"amount":        txn["amount"],
			"original_name": txn["plaidName"],
			"category":      category,
			"account":       subMap(txn, "account")["displayName"],
			"merchant":      merchant,
			"notes":         txn["notes"],
			"is_pending":    pending,
			"is_recurring":  recurring,
			"tags":          tags,
		})
	}

	return marshalJSON(transactionList)
}

func (s *Server) handleGetBudgets(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	start, end, ok := datePair(request.GetArguments())
	if !ok {
		return jsonError(datePairError), nil
	}

	result, err := s.acquireAndRun(ctx, "getting budgets", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.GetBudgets(ctx, start, end)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) handleGetCashflow(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	start, end, ok := datePair(request.GetArguments())
	if !ok {
		return jsonError(datePairError), nil
	}

	result, err := s.acquireAndRun(ctx, "getting cashflow", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.GetCashflow(ctx, start, end)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) handleCreateTransaction(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()

	input := monarch.CreateTransactionInput{
		AccountID:    stringArg(args, "account_id"),
		MerchantName: stringArg(args, "merchant_name"),
		CategoryID:   stringArg(args, "category_id"),
		Date:         stringArg(args, "date"),
		Notes:        stringArg(args, "notes"),
	}
	if amount, ok := args["amount"].(float64); ok {
		input.Amount = amount
	}

	result, err := s.acquireAndRun(ctx, "creating transaction", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.CreateTransaction(ctx, input)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) handleUpdateTransaction(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()

	input := monarch.UpdateTransactionInput{
		TransactionID:   stringArg(args, "transaction_id"),
		CategoryID:      optionalStringArg(args, "category_id"),
		MerchantName:    optionalStringArg(args, "merchant_name"),
		GoalID:          optionalStringArg(args, "goal_id"),
		Amount:          optionalFloatArg(args, "amount"),
		Date:            optionalStringArg(args, "date"),
		HideFromReports: optionalBoolArg(args, "hide_from_reports"),
		NeedsReview:     optionalBoolArg(args, "needs_review"),
		Notes:           optionalStringArg(args, "notes"),
	}

	result, err := s.acquireAndRun(ctx, "updating transaction", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.UpdateTransaction(ctx, input)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) handleDeleteTransaction(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	transactionID := stringArg(request.GetArguments(), "transaction_id")

	_, err := s.acquireAndRun(ctx, "deleting transaction", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"deleted": true, "transaction_id": transactionID})
}
