package tools

import (
	"context"
	"regexp"
	"strings"

	"monarchmcp/internal/monarch"

	"github.com/mark3labs/mcp-go/mcp"
)

var tagColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (s *Server) handleGetTransactionTags(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	result, err := s.acquireAndRun(ctx, "getting transaction tags", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.GetTransactionTags(ctx)
	})
	if err != nil {
		return "", err
	}

	data, _ := result.(map[string]any)
	tagList := make([]map[string]any, 0)
	for _, raw := range listField(data, "householdTransactionTags") {
		tag, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		tagList = append(tagList, map[string]any{
			"id":               tag["id"],
			"name":             tag["name"],
			"color":            tag["color"],
			"order":            tag["order"],
			"transactionCount": tag["transactionCount"],
		})
	}

	return marshalJSON(tagList)
}

func (s *Server) handleCreateTransactionTag(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()
	name := stringArg(args, "name")
	color := stringArg(args, "color")

	if !tagColorPattern.MatchString(color) {
		return jsonError("Invalid color format. Use hex RGB with # (e.g., '#19D2A5')"), nil
	}
	if strings.TrimSpace(name) == "" {
		return jsonError("Tag name cannot be empty"), nil
	}

	result, err := s.acquireAndRun(ctx, "creating transaction tag", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.CreateTransactionTag(ctx, name, color)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func (s *Server) handleDeleteTransactionTag(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	tagID := stringArg(request.GetArguments(), "tag_id")

	_, err := s.acquireAndRun(ctx, "deleting transaction tag", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		variables := map[string]any{"tagId": tagID}
		return client.GQLCall(ctx, "Common_DeleteTransactionTag", monarch.MutationDeleteTransactionTag, variables)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(map[string]any{"deleted": true, "tag_id": tagID})
}

func (s *Server) handleSetTransactionTags(ctx context.Context, request mcp.CallToolRequest) (string, error) {
	args := request.GetArguments()
	transactionID := stringArg(args, "transaction_id")
	tagIDs, ok := stringSliceArg(args, "tag_ids")
	if !ok {
		return jsonError("tag_ids must be a list of tag ID strings"), nil
	}

	result, err := s.acquireAndRun(ctx, "setting transaction tags", func(ctx context.Context, client *monarch.Client) (map[string]any, error) {
		return client.SetTransactionTags(ctx, transactionID, tagIDs)
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}
