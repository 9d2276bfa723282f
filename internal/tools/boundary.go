package tools

import (
	"context"
	"errors"
	"fmt"

	"monarchmcp/internal/monarch"
	"monarchmcp/internal/session"
	"monarchmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// handlerFunc is a tool body: it returns the text payload for the caller or
// an error for the boundary to render.
type handlerFunc func(ctx context.Context, request mcp.CallToolRequest) (string, error)

// withToolErrors is the uniform error boundary applied to every tool at
// registration time. Whatever the body returns, the MCP layer always
// receives a text result and a nil error: callers of this server never
// observe a raised failure.
func withToolErrors(operation string, handler handlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := handler(ctx, request)
		if err != nil {
			return mcp.NewToolResultText(renderToolError(operation, err)), nil
		}
		return mcp.NewToolResultText(result), nil
	}
}

// renderToolError converts an error into the user-facing message for one
// tool invocation. Matching is ordered and the first match wins; the
// recovery branch must come first because a RecoveryError keeps the
// original transport failure in its causal chain.
func renderToolError(operation string, err error) string {
	var recoveryErr *session.RecoveryError
	var srvErr *monarch.TransportServerError
	var queryErr *monarch.TransportQueryError
	var transportErr *monarch.TransportError

	switch {
	case errors.As(err, &recoveryErr):
		logging.Error("Tools", err, "runtime error %s", operation)
		return fmt.Sprintf("Error %s: %s", operation, recoveryErr.Error())

	case errors.Is(err, session.ErrAuthenticationNeeded):
		logging.Error("Tools", err, "runtime error %s", operation)
		return fmt.Sprintf("Error %s: %v", operation, err)

	case errors.As(err, &srvErr):
		logging.Error("Tools", err, "Monarch API HTTP %d error %s", srvErr.Code, operation)
		return fmt.Sprintf("Error %s: Monarch API returned HTTP %d", operation, srvErr.Code)

	case errors.As(err, &queryErr):
		logging.Error("Tools", err, "Monarch API query error %s", operation)
		return fmt.Sprintf("Error %s: API query failed: %v", operation, queryErr)

	case errors.As(err, &transportErr):
		logging.Error("Tools", err, "Monarch API connection error %s", operation)
		return fmt.Sprintf("Error %s: connection error: %v", operation, transportErr.Unwrap())

	default:
		logging.Error("Tools", err, "unexpected error %s (%T)", operation, err)
		return fmt.Sprintf("Error %s: %v", operation, err)
	}
}
