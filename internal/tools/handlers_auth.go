package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

const setupInstructions = `Monarch Money - Authentication

Authentication happens automatically in your browser:

1. When the MCP server starts without a saved session, a login page
   opens in your browser automatically

2. Enter your Monarch Money email and password

3. Provide your 2FA code if you have MFA enabled

4. Once authenticated, the token is saved to your system keyring

Then start using Monarch tools in your assistant:
   - get_accounts - View all accounts
   - get_transactions - Recent transactions
   - get_budgets - Budget information

Session persists across assistant restarts (weeks/months).
Expired sessions are re-authenticated automatically.
Credentials are entered in your browser, never through the assistant.

Alternative: run 'monarch-mcp auth login' in a terminal for
headless environments where a browser is not available.`

func (s *Server) handleSetupAuthentication(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(setupInstructions), nil
}

// handleCheckAuthStatus reports token presence and ambient credentials. It
// keeps its own narrow error handling rather than the shared boundary: a
// status probe failing is itself the answer.
func (s *Server) handleCheckAuthStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := s.store.LoadToken()
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Error checking auth status: %v", err)), nil
	}

	var status string
	if token != "" {
		status = "Authentication token found in secure keyring storage\n"
	} else {
		status = "No authentication token found in keyring\n"
	}

	if email, _ := s.creds(); email != "" {
		status += fmt.Sprintf("Environment email: %s\n", email)
	}

	status += "\nTry get_accounts to test connection or run 'monarch-mcp auth login' if needed."
	return mcp.NewToolResultText(status), nil
}

func (s *Server) handleDebugSessionLoading(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := s.store.LoadToken()
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Keyring access failed:\nError: %v\nType: %T", err, err)), nil
	}
	if token != "" {
		return mcp.NewToolResultText(fmt.Sprintf("Token found in keyring (length: %d)", len(token))), nil
	}
	return mcp.NewToolResultText("No token found in keyring. Run 'monarch-mcp auth login' to authenticate."), nil
}
