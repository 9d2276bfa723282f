package tools

import (
	"context"

	"monarchmcp/internal/session"
	"monarchmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server exposes Monarch Money operations as MCP tools over stdio.
type Server struct {
	store   session.Store
	manager *session.Manager
	runner  *session.Runner
	creds   session.CredentialSource

	mcpServer *server.MCPServer
}

// ServerOption configures the tool server.
type ServerOption func(*Server)

// WithCredentialSource overrides where the auth-status tool reads the
// ambient email from.
func WithCredentialSource(creds session.CredentialSource) ServerOption {
	return func(s *Server) {
		s.creds = creds
	}
}

// NewServer wires the session subsystem into an MCP tool server.
func NewServer(store session.Store, manager *session.Manager, runner *session.Runner, version string, opts ...ServerOption) *Server {
	s := &Server{
		store:   store,
		manager: manager,
		runner:  runner,
		creds:   session.EnvCredentials,
		mcpServer: server.NewMCPServer(
			"Monarch Money MCP Server",
			version,
			server.WithToolCapabilities(false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	return s
}

// Start serves MCP over stdio. It blocks until the client closes the
// connection.
func (s *Server) Start(ctx context.Context) error {
	logging.Info("Tools", "starting Monarch Money MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// registerTools declares every tool and applies the error boundary. The
// auth inspection tools keep their own narrower handling and are registered
// directly.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("setup_authentication",
		mcp.WithDescription("Get instructions for setting up secure authentication with Monarch Money"),
	), s.handleSetupAuthentication)

	s.mcpServer.AddTool(mcp.NewTool("check_auth_status",
		mcp.WithDescription("Check if already authenticated with Monarch Money"),
	), s.handleCheckAuthStatus)

	s.mcpServer.AddTool(mcp.NewTool("debug_session_loading",
		mcp.WithDescription("Debug keyring session loading issues"),
	), s.handleDebugSessionLoading)

	s.mcpServer.AddTool(mcp.NewTool("get_accounts",
		mcp.WithDescription("Get all financial accounts from Monarch Money"),
	), withToolErrors("getting accounts", s.handleGetAccounts))

	s.mcpServer.AddTool(mcp.NewTool("get_transactions",
		mcp.WithDescription("Get transactions from Monarch Money"),
		mcp.WithNumber("limit",
			mcp.Description("Number of transactions to retrieve (default: 100)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of transactions to skip (default: 0)"),
		),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format (requires end_date)"),
		),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format (requires start_date)"),
		),
		mcp.WithString("account_id",
			mcp.Description("Specific account ID to filter by"),
		),
	), withToolErrors("getting transactions", s.handleGetTransactions))

	s.mcpServer.AddTool(mcp.NewTool("get_budgets",
		mcp.WithDescription("Get budget information from Monarch Money"),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format (requires end_date)"),
		),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format (requires start_date)"),
		),
	), withToolErrors("getting budgets", s.handleGetBudgets))

	s.mcpServer.AddTool(mcp.NewTool("get_cashflow",
		mcp.WithDescription("Get cashflow analysis from Monarch Money"),
		mcp.WithString("start_date",
			mcp.Description("Start date in YYYY-MM-DD format (requires end_date)"),
		),
		mcp.WithString("end_date",
			mcp.Description("End date in YYYY-MM-DD format (requires start_date)"),
		),
	), withToolErrors("getting cashflow", s.handleGetCashflow))

	s.mcpServer.AddTool(mcp.NewTool("get_account_holdings",
		mcp.WithDescription("Get investment holdings for a specific account"),
		mcp.WithString("account_id",
			mcp.Required(),
			mcp.Description("The ID of the investment account"),
		),
	), withToolErrors("getting account holdings", s.handleGetAccountHoldings))

	s.mcpServer.AddTool(mcp.NewTool("create_transaction",
		mcp.WithDescription("Create a new transaction in Monarch Money"),
		mcp.WithString("account_id",
			mcp.Required(),
			mcp.Description("The account ID to add the transaction to"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Transaction amount (positive for income, negative for expenses)"),
		),
		mcp.WithString("merchant_name",
			mcp.Required(),
			mcp.Description("Merchant name for the transaction"),
		),
		mcp.WithString("category_id",
			mcp.Required(),
			mcp.Description("Category ID for the transaction"),
		),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Transaction date in YYYY-MM-DD format"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional transaction notes"),
		),
	), withToolErrors("creating transaction", s.handleCreateTransaction))

	s.mcpServer.AddTool(mcp.NewTool("update_transaction",
		mcp.WithDescription("Update an existing transaction in Monarch Money"),
		mcp.WithString("transaction_id",
			mcp.Required(),
			mcp.Description("The ID of the transaction to update"),
		),
		mcp.WithString("category_id",
			mcp.Description("New category ID"),
		),
		mcp.WithString("merchant_name",
			mcp.Description("New merchant name"),
		),
		mcp.WithString("goal_id",
			mcp.Description("Goal ID to associate with the transaction"),
		),
		mcp.WithNumber("amount",
			mcp.Description("New transaction amount"),
		),
		mcp.WithString("date",
			mcp.Description("New transaction date in YYYY-MM-DD format"),
		),
		mcp.WithBoolean("hide_from_reports",
			mcp.Description("Whether to hide the transaction from reports"),
		),
		mcp.WithBoolean("needs_review",
			mcp.Description("Whether the transaction needs review"),
		),
		mcp.WithString("notes",
			mcp.Description("Transaction notes"),
		),
	), withToolErrors("updating transaction", s.handleUpdateTransaction))

	s.mcpServer.AddTool(mcp.NewTool("delete_transaction",
		mcp.WithDescription("Delete a transaction from Monarch Money"),
		mcp.WithString("transaction_id",
			mcp.Required(),
			mcp.Description("The ID of the transaction to delete"),
		),
	), withToolErrors("deleting transaction", s.handleDeleteTransaction))

	s.mcpServer.AddTool(mcp.NewTool("refresh_accounts",
		mcp.WithDescription("Request account data refresh from financial institutions"),
	), withToolErrors("refreshing accounts", s.handleRefreshAccounts))

	s.mcpServer.AddTool(mcp.NewTool("get_transaction_tags",
		mcp.WithDescription("Get all transaction tags from Monarch Money"),
	), withToolErrors("getting transaction tags", s.handleGetTransactionTags))

	s.mcpServer.AddTool(mcp.NewTool("create_transaction_tag",
		mcp.WithDescription("Create a new transaction tag in Monarch Money"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Tag name (required)"),
		),
		mcp.WithString("color",
			mcp.Required(),
			mcp.Description(`Hex RGB color including # (required, e.g., "#19D2A5")`),
		),
	), withToolErrors("creating transaction tag", s.handleCreateTransactionTag))

	s.mcpServer.AddTool(mcp.NewTool("delete_transaction_tag",
		mcp.WithDescription("Delete a transaction tag from Monarch Money"),
		mcp.WithString("tag_id",
			mcp.Required(),
			mcp.Description("The ID of the tag to delete"),
		),
	), withToolErrors("deleting transaction tag", s.handleDeleteTransactionTag))

	s.mcpServer.AddTool(mcp.NewTool("set_transaction_tags",
		mcp.WithDescription("Set tags on a transaction (replaces existing tags; an empty list removes all tags)"),
		mcp.WithString("transaction_id",
			mcp.Required(),
			mcp.Description("Transaction UUID (required)"),
		),
		mcp.WithArray("tag_ids",
			mcp.Required(),
			mcp.Description("List of tag IDs to apply (required, empty list removes all tags)"),
		),
	), withToolErrors("setting transaction tags", s.handleSetTransactionTags))
}
