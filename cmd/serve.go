package cmd

import (
	"fmt"
	"os"

	"monarchmcp/internal/authflow"
	"monarchmcp/internal/config"
	"monarchmcp/internal/monarch"
	"monarchmcp/internal/session"
	"monarchmcp/internal/tools"
	"monarchmcp/pkg/logging"

	"github.com/spf13/cobra"
)

// serveConfigPath overrides the configuration directory. Empty means
// ~/.config/monarch-mcp.
var serveConfigPath string

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveCmd starts the MCP server on stdio. This is the command AI
// assistants are configured to launch.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Monarch Money MCP server on stdio",
	Long: `Starts the MCP server, exposing Monarch Money tools to the AI
assistant that launched it.

The server acquires sessions in this order:
  1. A session token persisted in your system keyring
  2. MONARCH_EMAIL and MONARCH_PASSWORD environment variables
  3. A browser login page, opened automatically

All diagnostics go to stderr; stdout carries the MCP protocol stream.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Configuration directory (default ~/.config/monarch-mcp)")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
	logging.Info("Serve", "starting Monarch Money MCP Server (version %s)", rootCmd.Version)

	var clientOpts []monarch.ClientOption
	if cfg.APIBaseURL != "" {
		clientOpts = append(clientOpts, monarch.WithBaseURL(cfg.APIBaseURL))
	}
	newClient := func() *monarch.Client { return monarch.NewClient(clientOpts...) }

	store, err := session.NewKeyringStore(clientOpts...)
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}

	flow := authflow.NewFlow(store,
		authflow.WithListenAddr(cfg.AuthListenAddr),
		authflow.WithClientFactory(newClient),
	)
	manager := session.NewManager(store, flow, session.WithClientFactory(newClient))
	runner := session.NewRunner(store, flow, cfg.MaxConcurrentCalls)

	srv := tools.NewServer(store, manager, runner, rootCmd.Version)

	// Open the browser login up front when no credential exists at all, so
	// the user's first tool call can already succeed.
	triggerFlowIfUnauthenticated(store, flow)

	return srv.Start(cmd.Context())
}

func loadConfig() (config.Config, error) {
	path := serveConfigPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

func triggerFlowIfUnauthenticated(store session.Store, flow session.FlowTrigger) {
	token, err := store.LoadToken()
	if err != nil {
		logging.Error("Serve", err, "could not check for a stored session")
		return
	}
	if token != "" {
		return
	}
	if email, password := session.EnvCredentials(); email != "" && password != "" {
		return
	}
	logging.Info("Serve", "no stored session or environment credentials; opening browser login")
	flow.Trigger()
}
