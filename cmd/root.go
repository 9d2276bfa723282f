package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the monarch-mcp application.
var rootCmd = &cobra.Command{
	Use:   "monarch-mcp",
	Short: "Expose your Monarch Money data to AI assistants over MCP",
	Long: `monarch-mcp serves your Monarch Money accounts, transactions, budgets,
and tags as MCP tools for AI assistants (Claude Desktop, Cursor, etc.).

Sessions are persisted in your system keyring and survive restarts for
weeks. When a session expires, a browser login page opens automatically
and the assistant tells you to sign in and retry.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// Called from the main package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "monarch-mcp version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
