package cmd

import (
	"github.com/spf13/cobra"
)

// authCmd groups the authentication subcommands.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Monarch Money authentication",
	Long: `Manage the Monarch Money session used by the MCP server.

Use "auth login" to sign in from the terminal and "auth status" to
inspect the stored session.`,
}

func init() {
	authCmd.AddCommand(newAuthLoginCmd())
	authCmd.AddCommand(newAuthStatusCmd())
	rootCmd.AddCommand(authCmd)
}
