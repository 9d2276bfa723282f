package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"monarchmcp/internal/config"
	"monarchmcp/internal/session"
	"monarchmcp/pkg/logging"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// statusVerifyTimeout bounds the API round trip used to verify a stored
// token is still accepted server-side.
const statusVerifyTimeout = 10 * time.Second

// statusNoVerify skips the server round trip and reports local state only.
var statusNoVerify bool

func newAuthStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored Monarch Money session status",
		Long: `Shows whether a session token is stored in your system keyring and
whether Monarch Money still accepts it.

Examples:
  monarch-mcp auth status              # Check keyring and verify with the API
  monarch-mcp auth status --no-verify  # Local check only, no network call`,
		Args: cobra.NoArgs,
		RunE: runAuthStatus,
	}
	cmd.Flags().BoolVar(&statusNoVerify, "no-verify", false, "Skip the API round trip that verifies the token")
	return cmd
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, os.Stderr)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Monarch Money Session")

	configPath, err := config.DefaultPath()
	if err == nil {
		fmt.Fprintf(out, "  Config:    %s\n", configPath)
	}

	if email, _ := session.EnvCredentials(); email != "" {
		fmt.Fprintf(out, "  Env login: %s (MONARCH_EMAIL)\n", email)
	}

	store, err := session.NewKeyringStore()
	if err != nil {
		fmt.Fprintf(out, "  Keyring:   %s\n", text.FgRed.Sprint("Unavailable"))
		fmt.Fprintf(out, "             %v\n", err)
		return nil
	}

	token, err := store.LoadToken()
	if err != nil {
		fmt.Fprintf(out, "  Keyring:   %s\n", text.FgRed.Sprint("Access failed"))
		fmt.Fprintf(out, "             %v\n", err)
		return nil
	}
	if token == "" {
		fmt.Fprintf(out, "  Status:    %s\n", text.FgYellow.Sprint("Not authenticated"))
		fmt.Fprintln(out, "             Run: monarch-mcp auth login")
		return nil
	}

	fmt.Fprintf(out, "  Keyring:   token stored (%d chars)\n", len(token))

	if statusNoVerify {
		fmt.Fprintf(out, "  Status:    %s\n", text.FgGreen.Sprint("Token present (not verified)"))
		return nil
	}

	// A token can be revoked server-side while still sitting in the
	// keyring, so confirm it with an actual API call.
	client, err := store.AuthenticatedClient()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), statusVerifyTimeout)
	defer cancel()
	_, err = client.GetAccounts(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(out, "  Status:    %s\n", text.FgGreen.Sprint("Authenticated"))
	case session.IsAuthError(err):
		fmt.Fprintf(out, "  Status:    %s\n", text.FgYellow.Sprint("Token rejected"))
		fmt.Fprintln(out, "             The stored session has expired. Run: monarch-mcp auth login")
	default:
		fmt.Fprintf(out, "  Status:    %s\n", text.FgRed.Sprint("Verification failed"))
		fmt.Fprintf(out, "             %v\n", err)
	}
	return nil
}
