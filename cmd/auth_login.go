package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"monarchmcp/internal/monarch"
	"monarchmcp/internal/session"
	"monarchmcp/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newAuthLoginCmd() *cobra.Command {
	var email string
	var totp string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Monarch Money from the terminal",
		Long: `Signs in to Monarch Money and stores the session token in your
system keyring. The MCP server picks the token up automatically.

The password is read from the terminal without echo. If your account
has multi-factor authentication enabled you will be asked for the
current code, or you can pass it with --totp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd, email, totp)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Monarch Money account email")
	cmd.Flags().StringVar(&totp, "totp", "", "Current multi-factor authentication code")
	return cmd
}

func runAuthLogin(cmd *cobra.Command, email, totp string) error {
	logging.Init(logging.LevelWarn, os.Stderr)

	reader := bufio.NewReader(cmd.InOrStdin())
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return errors.New("an email address is required")
	}

	fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := string(passwordBytes)
	if password == "" {
		return errors.New("a password is required")
	}

	store, err := session.NewKeyringStore()
	if err != nil {
		return fmt.Errorf("opening token store: %w", err)
	}

	client := monarch.NewClient()
	err = loginWithSpinner(cmd.Context(), cmd, client, email, password, totp)

	var loginErr *monarch.LoginFailedError
	if errors.As(err, &loginErr) && totp == "" && strings.Contains(loginErr.Reason, "multi-factor") {
		fmt.Fprint(cmd.OutOrStdout(), "Multi-factor code: ")
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return fmt.Errorf("reading multi-factor code: %w", readErr)
		}
		totp = strings.TrimSpace(line)
		err = loginWithSpinner(cmd.Context(), cmd, client, email, password, totp)
	}
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := store.SaveSession(client); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed in. The session token is stored in your system keyring.")
	return nil
}

func loginWithSpinner(ctx context.Context, cmd *cobra.Command, client *monarch.Client, email, password, totp string) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Signing in to Monarch Money..."
	s.Start()
	defer s.Stop()

	if totp != "" {
		return client.LoginWithTOTP(ctx, email, password, totp)
	}
	return client.Login(ctx, email, password)
}
