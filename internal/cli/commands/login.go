package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, serverAlias string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a newsox server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), email, password, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set NEWSOX_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set NEWSOX_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	return cmd
}

func runLogin(ctx context.Context, email, password, serverAlias string, opts ...Option) error {
	// Check for environment variables (useful for scripts)
	if email == "" {
		email = os.Getenv("NEWSOX_EMAIL")
	}
	if password == "" {
		password = os.Getenv("NEWSOX_PASSWORD")
	}

	// Validate email
	if email == "" {
		return fmt.Errorf("email is required (use --email flag or NEWSOX_EMAIL env var)")
	}

	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		// Check if stdin is a terminal (not piped)
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(env.out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(env.out) // New line after password input
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or NEWSOX_PASSWORD env var)")
		}
	}

	fmt.Fprintf(env.out, "Logging in to %s (%s)...\n", env.server.Alias, env.server.URL)

	result, err := env.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	defer env.close()

	env.session.Login(&result.User, result.AccessToken)

	fmt.Fprintln(env.out, "✓ Login successful!")
	printUser(env.out, env.session.State())

	return nil
}
