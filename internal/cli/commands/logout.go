package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var quiet bool
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored credentials",
		Long: `Log out of the selected server.

The backend is asked to end the session, but local credentials are
removed even when the backend cannot be reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(cmd.Context(), quiet, serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print a confirmation")
	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	return cmd
}

func runLogout(ctx context.Context, quiet bool, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}

	env.session.Logout(ctx, !quiet)

	// Cookies the backend did not expire still identify the old session
	if err := env.tokens.DeleteCookies(env.server.URL); err != nil {
		log.Warn().Err(err).Str("server", env.server.URL).Msg("Failed to delete session cookies")
	}

	if !quiet {
		fmt.Fprintf(env.out, "Credentials for %s (%s) removed\n", env.server.Alias, env.server.URL)
	}
	return nil
}
