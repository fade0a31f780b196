package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in member",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd.Context(), serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	return cmd
}

// NewRefreshCmd creates the refresh command
func NewRefreshCmd() *cobra.Command {
	var serverAlias string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the member profile from the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(cmd.Context(), serverAlias, WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias or URL")

	return cmd
}

func runWhoami(ctx context.Context, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	st := env.session.Start(ctx)
	if !st.IsAuthenticated {
		fmt.Fprintf(env.out, "Not logged in to %s (%s)\n", env.server.Alias, env.server.URL)
		return nil
	}

	fmt.Fprintf(env.out, "Logged in to %s (%s)\n", env.server.Alias, env.server.URL)
	printUser(env.out, st)
	return nil
}

func runRefresh(ctx context.Context, serverAlias string, opts ...Option) error {
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}
	defer env.close()

	st := env.session.RefreshUser(ctx)
	if !st.IsAuthenticated {
		return fmt.Errorf("not logged in to %s (%s). Please run 'newsox login' first", env.server.Alias, env.server.URL)
	}

	fmt.Fprintln(env.out, "✓ Profile refreshed")
	printUser(env.out, st)
	return nil
}
