package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsox/newsox/internal/cli/commands"
	"github.com/newsox/newsox/internal/config"
	"github.com/newsox/newsox/internal/logger"
)

var version = "dev" // Will be set during build

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "newsox",
	Short: "newsox - News OX quizzes from your terminal",
	Long: `newsox CLI - Read today's news and solve the News OX quizzes.

Log in once per server; the session is kept in your OS keychain and
revalidated with the server on every command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, format := logLevel, "console"
		if cfg, err := config.Load(); err == nil {
			if level == "" {
				level = cfg.Logging.Level
			}
			format = cfg.Logging.Format
		}
		logger.Init(level, format)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, off); overrides LOG_LEVEL")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsox version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSelectServerCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewRefreshCmd())
	rootCmd.AddCommand(commands.NewNewsCmd())
	rootCmd.AddCommand(commands.NewQuizCmd())
	rootCmd.AddCommand(commands.NewOXCmd())
	rootCmd.AddCommand(commands.NewOpenCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
