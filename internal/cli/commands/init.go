package commands

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/newsox/newsox/internal/cli/config"
)

type initOptions struct {
	alias string
	out   io.Writer
}

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	opts := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init <api-url>",
		Short: "Register a newsox server in ./newsox.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			return runInitWithOptions(args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.alias, "alias", "", "Alias for the server (default: local for localhost, production for the first remote server)")

	return cmd
}

func runInitWithOptions(args []string, opts *initOptions) error {
	out := opts.out
	if out == nil {
		out = os.Stdout
	}

	apiURL := config.NormalizeURL(args[0])
	candidate := config.Server{URL: apiURL, Alias: "new"}
	if err := candidate.Validate(); err != nil {
		return err
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		fmt.Fprintln(out, "Found existing newsox.json")
	} else {
		cfg = &config.Config{
			Servers: []config.Server{},
		}
		isNewConfig = true
	}

	if existing, err := cfg.GetServerByURL(apiURL); err == nil {
		fmt.Fprintf(out, "Server %s already exists in newsox.json as '%s'\n", apiURL, existing.Alias)
	} else {
		alias := opts.alias
		if alias == "" {
			alias = defaultAlias(cfg, apiURL)
		}
		if _, err := cfg.GetServerByAlias(alias); err == nil {
			return fmt.Errorf("alias '%s' is already used in newsox.json", alias)
		}

		cfg.Servers = append(cfg.Servers, config.Server{
			URL:   apiURL,
			Alias: alias,
		})

		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		if isNewConfig {
			fmt.Fprintf(out, "✓ Created ./newsox.json with server %s (%s)\n", apiURL, alias)
		} else {
			fmt.Fprintf(out, "✓ Added server %s (%s) to ./newsox.json\n", apiURL, alias)
		}
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Run 'newsox login --email you@example.com' to authenticate")
	fmt.Fprintln(out, "  2. Run 'newsox quiz today' to solve today's quizzes")

	return nil
}

// defaultAlias picks an alias for a new server
func defaultAlias(cfg *config.Config, apiURL string) string {
	candidates := []string{fmt.Sprintf("server-%d", len(cfg.Servers)+1)}
	if u, err := url.Parse(apiURL); err == nil {
		switch u.Hostname() {
		case "localhost", "127.0.0.1", "::1":
			candidates = append([]string{"local"}, candidates...)
		default:
			candidates = append([]string{"production"}, candidates...)
		}
	}

	for _, alias := range candidates {
		if _, err := cfg.GetServerByAlias(alias); err != nil {
			return alias
		}
	}
	return candidates[len(candidates)-1]
}
