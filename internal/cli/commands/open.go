package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// browserOpener is replaced in tests
var browserOpener = openBrowser

// NewOpenCmd creates the open command
func NewOpenCmd() *cobra.Command {
	var serverAlias, social, redirect string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the server or a social login page in the browser",
		Example: `  $ newsox open
  $ newsox open --social kakao --redirect http://localhost:3000/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(cmd.OutOrStdout(), social, redirect, serverAlias)
		},
	}

	cmd.Flags().StringVar(&serverAlias, "server", "", "Server alias or URL")
	cmd.Flags().StringVar(&social, "social", "", "Start a social login with this provider (naver, google, kakao)")
	cmd.Flags().StringVar(&redirect, "redirect", "", "Where the provider sends the browser after a social login")

	return cmd
}

func runOpen(out io.Writer, social, redirect, serverAlias string, opts ...Option) error {
	opts = append(opts, WithOutput(out))
	env, err := openSession(serverAlias, opts...)
	if err != nil {
		return err
	}

	target := env.server.URL
	if social != "" {
		target, err = env.client.SocialLoginURL(social, redirect)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.out, "Starting %s login for %s (%s)...\n", social, env.server.Alias, env.server.URL)
	} else {
		fmt.Fprintf(env.out, "Opening %s (%s)...\n", env.server.Alias, env.server.URL)
	}
	fmt.Fprintf(env.out, "URL: %s\n", target)

	if err := browserOpener(target); err != nil {
		return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, target)
	}

	return nil
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	cmd.Stderr = os.Stderr
	return cmd.Start()
}
