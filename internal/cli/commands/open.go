package commands

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

// NewOpenCmd creates the open command
func NewOpenCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the admin console in the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			consoleURL := ConsoleURL(env.Config.Server.ListenAddr)

			fmt.Fprintf(cmd.OutOrStdout(), "Opening %s...\n", consoleURL)
			fmt.Fprintln(cmd.OutOrStdout(), "The console must be running (jobadmin serve). Each browser logs in once to bind to it.")

			if err := openBrowser(consoleURL); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, consoleURL)
			}

			return nil
		},
	}
}

// ConsoleURL is the dashboard URL for a console listening on addr
func ConsoleURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return fmt.Sprintf("http://%s/dashboard", addr)
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

	return cmd.Start()
}
