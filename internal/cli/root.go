package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fiitjobs/jobadmin/internal/cli/commands"
)

// NewRootCmd builds the command tree. The session core is wired once in
// PersistentPreRunE, so every subcommand sees the same Env.
func NewRootCmd(version string) *cobra.Command {
	env := &commands.Env{Version: version}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "jobadmin",
		Short: "Job Platform Admin - console and CLI for the job-board backend",
		Long: `jobadmin manages the job-board platform as an administrator.

Run 'jobadmin serve' for the web console, or use the subcommands to review
jobs, applications and users from the terminal. Both share one stored login.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return env.Init(logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return env.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jobadmin version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewServeCmd(env))
	rootCmd.AddCommand(commands.NewLoginCmd(env))
	rootCmd.AddCommand(commands.NewLogoutCmd(env))
	rootCmd.AddCommand(commands.NewWhoamiCmd(env))
	rootCmd.AddCommand(commands.NewStatsCmd(env))
	rootCmd.AddCommand(commands.NewJobsCmd(env))
	rootCmd.AddCommand(commands.NewApplicationsCmd(env))
	rootCmd.AddCommand(commands.NewUsersCmd(env))
	rootCmd.AddCommand(commands.NewOpenCmd(env))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
