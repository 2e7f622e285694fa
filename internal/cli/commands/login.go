package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fiitjobs/jobadmin/internal/probe"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the job-board backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, env, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set JOBADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set JOBADMIN_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, env *Env, email, password string) error {
	out := cmd.OutOrStdout()

	// Check for environment variables (useful for scripts)
	if email == "" {
		email = os.Getenv("JOBADMIN_EMAIL")
	}
	if password == "" {
		password = os.Getenv("JOBADMIN_PASSWORD")
	}

	if email == "" {
		if !env.interactive() {
			return fmt.Errorf("email is required (use --email flag or JOBADMIN_EMAIL env var)")
		}
		prompt := promptui.Prompt{
			Label: "Email",
			Validate: func(v string) error {
				if !strings.Contains(v, "@") {
					return errors.New("enter a valid email address")
				}
				return nil
			},
		}
		var err error
		if email, err = prompt.Run(); err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	if password == "" {
		if !env.interactive() {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or JOBADMIN_PASSWORD env var)")
		}
		fmt.Fprint(out, "Password: ")
		bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(out) // New line after password input
	}

	fmt.Fprintf(out, "Logging in to %s...\n", env.Config.Backend.URL)

	identity, err := env.API.Authenticate(cmd.Context(), env.Sessions, email, password)
	if err != nil {
		return describe(err, "Login failed")
	}

	fmt.Fprintln(out, "✓ Login successful!")
	fmt.Fprintf(out, "  User: %s\n", identity.Label())
	if identity.Role != "" {
		fmt.Fprintf(out, "  Role: %s\n", identity.Role)
	}

	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env.Sessions.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(env *Env) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if verify {
				result := probe.Verify(cmd.Context(), env.Sessions, env.API, env.Logger)
				if result == probe.Unknown {
					fmt.Fprintln(out, "Warning: could not verify the credential with the backend")
				}
			}

			current := env.Sessions.Current()
			if !current.Authenticated() {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			fmt.Fprintf(out, "Logged in as %s\n", current.Identity.Label())
			if current.Identity.Name != "" {
				fmt.Fprintf(out, "  Email: %s\n", current.Identity.Email)
			}
			if current.Identity.Role != "" {
				fmt.Fprintf(out, "  Role:  %s\n", current.Identity.Role)
			}
			if env.Sessions.Unverified() {
				fmt.Fprintln(out, "  (restored from storage, not yet confirmed by the backend)")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "Check the credential with the backend first")

	return cmd
}
