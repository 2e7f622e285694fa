package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fiitjobs/jobadmin/internal/listing"
)

// NewUsersCmd creates the users command group
func NewUsersCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage platform users",
	}

	cmd.AddCommand(newUsersListCmd(env))
	cmd.AddCommand(newUsersDeleteCmd(env))
	cmd.AddCommand(newUsersFlagCmd(env))

	return cmd
}

func newUsersListCmd(env *Env) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			users, err := env.API.ListUsers(cmd.Context())
			if err != nil {
				return describe(err, "Failed to load users")
			}

			users = listing.FilterUsers(users, search)
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tSTATUS")
			fmt.Fprintln(w, "──\t────\t─────\t────\t──────")
			for _, u := range users {
				status := "normal"
				if u.IsSuspicious {
					status = "suspicious"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.DisplayName(), u.Email, u.Role, status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email")

	return cmd
}

func newUsersDeleteCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <user-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}
			if err := confirm(env, yes, "delete this user"); err != nil {
				return err
			}

			if err := env.API.DeleteUser(cmd.Context(), args[0]); err != nil {
				return describe(err, "Failed to delete user")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User deleted successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newUsersFlagCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "flag <user-id>",
		Short: "Toggle a user's suspicious flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			if err := env.API.ToggleSuspicious(cmd.Context(), args[0]); err != nil {
				return describe(err, "Failed to update user status")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ User status updated")
			return nil
		},
	}
}
