package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/listing"
	"github.com/fiitjobs/jobadmin/internal/models"
)

// NewApplicationsCmd creates the applications command group
func NewApplicationsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Review job applications",
	}

	cmd.AddCommand(newApplicationsListCmd(env))
	cmd.AddCommand(newApplicationsStatusCmd(env))
	cmd.AddCommand(newApplicationsNotifyCmd(env))

	return cmd
}

func newApplicationsListCmd(env *Env) *cobra.Command {
	var page int
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List applications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			result, err := env.API.ListApplications(cmd.Context(), page, backend.DefaultPageSize)
			if err != nil {
				return describe(err, "Failed to load applications")
			}

			out := cmd.OutOrStdout()
			apps := listing.FilterApplications(result.Applications, search)
			pager := listing.NewPager(page, result.TotalPages)

			if len(apps) == 0 {
				fmt.Fprintln(out, "No applications found.")
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tAPPLICANT\tEMAIL\tJOB\tSTATUS\tAPPLIED")
				fmt.Fprintln(w, "──\t─────────\t─────\t───\t──────\t───────")
				for _, app := range apps {
					var name, email, job, applied string
					if app.Applicant != nil {
						name, email = app.Applicant.Name, app.Applicant.Email
					}
					if app.Job != nil {
						job = app.Job.Title
					}
					if app.AppliedAt != nil {
						applied = app.AppliedAt.Format("2006-01-02")
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", app.ID, name, email, job, app.Status, applied)
				}
				w.Flush()
			}

			fmt.Fprintf(out, "\nPage %d of %d\n", pager.Page, pager.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&search, "search", "", "Filter by applicant name, email or job title")

	return cmd
}

func newApplicationsStatusCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <application-id> [status]",
		Short: "Change an application's status",
		Long:  fmt.Sprintf("Change an application's status. Valid statuses: %v", models.ApplicationStatuses),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			var status string
			if len(args) == 2 {
				status = args[1]
			} else {
				if !env.interactive() {
					return fmt.Errorf("status is required in non-interactive mode")
				}
				var err error
				if status, err = promptSelect("Select a status", models.ApplicationStatuses, ""); err != nil {
					return err
				}
			}

			if !models.ValidApplicationStatus(status) {
				return fmt.Errorf("invalid status %q (valid: %v)", status, models.ApplicationStatuses)
			}

			if err := env.API.UpdateApplicationStatus(cmd.Context(), args[0], status); err != nil {
				return describe(err, "Failed to update status")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Status updated to %s\n", status)
			return nil
		},
	}
}

func newApplicationsNotifyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "notify <application-id>",
		Short: "Notify the applicant about their application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			if err := env.API.NotifyApplicant(cmd.Context(), args[0]); err != nil {
				return describe(err, "Failed to send notification")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Notification sent")
			return nil
		},
	}
}
