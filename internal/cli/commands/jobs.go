package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fiitjobs/jobadmin/internal/backend"
	"github.com/fiitjobs/jobadmin/internal/listing"
)

// NewJobsCmd creates the jobs command group
func NewJobsCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job postings",
	}

	cmd.AddCommand(newJobsListCmd(env))
	cmd.AddCommand(newJobsDeleteCmd(env))

	return cmd
}

func newJobsListCmd(env *Env) *cobra.Command {
	var page int
	var search string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List job postings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			result, err := env.API.ListJobs(cmd.Context(), page, backend.DefaultPageSize)
			if err != nil {
				return describe(err, "Failed to load jobs")
			}

			out := cmd.OutOrStdout()
			jobs := listing.FilterJobs(result.Jobs, search)
			pager := listing.NewPager(page, result.TotalPages)

			if len(jobs) == 0 {
				fmt.Fprintln(out, "No jobs found.")
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tCOMPANY\tLOCATION\tTYPE\tSALARY")
				fmt.Fprintln(w, "──\t─────\t───────\t────────\t────\t──────")
				for _, job := range jobs {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						job.ID,
						job.Title,
						job.DisplayCompany(),
						job.Location,
						job.DisplayType(),
						job.Salary,
					)
				}
				w.Flush()
			}

			fmt.Fprintf(out, "\nPage %d of %d\n", pager.Page, pager.TotalPages)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().StringVar(&search, "search", "", "Filter by title, location or company")

	return cmd
}

func newJobsDeleteCmd(env *Env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <job-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a job posting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}
			if err := confirm(env, yes, "delete this job"); err != nil {
				return err
			}

			if err := env.API.DeleteJob(cmd.Context(), args[0]); err != nil {
				return describe(err, "Failed to delete job")
			}

			fmt.Fprintln(cmd.OutOrStdout(), "✓ Job deleted successfully")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
