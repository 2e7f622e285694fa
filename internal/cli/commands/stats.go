package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.requireSession(); err != nil {
				return err
			}

			stats, err := env.API.DashboardStats(cmd.Context())
			if err != nil {
				return describe(err, "Failed to load dashboard stats")
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Total users\t%d\n", stats.TotalUsers)
			fmt.Fprintf(w, "Total jobs\t%d\n", stats.TotalJobs)
			fmt.Fprintf(w, "Applications\t%d\n", stats.TotalApplications)
			fmt.Fprintf(w, "Open jobs\t%d\n", stats.OpenJobs)
			fmt.Fprintf(w, "Closed jobs\t%d\n", stats.ClosedJobs)

			if len(stats.JobCategories) > 0 {
				fmt.Fprintln(w, "\nCATEGORY\tJOBS")
				for _, c := range stats.JobCategories {
					fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Count)
				}
			}
			if len(stats.ApplicationsPerJob) > 0 {
				fmt.Fprintln(w, "\nJOB\tAPPLICANTS")
				for _, j := range stats.ApplicationsPerJob {
					fmt.Fprintf(w, "%s\t%d\n", j.JobTitle, j.Count)
				}
			}

			return w.Flush()
		},
	}
}
