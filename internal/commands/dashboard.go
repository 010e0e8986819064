package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yukikurage/taskflow/internal/config"
	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/services"
)

func newDashboardCmd() *cobra.Command {
	var (
		username   string
		employeeID uint64
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print dashboard task counts as seen by a user",
		Args:  cobra.NoArgs,
		RunE: withDB(func(cmd *cobra.Command, _ []string, _ *config.Config) error {
			svc := services.New(database.GetDB(), services.Options{})

			user, err := svc.User.GetByUsername(username)
			if err != nil {
				return fmt.Errorf("user %q: %w", username, err)
			}
			actor, err := svc.User.ResolveActor(user.ID)
			if err != nil {
				return err
			}

			var selected *uint64
			if cmd.Flags().Changed("employee") {
				selected = &employeeID
			}

			d, err := svc.Report.Dashboard(actor, selected)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "username to view the dashboard as")
	cmd.Flags().Uint64VarP(&employeeID, "employee", "e", 0, "employee ID to report on")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printDashboard(w io.Writer, d *services.Dashboard) {
	switch {
	case len(d.Employees) == 0:
		fmt.Fprintln(w, "No employees to report on.")
		return
	case d.Selected == nil:
		fmt.Fprintf(w, "Employee is not on this team (%d employee(s)).\n", len(d.Employees))
		return
	}

	fmt.Fprintf(w, "Employee: %s (#%d)\n", d.Selected.Username, d.Selected.ID)
	fmt.Fprintf(w, "Team: %d employee(s)\n\n", len(d.Employees))

	fmt.Fprintln(w, "Status")
	for _, c := range services.ChartSeries(d.StatusCounts) {
		fmt.Fprintf(w, "  %-10s %d\n", c.Label, c.Count)
	}
	fmt.Fprintln(w, "Priority")
	for _, c := range services.ChartSeries(d.PriorityCounts) {
		fmt.Fprintf(w, "  %-10s %d\n", c.Label, c.Count)
	}
}
