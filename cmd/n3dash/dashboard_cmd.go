package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fentz26/n3dash/internal/views"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show summary cards, charts and recent activity",
	RunE:  withDashboard(printDashboard),
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API server is reachable",
	RunE:  runHealth,
}

func printDashboard(a *app) error {
	summary := a.dash.WorkItems.Dashboard()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, c := range views.SummaryCards(summary) {
		fmt.Fprintf(w, "%s\t%d\n", c.Label, c.Value)
	}
	w.Flush()

	printSeries("Project status", views.ProjectStatusSeries(summary))
	printSeries("Task status", views.TaskStatusSeries(summary))
	printSeries("Department workload", views.DepartmentWorkloadSeries(summary))

	activities := a.dash.WorkItems.State().Activities
	fmt.Println()
	fmt.Println("Recent activity")
	if len(activities) == 0 {
		fmt.Println("  none")
		return nil
	}
	for _, act := range activities {
		detail := ""
		if act.Detail != nil {
			detail = *act.Detail
		}
		when := "-"
		if !act.OccurredAt.IsZero() {
			when = act.OccurredAt.Local().Format("01-02 15:04")
		}
		fmt.Printf("  %s  %-16s %s\n", when, act.Action, truncate(detail, 60))
	}
	return nil
}

const chartWidth = 30

// printSeries renders points as a horizontal bar chart.
func printSeries(title string, points []views.Point) {
	fmt.Println()
	fmt.Println(title)
	if len(points) == 0 {
		fmt.Println("  no data")
		return
	}
	peak := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
	}
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(p.Value / peak * chartWidth)
		}
		fmt.Printf("  %-20s %s %g\n", truncate(p.Name, 20), strings.Repeat("█", n), p.Value)
	}
}

func runHealth(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.db.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("local store unavailable: %w", err)
	}
	fmt.Println("✓ local store is reachable")

	ok, err := a.client.CheckHealth(cmd.Context())
	if err != nil {
		return healthError(err)
	}
	if !ok {
		return fmt.Errorf("server at %s reports unhealthy", a.client.BaseURL())
	}
	fmt.Printf("✓ %s is healthy\n", a.client.BaseURL())
	return nil
}
