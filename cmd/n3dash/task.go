package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/views"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Browse tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list [project-id]",
	Short: "List the tasks of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskList,
}

var taskBoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show loaded tasks as a kanban board",
	RunE:  withDashboard(printBoard),
}

var taskMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Show tasks assigned to you",
	RunE:  withDashboard(printMine),
}

var taskTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show open tasks due today",
	RunE:  withDashboard(printToday),
}

var taskCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show tasks with a due date in date order",
	RunE:  withDashboard(printCalendar),
}

var taskGanttCmd = &cobra.Command{
	Use:   "gantt",
	Short: "Show scheduled tasks as a text gantt chart",
	RunE:  withDashboard(printGantt),
}

var subtaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Browse subtasks",
}

var subtaskListCmd = &cobra.Command{
	Use:   "list [task-id]",
	Short: "List the subtasks of a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubtaskList,
}

func init() {
	taskCmd.AddCommand(taskListCmd, taskBoardCmd, taskMineCmd, taskTodayCmd, taskCalendarCmd, taskGanttCmd)
	subtaskCmd.AddCommand(subtaskListCmd)
}

// withDashboard refreshes the dashboard before running fn.
func withDashboard(fn func(a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), printer{os.Stderr})
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireSession(); err != nil {
			return err
		}
		if err := a.dash.Refresh(cmd.Context()); err != nil {
			if msg := a.dash.WorkItems.Error(); msg != "" {
				return fmt.Errorf("%s: %w", msg, err)
			}
			return err
		}
		return fn(a)
	}
}

func runTaskList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	items := a.dash.WorkItems
	if err := items.FetchTasks(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("%s: %w", items.Error(), err)
	}
	tasks, _ := items.Tasks(args[0])
	printTaskTable(tasks)
	return nil
}

func printTaskTable(tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tDUE")
	for _, r := range views.Table(tasks) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
			truncateID(r.ID), truncate(r.Title, 40), r.Status, r.Priority, r.Progress, r.Due)
	}
	w.Flush()
}

func printBoard(a *app) error {
	for _, col := range a.dash.Board() {
		fmt.Printf("== %s (%d) ==\n", col.Label, len(col.Tasks))
		for _, t := range col.Tasks {
			fmt.Printf("  [%s] %s  %s\n", priorityTag(t.Priority), truncate(t.Title, 50), truncateID(t.ID))
		}
	}
	return nil
}

func printMine(a *app) error {
	tasks := a.dash.MyWork()
	if len(tasks) == 0 {
		fmt.Println("No tasks assigned to you")
		return nil
	}
	printTaskTable(tasks)
	return nil
}

func printToday(a *app) error {
	tasks := a.dash.Today()
	fmt.Printf("Due today, %s: %d\n", time.Now().Format("Mon Jan 2"), len(tasks))
	for _, t := range tasks {
		fmt.Printf("  [ ] [%s] %s\n", priorityTag(t.Priority), t.Title)
		for _, item := range t.Checklist {
			fmt.Printf("        - %s\n", item)
		}
	}
	return nil
}

func printCalendar(a *app) error {
	events := a.dash.Calendar()
	if len(events) == 0 {
		fmt.Println("No scheduled tasks")
		return nil
	}
	sortEvents(events)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "START\tEND\tDONE\tTITLE")
	for _, e := range events {
		done := ""
		if e.Done {
			done = "✓"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"), done, truncate(e.Title, 50))
	}
	w.Flush()
	return nil
}

const ganttWidth = 40

func printGantt(a *app) error {
	bars := a.dash.Gantt()
	start, end, ok := views.Span(bars)
	if !ok {
		fmt.Println("No tasks with both a start and a due date")
		return nil
	}
	fmt.Printf("%s → %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	for _, b := range bars {
		fmt.Printf("%-24s %s %3d%%\n", truncate(b.Name, 24), ganttLine(b, start, end, ganttWidth), b.Progress)
	}
	return nil
}

// ganttLine draws b on a width-wide track spanning start..end.
func ganttLine(b views.GanttBar, start, end time.Time, width int) string {
	from, to := views.Cells(b, start, end, width)
	return strings.Repeat("·", from) + strings.Repeat("█", to-from) + strings.Repeat("·", width-to)
}

func runSubtaskList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	items := a.dash.WorkItems
	if err := items.FetchSubtasks(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("%s: %w", items.Error(), err)
	}
	subtasks, _ := items.Subtasks(args[0])
	if len(subtasks) == 0 {
		fmt.Println("No subtasks found")
		return nil
	}
	sortSubtasks(subtasks)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tTITLE\tSTATUS\tDUE")
	for _, s := range subtasks {
		due := views.Unscheduled
		if s.DueDate != nil && *s.DueDate != "" {
			due = *s.DueDate
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.Order, truncateID(s.ID), truncate(s.Title, 40), s.Status, due)
	}
	w.Flush()
	return nil
}
