package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/views"
)

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func renderCards(cards []views.Card, width int) string {
	cell := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(width/max(len(cards), 1)-4, 16))

	boxes := make([]string, 0, len(cards))
	for _, c := range cards {
		value := lipgloss.NewStyle().Bold(true).Foreground(fgColor).Render(fmt.Sprintf("%d", c.Value))
		boxes = append(boxes, cell.Render(mutedStyle.Render(c.Label)+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

// renderSeries draws points as a horizontal bar chart.
func renderSeries(title string, points []views.Point, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render(title))
	b.WriteString("\n")
	if len(points) == 0 {
		b.WriteString(mutedStyle.Render("  no data"))
		return b.String()
	}

	barWidth := max(width-32, 10)
	peak := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
	}
	bar := lipgloss.NewStyle().Foreground(primaryColor)
	for i, p := range points {
		n := 0
		if peak > 0 {
			n = int(p.Value / peak * float64(barWidth))
		}
		b.WriteString(fmt.Sprintf("  %-18s %s %g", truncate(p.Name, 18), bar.Render(strings.Repeat("█", n)), p.Value))
		if i < len(points)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderActivities(acts []models.Activity) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render("Recent activity"))
	b.WriteString("\n")
	if len(acts) == 0 {
		b.WriteString(mutedStyle.Render("  none"))
		return b.String()
	}
	for i, act := range acts {
		when := "--"
		if !act.OccurredAt.IsZero() {
			when = act.OccurredAt.Local().Format("01-02 15:04")
		}
		detail := ""
		if act.Detail != nil {
			detail = *act.Detail
		}
		b.WriteString(fmt.Sprintf("  %s  %-16s %s", mutedStyle.Render(when), act.Action, truncate(detail, 60)))
		if i < len(acts)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// renderProjects lists projects as "title · status" in server order.
func renderProjects(projects []models.Project, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render(fmt.Sprintf("Projects (%d)", len(projects))))
	b.WriteString("\n")
	if len(projects) == 0 {
		b.WriteString(mutedStyle.Render("  No projects."))
		return b.String()
	}
	titleWidth := max(width-24, 16)
	for i, p := range projects {
		b.WriteString("  " + truncate(p.Title, titleWidth) + mutedStyle.Render(" · ") + formatProjectStatus(p.Status))
		if i < len(projects)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatProjectStatus(s models.ProjectStatus) string {
	if !s.Known() {
		if s == "" {
			return mutedStyle.Render("no status")
		}
		return mutedStyle.Render("? " + string(s))
	}
	label := strings.ReplaceAll(string(s), "_", " ")
	switch s {
	case models.ProjectStatusInProgress:
		return lipgloss.NewStyle().Foreground(secondaryColor).Render(label)
	case models.ProjectStatusCompleted:
		return lipgloss.NewStyle().Foreground(successColor).Render(label)
	case models.ProjectStatusOnHold:
		return lipgloss.NewStyle().Foreground(warningColor).Render(label)
	case models.ProjectStatusCancelled:
		return mutedStyle.Render(label)
	default:
		return label
	}
}

// renderTaskList draws tasks one per line, highlighting the task with id selected.
func renderTaskList(title string, tasks []models.Task, selected string, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render(title))
	b.WriteString("\n")
	if len(tasks) == 0 {
		b.WriteString(mutedStyle.Render("  No tasks."))
		return b.String()
	}

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		name := truncate(t.Title, max(width-30, 20))
		if t.ID == selected {
			lines = append(lines, selectedStyle.Render(fmt.Sprintf("▶ %-8s %-7s %s", plainStatus(t.Status), t.Priority, name)))
			continue
		}
		lines = append(lines, taskItemStyle.Render(fmt.Sprintf("  %s  %s  %s", formatStatus(t.Status), formatPriority(t.Priority), name)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func plainStatus(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusTodo:
		return "TODO"
	case models.TaskStatusInProgress:
		return "DOING"
	case models.TaskStatusReview:
		return "REVIEW"
	case models.TaskStatusBlocked:
		return "BLOCKED"
	case models.TaskStatusDone:
		return "DONE"
	default:
		return strings.ToUpper(string(s))
	}
}

// renderBoard lays the kanban columns side by side.
func renderBoard(cols []views.Column, selected string, width int) string {
	colWidth := max(width/max(len(cols), 1)-2, 18)
	header := lipgloss.NewStyle().Bold(true).Foreground(fgColor).Background(secondaryColor).Padding(0, 1)
	card := lipgloss.NewStyle().Width(colWidth-2).Padding(0, 1)
	picked := card.Copy().Background(primaryColor).Foreground(fgColor).Bold(true)

	rendered := make([]string, 0, len(cols))
	for _, col := range cols {
		var b strings.Builder
		b.WriteString(header.Render(fmt.Sprintf("%s (%d)", col.Label, len(col.Tasks))))
		for _, t := range col.Tasks {
			b.WriteString("\n")
			text := truncate(t.Title, colWidth-6)
			if t.ID == selected {
				b.WriteString(picked.Render(text))
			} else {
				b.WriteString(card.Render(text + " " + mutedStyle.Render(string(t.Priority))))
			}
		}
		rendered = append(rendered, lipgloss.NewStyle().Width(colWidth).MarginRight(1).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderGantt(bars []views.GanttBar, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render("Gantt"))
	b.WriteString("\n")
	start, end, ok := views.Span(bars)
	if !ok {
		b.WriteString(mutedStyle.Render("  No tasks with both a start and due date."))
		return b.String()
	}

	cells := max(width-36, 10)
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %-22s %s → %s", "", start.Format("2006-01-02"), end.Format("2006-01-02"))))
	fill := lipgloss.NewStyle().Foreground(primaryColor)
	done := lipgloss.NewStyle().Foreground(successColor)
	for _, bar := range bars {
		from, to := views.Cells(bar, start, end, cells)
		style := fill
		if bar.Class == "status-"+string(models.TaskStatusDone) {
			style = done
		}
		line := mutedStyle.Render(strings.Repeat("·", from)) +
			style.Render(strings.Repeat("█", to-from)) +
			mutedStyle.Render(strings.Repeat("·", cells-to))
		b.WriteString(fmt.Sprintf("\n  %-22s %s %3d%%", truncate(bar.Name, 22), line, bar.Progress))
	}
	return b.String()
}

func renderCalendar(events []views.CalendarEvent) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render("Calendar"))
	b.WriteString("\n")
	if len(events) == 0 {
		b.WriteString(mutedStyle.Render("  No tasks with a due date."))
		return b.String()
	}

	events = append([]views.CalendarEvent(nil), events...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].End.Before(events[j].End) })

	day := ""
	for _, ev := range events {
		d := ev.End.Format("2006-01-02 Mon")
		if d != day {
			day = d
			b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render(d) + "\n")
		}
		mark := lipgloss.NewStyle().Foreground(warningColor).Render("○")
		if ev.Done {
			mark = lipgloss.NewStyle().Foreground(successColor).Render("●")
		}
		span := ""
		if !ev.Start.Equal(ev.End) {
			span = mutedStyle.Render(" since " + ev.Start.Format("01-02"))
		}
		b.WriteString(fmt.Sprintf("  %s %s%s\n", mark, ev.Title, span))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTable(rows []views.TableRow, selected string, width int) string {
	titleWidth := max(width-48, 16)
	head := fmt.Sprintf("  %-*s %-12s %-8s %5s  %-10s", titleWidth, "TITLE", "STATUS", "PRIORITY", "PROG", "DUE")

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(cyanColor).Render(head))
	if len(rows) == 0 {
		b.WriteString("\n" + mutedStyle.Render("  No tasks."))
		return b.String()
	}
	for _, r := range rows {
		line := fmt.Sprintf("%-*s %-12s %-8s %4d%%  %-10s", titleWidth, truncate(r.Title, titleWidth), r.Status, r.Priority, r.Progress, r.Due)
		b.WriteString("\n")
		if r.ID == selected {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(taskItemStyle.Render(line))
		}
	}
	return b.String()
}
