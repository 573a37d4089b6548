package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/n3dash/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginTop(1)
)

// taskDetail is what the detail screen shows for one task.
type taskDetail struct {
	task     models.Task
	project  string
	subtasks []models.Subtask
	loaded   bool
}

// renderTaskDetail draws a task with its subtasks. Subtasks are listed by
// their order field.
func renderTaskDetail(d taskDetail, width int) string {
	var b strings.Builder
	t := d.task

	b.WriteString(headerStyle.Render(t.Title))
	b.WriteString("\n\n")

	b.WriteString(renderField("ID", t.ID))
	if d.project != "" {
		b.WriteString(renderField("Project", d.project))
	}
	b.WriteString(renderField("Status", formatStatus(t.Status)))
	b.WriteString(renderField("Priority", formatPriority(t.Priority)))
	b.WriteString(renderField("Progress", fmt.Sprintf("%.0f%%", t.Progress)))
	b.WriteString(renderField("Start", orDash(t.StartDate)))
	b.WriteString(renderField("Due", orDash(t.DueDate)))
	b.WriteString(renderField("Assignee", orDash(t.AssigneeID)))
	if len(t.Tags) > 0 {
		b.WriteString(renderField("Tags", strings.Join(t.Tags, ", ")))
	}
	if t.Description != nil && *t.Description != "" {
		b.WriteString(renderField("Description", truncate(*t.Description, max(width-16, 40))))
	}

	if len(t.Checklist) > 0 {
		b.WriteString(sectionStyle.Render("Checklist"))
		b.WriteString("\n")
		for _, item := range t.Checklist {
			b.WriteString(fmt.Sprintf("  • %s\n", truncate(item, max(width-6, 20))))
		}
	}

	b.WriteString(sectionStyle.Render("Subtasks"))
	b.WriteString("\n")
	switch {
	case !d.loaded:
		b.WriteString(mutedStyle.Render("  Loading subtasks..."))
		b.WriteString("\n")
	case len(d.subtasks) == 0:
		b.WriteString(mutedStyle.Render("  No subtasks."))
		b.WriteString("\n")
	default:
		subs := append([]models.Subtask(nil), d.subtasks...)
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
		for _, s := range subs {
			b.WriteString(fmt.Sprintf("  %s %s", subtaskMark(s.Status), truncate(s.Title, max(width-24, 20))))
			if s.DueDate != nil {
				b.WriteString(mutedStyle.Render("  due " + *s.DueDate))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderField(label, value string) string {
	return fmt.Sprintf("%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func subtaskMark(s models.SubtaskStatus) string {
	switch s {
	case models.SubtaskStatusDone:
		return lipgloss.NewStyle().Foreground(successColor).Render("[x]")
	case models.SubtaskStatusInProgress:
		return lipgloss.NewStyle().Foreground(secondaryColor).Render("[~]")
	case models.SubtaskStatusBlocked:
		return lipgloss.NewStyle().Foreground(errorColor).Render("[!]")
	default:
		return mutedStyle.Render("[ ]")
	}
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
