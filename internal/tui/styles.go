package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#6366F1")
	successColor   = lipgloss.Color("#10B981")
	warningColor   = lipgloss.Color("#F59E0B")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	fgColor        = lipgloss.Color("#F9FAFB")
	cyanColor      = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	taskItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true).
			Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(fgColor).
			Background(secondaryColor).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Padding(0, 1)

	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	onlineStyle  = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	offlineStyle = lipgloss.NewStyle().Foreground(errorColor)
)

func formatStatus(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusTodo:
		return lipgloss.NewStyle().Foreground(warningColor).Render("○ TODO")
	case models.TaskStatusInProgress:
		return lipgloss.NewStyle().Foreground(secondaryColor).Render("◐ DOING")
	case models.TaskStatusReview:
		return lipgloss.NewStyle().Foreground(cyanColor).Render("◑ REVIEW")
	case models.TaskStatusBlocked:
		return lipgloss.NewStyle().Foreground(errorColor).Render("✗ BLOCKED")
	case models.TaskStatusDone:
		return lipgloss.NewStyle().Foreground(successColor).Render("● DONE")
	default:
		return mutedStyle.Render("? " + string(status))
	}
}

func formatPriority(p models.TaskPriority) string {
	switch p {
	case models.TaskPriorityUrgent:
		return lipgloss.NewStyle().Foreground(errorColor).Bold(true).Render("URGENT")
	case models.TaskPriorityHigh:
		return lipgloss.NewStyle().Foreground(warningColor).Render("HIGH")
	case models.TaskPriorityMedium:
		return lipgloss.NewStyle().Foreground(successColor).Render("MEDIUM")
	case models.TaskPriorityLow:
		return mutedStyle.Render("LOW")
	default:
		return mutedStyle.Render(string(p))
	}
}

func toastStyle(kind notify.Kind) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).Foreground(fgColor)
	switch kind {
	case notify.KindSuccess:
		return base.Background(successColor)
	case notify.KindError:
		return base.Background(errorColor)
	default:
		return base.Background(secondaryColor)
	}
}
