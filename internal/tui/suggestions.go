package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions provides autocomplete for the command bar
type Suggestions struct {
	items        []SuggestionItem
	filtered     []SuggestionItem
	selectedIdx  int
	visible      bool
	prefix       string // "/" or "@"
	currentInput string
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command", "project", "task"
}

var commandSuggestions = []SuggestionItem{
	{Text: "/refresh", Description: "Reload dashboard, projects and tasks", Type: "command"},
	{Text: "/new", Description: "Create a project", Type: "command"},
	{Text: "/open", Description: "Open a task by id", Type: "command"},
	{Text: "/tasks", Description: "Load the tasks of a project", Type: "command"},
	{Text: "/departments", Description: "Reload departments from the server", Type: "command"},
	{Text: "/whoami", Description: "Show current user info", Type: "command"},
	{Text: "/logout", Description: "Sign out of your account", Type: "command"},
	{Text: "/quit", Description: "Leave n3dash", Type: "command"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{
		items: commandSuggestions,
	}
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	s.currentInput = input
	if input == "" || strings.Contains(input, " ") {
		s.visible = false
		s.filtered = nil
		s.prefix = ""
		return
	}

	switch input[0] {
	case '/':
		s.prefix = "/"
		s.items = commandSuggestions
		s.visible = true
		s.filter(strings.ToLower(input))
	case '@':
		// references are supplied by SetReferences
		if s.prefix != "@" {
			s.items = nil
		}
		s.prefix = "@"
		s.visible = true
		s.filter(strings.ToLower(strings.TrimPrefix(input, "@")))
	default:
		s.visible = false
		s.filtered = nil
		s.prefix = ""
	}
}

// SetReferences replaces the "@" suggestions with projects and tasks.
func (s *Suggestions) SetReferences(projects, tasks []SuggestionItem) {
	if s.prefix != "@" {
		return
	}
	s.items = append(append([]SuggestionItem{}, projects...), tasks...)
	s.filter(strings.ToLower(strings.TrimPrefix(s.currentInput, "@")))
}

func (s *Suggestions) filter(query string) {
	if query == "" || query == "/" {
		s.filtered = s.items
		s.selectedIdx = 0
		return
	}

	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Text), query) ||
			strings.Contains(strings.ToLower(item.Description), query) {
			s.filtered = append(s.filtered, item)
		}
	}
	s.selectedIdx = 0
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// Completion returns the command-bar text for the selected suggestion.
func (s *Suggestions) Completion() string {
	sel := s.Selected()
	if sel == nil {
		return s.currentInput
	}
	switch sel.Type {
	case "project":
		return "/tasks " + sel.Text + " "
	case "task":
		return "/open " + sel.Text + " "
	default:
		return sel.Text + " "
	}
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder

	suggestionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Padding(0, 1).
		Width(max(width-4, 20))

	itemStyle := lipgloss.NewStyle().Foreground(fgColor)
	descStyle := lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	pick := lipgloss.NewStyle().Background(primaryColor).Foreground(fgColor).Bold(true)

	header := "Commands"
	if s.prefix == "@" {
		header = "References"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Render(header))
	b.WriteString("\n")

	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			more := len(s.filtered) - maxVisible
			b.WriteString(descStyle.Render(fmt.Sprintf("  ... and %d more", more)))
			break
		}

		var line string
		if i == s.selectedIdx {
			line = pick.Render("▶ " + item.Text)
			if item.Description != "" {
				line += " " + pick.Render(item.Description)
			}
		} else {
			line = itemStyle.Render("  " + item.Text)
			if item.Description != "" {
				line += " " + descStyle.Render(item.Description)
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return suggestionStyle.Render(b.String())
}
