package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/views"
)

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func priorityTag(p models.TaskPriority) string {
	switch p {
	case models.TaskPriorityUrgent:
		return "!!"
	case models.TaskPriorityHigh:
		return "! "
	case models.TaskPriorityMedium:
		return "- "
	case models.TaskPriorityLow:
		return ". "
	default:
		return "? "
	}
}

func sortEvents(events []views.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

func sortSubtasks(subtasks []models.Subtask) {
	sort.SliceStable(subtasks, func(i, j int) bool {
		return subtasks[i].Order < subtasks[j].Order
	})
}

// healthError names the HTTP status when the server answered at all.
func healthError(err error) error {
	if code := api.StatusCode(err); code != 0 {
		return fmt.Errorf("health check failed with status %d: %w", code, err)
	}
	return fmt.Errorf("health check failed: %w", err)
}
