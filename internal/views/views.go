// Package views derives display-ready structures from store snapshots. Every
// function is pure: same input, same output, no I/O.
package views

import (
	"sort"
	"time"

	"github.com/fentz26/n3dash/internal/models"
)

// Default caps for the personal panels.
const (
	DefaultFallbackLimit = 5
	DefaultTodayLimit    = 10
)

// StatusOther is the board bucket for statuses the service does not define.
const StatusOther models.TaskStatus = "other"

// Column is one board bucket.
type Column struct {
	Status models.TaskStatus
	Label  string
	Tasks  []models.Task
}

var statusLabels = map[models.TaskStatus]string{
	models.TaskStatusTodo:       "To do",
	models.TaskStatusInProgress: "In progress",
	models.TaskStatusReview:     "Review",
	models.TaskStatusBlocked:    "Blocked",
	models.TaskStatusDone:       "Done",
	StatusOther:                 "Other",
}

// StatusLabel returns the display label for a board status.
func StatusLabel(s models.TaskStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Board partitions tasks into the fixed status buckets in board order. Tasks
// keep their input order within a bucket. Tasks with an unknown status land
// in a trailing StatusOther column, present only when non-empty.
func Board(tasks []models.Task) []Column {
	columns := make([]Column, 0, len(models.TaskStatuses)+1)
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, s := range models.TaskStatuses {
		columns = append(columns, Column{Status: s, Label: StatusLabel(s), Tasks: []models.Task{}})
		index[s] = i
	}

	var other []models.Task
	for _, t := range tasks {
		if t.Status.Known() {
			i := index[t.Status]
			columns[i].Tasks = append(columns[i].Tasks, t)
			continue
		}
		other = append(other, t)
	}
	if len(other) > 0 {
		columns = append(columns, Column{Status: StatusOther, Label: StatusLabel(StatusOther), Tasks: other})
	}
	return columns
}

// SortByPriority returns a copy of tasks ordered urgent, high, medium, low,
// then unknown. Equal priorities keep their input order.
func SortByPriority(tasks []models.Task) []models.Task {
	out := append([]models.Task(nil), tasks...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}

// MyWork returns the tasks assigned to userID in priority order. When none
// are, it falls back to at most fallbackLimit unassigned tasks, also by
// priority. A non-positive fallbackLimit uses DefaultFallbackLimit.
func MyWork(tasks []models.Task, userID string, fallbackLimit int) []models.Task {
	if fallbackLimit <= 0 {
		fallbackLimit = DefaultFallbackLimit
	}

	var mine, unassigned []models.Task
	for _, t := range tasks {
		switch a := t.Assignee(); {
		case userID != "" && a == userID:
			mine = append(mine, t)
		case a == "":
			unassigned = append(unassigned, t)
		}
	}
	if len(mine) > 0 {
		return SortByPriority(mine)
	}

	fallback := SortByPriority(unassigned)
	if len(fallback) > fallbackLimit {
		fallback = fallback[:fallbackLimit]
	}
	return fallback
}

// Today returns open tasks due on now's local calendar date, in priority
// order, capped at limit. Tasks assigned to someone other than assigneeID
// are excluded; unassigned tasks are kept. An empty assigneeID keeps all.
// Missing or malformed due dates are excluded. A non-positive limit uses
// DefaultTodayLimit.
func Today(tasks []models.Task, assigneeID string, now time.Time, limit int) []models.Task {
	if limit <= 0 {
		limit = DefaultTodayLimit
	}
	y, m, d := now.Date()

	var due []models.Task
	for _, t := range tasks {
		if assigneeID != "" && t.Assignee() != "" && t.Assignee() != assigneeID {
			continue
		}
		if t.Status == models.TaskStatusDone {
			continue
		}
		date, ok := parseOptional(t.DueDate)
		if !ok {
			continue
		}
		date = date.In(now.Location())
		if dy, dm, dd := date.Date(); dy == y && dm == m && dd == d {
			due = append(due, t)
		}
	}

	due = SortByPriority(due)
	if len(due) > limit {
		due = due[:limit]
	}
	return due
}

func parseOptional(value *string) (time.Time, bool) {
	if value == nil || *value == "" {
		return time.Time{}, false
	}
	return models.ParseTime(*value)
}
