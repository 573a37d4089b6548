package views

import (
	"math"
	"time"

	"github.com/fentz26/n3dash/internal/models"
)

// CalendarEvent is a task placed on the calendar.
type CalendarEvent struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
	Done  bool
}

// Calendar maps tasks with a parseable due date to events. An event starts
// at the task's start date when it parses, else at the due date.
func Calendar(tasks []models.Task) []CalendarEvent {
	events := []CalendarEvent{}
	for _, t := range tasks {
		end, ok := parseOptional(t.DueDate)
		if !ok {
			continue
		}
		start, ok := parseOptional(t.StartDate)
		if !ok {
			start = end
		}
		events = append(events, CalendarEvent{
			ID:    t.ID,
			Title: t.Title,
			Start: start,
			End:   end,
			Done:  t.Status == models.TaskStatusDone,
		})
	}
	return events
}

// GanttBar is a scheduled task on the gantt chart.
type GanttBar struct {
	ID       string
	Name     string
	Start    time.Time
	End      time.Time
	Progress int
	Class    string
}

// Gantt maps tasks with both a parseable start and due date to bars.
func Gantt(tasks []models.Task) []GanttBar {
	bars := []GanttBar{}
	for _, t := range tasks {
		start, ok := parseOptional(t.StartDate)
		if !ok {
			continue
		}
		end, ok := parseOptional(t.DueDate)
		if !ok {
			continue
		}
		bars = append(bars, GanttBar{
			ID:       t.ID,
			Name:     t.Title,
			Start:    start,
			End:      end,
			Progress: int(math.Round(t.Progress)),
			Class:    "status-" + string(t.Status),
		})
	}
	return bars
}

// Span returns the earliest start and latest end across bars. ok is false
// when bars is empty.
func Span(bars []GanttBar) (start, end time.Time, ok bool) {
	for i, b := range bars {
		if i == 0 || b.Start.Before(start) {
			start = b.Start
		}
		if i == 0 || b.End.After(end) {
			end = b.End
		}
	}
	return start, end, len(bars) > 0
}

// Cells maps a bar onto a row of width cells spanning [start, end]. The
// returned half-open range always covers at least one cell.
func Cells(b GanttBar, start, end time.Time, width int) (from, to int) {
	if width <= 0 {
		return 0, 0
	}
	total := end.Sub(start)
	if total <= 0 {
		return 0, width
	}
	from = int(float64(width) * float64(b.Start.Sub(start)) / float64(total))
	to = int(float64(width) * float64(b.End.Sub(start)) / float64(total))
	if from < 0 {
		from = 0
	}
	if from >= width {
		from = width - 1
	}
	if to <= from {
		to = from + 1
	}
	if to > width {
		to = width
	}
	return from, to
}
