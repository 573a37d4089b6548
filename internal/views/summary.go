package views

import (
	"fmt"
	"math"
	"strconv"

	"github.com/fentz26/n3dash/internal/models"
)

// Unscheduled is shown in place of a missing due date.
const Unscheduled = "unscheduled"

// TableRow is one row of the task table.
type TableRow struct {
	ID       string
	Title    string
	Status   string
	Priority string
	Progress int
	Due      string
}

// Table projects tasks into display rows in input order.
func Table(tasks []models.Task) []TableRow {
	rows := make([]TableRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, TableRow{
			ID:       t.ID,
			Title:    t.Title,
			Status:   string(t.Status),
			Priority: string(t.Priority),
			Progress: int(math.Round(t.Progress)),
			Due:      formatDue(t.DueDate),
		})
	}
	return rows
}

func formatDue(value *string) string {
	if value == nil || *value == "" {
		return Unscheduled
	}
	if t, ok := models.ParseTime(*value); ok {
		return t.Format("2006-01-02")
	}
	return *value
}

// Card is one headline number on the dashboard.
type Card struct {
	Label string
	Badge string
	Value int
}

// SummaryCards returns the four headline cards. A nil summary yields zeros.
func SummaryCards(s *models.DashboardSummary) []Card {
	var total, active, upcoming, overdue int
	if s != nil {
		total = s.ProjectTotal
		active = s.ActiveProjects
		upcoming = len(s.UpcomingDeadlines)
		overdue = s.OverdueTasks
	}
	return []Card{
		{Label: "Total Projects", Badge: "Projects", Value: total},
		{Label: "Active Projects", Badge: "Active", Value: active},
		{Label: "Upcoming Deadlines", Badge: "Due Soon", Value: upcoming},
		{Label: "Overdue Tasks", Badge: "Overdue", Value: overdue},
	}
}

// Point is one labelled value of a chart series.
type Point struct {
	Name  string
	Value float64
}

// ProjectStatusSeries maps the status distribution to chart points.
func ProjectStatusSeries(s *models.DashboardSummary) []Point {
	if s == nil {
		return []Point{}
	}
	return series(s.ProjectStatusDistribution, "status", "status")
}

// TaskStatusSeries maps the task status distribution to chart points.
func TaskStatusSeries(s *models.DashboardSummary) []Point {
	if s == nil {
		return []Point{}
	}
	return series(s.TaskStatusDistribution, "status", "status")
}

// DepartmentWorkloadSeries maps department workload to chart points.
func DepartmentWorkloadSeries(s *models.DashboardSummary) []Point {
	if s == nil {
		return []Point{}
	}
	return series(s.DepartmentWorkload, "department_id", "department")
}

// series reads name from nameKey and the value from "count". Records without
// a name are labelled "<fallback> N" with a 1-based position.
func series(records []map[string]any, nameKey, fallback string) []Point {
	points := make([]Point, 0, len(records))
	for i, r := range records {
		name := fmt.Sprintf("%s %d", fallback, i+1)
		if v, ok := r[nameKey]; ok && v != nil {
			name = fmt.Sprint(v)
		}
		points = append(points, Point{Name: name, Value: number(r["count"])})
	}
	return points
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err == nil {
			return f
		}
	}
	return 0
}
