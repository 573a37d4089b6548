package views

import (
	"testing"

	"github.com/fentz26/n3dash/internal/models"
)

func TestTable(t *testing.T) {
	a := task("a", models.TaskStatusTodo, models.TaskPriorityHigh)
	a.Progress = 49.5
	a.DueDate = ptr("2026-03-05T10:00:00")
	b := task("b", models.TaskStatusDone, models.TaskPriorityLow)

	rows := Table([]models.Task{a, b})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Due != "2026-03-05" || rows[0].Progress != 50 || rows[0].Priority != "high" {
		t.Errorf("Unexpected row: %+v", rows[0])
	}
	if rows[1].Due != Unscheduled {
		t.Errorf("Expected %q for a missing due date, got %q", Unscheduled, rows[1].Due)
	}
}

func TestSummaryCards(t *testing.T) {
	cards := SummaryCards(nil)
	if len(cards) != 4 {
		t.Fatalf("Expected 4 cards, got %d", len(cards))
	}
	for _, c := range cards {
		if c.Value != 0 {
			t.Errorf("Expected zero for %s without a summary, got %d", c.Label, c.Value)
		}
	}

	cards = SummaryCards(&models.DashboardSummary{
		ProjectTotal:      7,
		ActiveProjects:    3,
		OverdueTasks:      2,
		UpcomingDeadlines: []map[string]any{{"id": "t1"}, {"id": "t2"}},
	})
	want := []int{7, 3, 2, 2}
	for i, c := range cards {
		if c.Value != want[i] {
			t.Errorf("%s: expected %d, got %d", c.Label, want[i], c.Value)
		}
	}
}

func TestChartSeries(t *testing.T) {
	s := &models.DashboardSummary{
		ProjectStatusDistribution: []map[string]any{
			{"status": "planned", "count": float64(4)},
			{"count": "2"},
		},
		DepartmentWorkload: []map[string]any{
			{"department_id": "d1", "count": float64(9)},
			{"department_id": nil},
		},
	}

	status := ProjectStatusSeries(s)
	if len(status) != 2 || status[0] != (Point{"planned", 4}) || status[1] != (Point{"status 2", 2}) {
		t.Errorf("Unexpected status series: %+v", status)
	}

	workload := DepartmentWorkloadSeries(s)
	if len(workload) != 2 || workload[0] != (Point{"d1", 9}) || workload[1] != (Point{"department 2", 0}) {
		t.Errorf("Unexpected workload series: %+v", workload)
	}

	if len(ProjectStatusSeries(nil)) != 0 || len(TaskStatusSeries(nil)) != 0 {
		t.Error("Expected empty series without a summary")
	}
}
