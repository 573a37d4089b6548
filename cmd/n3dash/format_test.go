package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/views"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"a longer title here", 10, "a longe..."},
		{"솔루션팀 프로젝트 일정", 6, "솔루션..."},
		{"abcdef", 2, "ab"},
	}
	for _, c := range cases {
		if got := truncate(c.in, c.n); got != c.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestGanttLine(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)

	bar := views.GanttBar{Start: start.Add(5 * 24 * time.Hour), End: end}
	line := ganttLine(bar, start, end, 10)
	if line != "·····█████" {
		t.Errorf("Unexpected line %q", line)
	}

	point := views.GanttBar{Start: end, End: end}
	if got := ganttLine(point, start, end, 10); strings.Count(got, "█") != 1 || len([]rune(got)) != 10 {
		t.Errorf("Expected a single cell at the end, got %q", got)
	}
}

func TestHealthError(t *testing.T) {
	apiErr := &api.APIError{StatusCode: 503, Detail: "maintenance"}
	err := healthError(fmt.Errorf("get /health: %w", apiErr))
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("Expected the status in %q", err)
	}
	if !errors.Is(err, apiErr) {
		t.Error("Expected the API error to stay wrapped")
	}

	err = healthError(api.ErrTransport)
	if strings.Contains(err.Error(), "status") {
		t.Errorf("Expected no status for a transport error, got %q", err)
	}
}
