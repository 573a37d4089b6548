package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/n3dash/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.LoadSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Expected ErrNoSession on empty store, got %v", err)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	sess := models.Session{
		UserID:     "u1",
		Nickname:   "Kim",
		Department: models.DepartmentSolutionTeam,
		Token:      "tok-1",
		ExpiresAt:  &expires,
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	got, err := s.LoadSession(ctx)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if got.UserID != "u1" || got.Token != "tok-1" || got.Department != models.DepartmentSolutionTeam {
		t.Errorf("Unexpected session: %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(expires) {
		t.Errorf("Expected expiry %v, got %v", expires, got.ExpiresAt)
	}

	// Saving again replaces the single current slot.
	sess.UserID = "u2"
	sess.ExpiresAt = nil
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession (replace) failed: %v", err)
	}
	got, _ = s.LoadSession(ctx)
	if got.UserID != "u2" || got.ExpiresAt != nil {
		t.Errorf("Expected replaced session without expiry, got %+v", got)
	}
}

func TestDepartmentCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	deps := []models.Department{
		{ID: "d2", Name: "Sales", Tags: []string{"b2b"}},
		{ID: "d1", Name: "Support"},
	}
	if err := s.SaveDepartments(ctx, "u1", deps); err != nil {
		t.Fatalf("SaveDepartments failed: %v", err)
	}

	got, err := s.LoadDepartments(ctx, "u1")
	if err != nil {
		t.Fatalf("LoadDepartments failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d2" || got[1].ID != "d1" {
		t.Errorf("Expected departments in saved order, got %+v", got)
	}
	if len(got[0].Tags) != 1 || got[0].Tags[0] != "b2b" {
		t.Errorf("Expected tags to survive, got %+v", got[0].Tags)
	}

	other, _ := s.LoadDepartments(ctx, "u2")
	if len(other) != 0 {
		t.Errorf("Expected no departments for another user, got %d", len(other))
	}

	if err := s.ClearDepartments(ctx, "u1"); err != nil {
		t.Fatalf("ClearDepartments failed: %v", err)
	}
	got, _ = s.LoadDepartments(ctx, "u1")
	if len(got) != 0 {
		t.Errorf("Expected empty cache after clear, got %d", len(got))
	}
}

func TestDeleteSession_DropsOwnersCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.SaveSession(ctx, models.Session{UserID: "u1", Token: "t"})
	s.SaveDepartments(ctx, "u1", []models.Department{{ID: "d1"}})
	s.SaveDepartments(ctx, "u9", []models.Department{{ID: "d9"}})

	if err := s.DeleteSession(ctx); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := s.LoadSession(ctx); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected session to be gone, got %v", err)
	}
	if got, _ := s.LoadDepartments(ctx, "u1"); len(got) != 0 {
		t.Errorf("Expected u1 cache to be dropped, got %d", len(got))
	}
	if got, _ := s.LoadDepartments(ctx, "u9"); len(got) != 1 {
		t.Errorf("Expected other user's cache to remain, got %d", len(got))
	}
}
