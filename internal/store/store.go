// Package store provides SQLite-backed local state for n3dash: the current
// login and the per-user reference-data cache.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/n3dash/internal/models"
	_ "modernc.org/sqlite"
)

// ErrNoSession indicates no login has been persisted.
var ErrNoSession = errors.New("no persisted session")

// Store provides access to the local SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		slot TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		nickname TEXT NOT NULL,
		department TEXT NOT NULL,
		access_token TEXT NOT NULL,
		expires_at DATETIME,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS departments (
		owner_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		payload TEXT NOT NULL,
		cached_at DATETIME NOT NULL,
		PRIMARY KEY (owner_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_departments_owner ON departments(owner_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// currentSlot is the key of the single active login. One process-wide
// session exists at a time.
const currentSlot = "current"

// --- Session Operations ---

// SaveSession persists sess as the current login, replacing any previous one.
func (s *Store) SaveSession(ctx context.Context, sess models.Session) error {
	var expires sql.NullTime
	if sess.ExpiresAt != nil {
		expires = sql.NullTime{Time: sess.ExpiresAt.UTC(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (slot, user_id, nickname, department, access_token, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
			user_id = excluded.user_id,
			nickname = excluded.nickname,
			department = excluded.department,
			access_token = excluded.access_token,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at`,
		currentSlot, sess.UserID, sess.Nickname, string(sess.Department), sess.Token, expires, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns the persisted login or ErrNoSession.
func (s *Store) LoadSession(ctx context.Context) (*models.Session, error) {
	var sess models.Session
	var department string
	var expires sql.NullTime

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, nickname, department, access_token, expires_at FROM sessions WHERE slot = ?`,
		currentSlot,
	).Scan(&sess.UserID, &sess.Nickname, &department, &sess.Token, &expires)

	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	sess.Department = models.ParseUserDepartment(department)
	if expires.Valid {
		t := expires.Time
		sess.ExpiresAt = &t
	}
	return &sess, nil
}

// DeleteSession removes the persisted login and that user's cached
// reference data.
func (s *Store) DeleteSession(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM departments WHERE owner_id IN (SELECT user_id FROM sessions WHERE slot = ?)`,
		currentSlot,
	)
	if err != nil {
		return fmt.Errorf("clear departments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE slot = ?`, currentSlot); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return tx.Commit()
}

// --- Department Cache Operations ---

// SaveDepartments replaces ownerID's cached department list.
func (s *Store) SaveDepartments(ctx context.Context, ownerID string, departments []models.Department) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM departments WHERE owner_id = ?`, ownerID); err != nil {
		return fmt.Errorf("clear departments: %w", err)
	}

	now := time.Now().UTC()
	for i, d := range departments {
		payload, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encode department %s: %w", d.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO departments (owner_id, position, id, payload, cached_at) VALUES (?, ?, ?, ?, ?)`,
			ownerID, i, d.ID, string(payload), now,
		)
		if err != nil {
			return fmt.Errorf("insert department: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadDepartments returns ownerID's cached departments in their original
// order. An empty result means nothing is cached.
func (s *Store) LoadDepartments(ctx context.Context, ownerID string) ([]models.Department, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM departments WHERE owner_id = ? ORDER BY position`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		var d models.Department
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, fmt.Errorf("decode department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// ClearDepartments drops ownerID's cached departments.
func (s *Store) ClearDepartments(ctx context.Context, ownerID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE owner_id = ?`, ownerID)
	return err
}
