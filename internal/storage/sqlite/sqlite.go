// Package sqlite provides a local, single-file Store implementation for
// development and offline testing, backed by modernc.org/sqlite. It carries
// no Qdrant or Postgres dependency and is not used in production.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

// Store implements internal/store.Store over a local SQLite file.
type Store struct {
	db        *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// DefaultDBPath returns ~/.ticketassign/snapshot.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("sqlite: get home directory: %w", err)
	}
	return filepath.Join(home, ".ticketassign", "snapshot.db"), nil
}

// New opens (creating if absent) a SQLite database at dbPath and runs
// migrations. Pass "" to use DefaultDBPath.
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: connect: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database. Safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

// DB returns the underlying *sql.DB for advanced use (seeding fixtures).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	currentVersion := 0
	row := s.db.QueryRowContext(ctx, `SELECT version FROM schema_meta ORDER BY version DESC LIMIT 1`)
	switch err := row.Scan(&currentVersion); {
	case err == nil:
	case err == sql.ErrNoRows, isTableNotFoundError(err):
		currentVersion = 0
	default:
		return fmt.Errorf("read schema version: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{version: 1, sql: migrationV1},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration v%d: %w", m.version, err)
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO schema_meta (version, applied_at_unix_ms) VALUES (?, ?)`,
			m.version, time.Now().UnixMilli(),
		); err != nil {
			return fmt.Errorf("record migration v%d: %w", m.version, err)
		}
	}
	return nil
}

func isTableNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return containsFold(err.Error(), "no such table")
}

func containsFold(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

const migrationV1 = `
CREATE TABLE IF NOT EXISTS schema_meta (
  version INTEGER PRIMARY KEY,
  applied_at_unix_ms INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  timezone TEXT NOT NULL,
  role TEXT NOT NULL,
  skill_tags TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS active_tickets (
  ticket_id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL REFERENCES members(id),
  priority TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at_unix_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_active_tickets_member ON active_tickets(member_id);

CREATE TABLE IF NOT EXISTS leave_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  member_id TEXT NOT NULL REFERENCES members(id),
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leave_records_member ON leave_records(member_id, start_date, end_date);

CREATE TABLE IF NOT EXISTS holiday_entries (
  holiday_date TEXT NOT NULL,
  region TEXT NOT NULL,
  PRIMARY KEY (holiday_date, region)
);

CREATE TABLE IF NOT EXISTS assignments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ticket_id TEXT NOT NULL,
  assignee_id TEXT NOT NULL REFERENCES members(id),
  assigned_at_unix_ms INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_assignee_time ON assignments(assignee_id, assigned_at_unix_ms);
`
