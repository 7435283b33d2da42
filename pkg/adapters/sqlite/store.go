/*
Package sqlite implements a persistent history store on SQLite.

It uses modernc.org/sqlite (a pure Go, CGo-free implementation), so the binary stays
statically linked. The schema is created by numbered migrations recorded in the
schema_migrations table.
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/gss/pkg/domain"

	_ "modernc.org/sqlite"
)

// migrations are applied in order; an index is its version number minus one.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS history (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT    NOT NULL UNIQUE,
		session_id TEXT    NOT NULL,
		created_at TEXT    NOT NULL,
		function   TEXT    NOT NULL,
		a          REAL    NOT NULL,
		b          REAL    NOT NULL,
		tol        REAL    NOT NULL,
		mode       TEXT    NOT NULL,
		status     TEXT    NOT NULL,
		payload    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_session ON history(session_id, seq)`,
}

// Store implements ports.HistoryStore on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and runs migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return err
	}

	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			i+1, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&v)
	return v, err
}

// Append inserts one row.
func (s *Store) Append(ctx context.Context, sessionID string, entry domain.HistoryEntry) error {
	var payload sql.NullString
	if entry.Payload != nil {
		payload = sql.NullString{String: string(entry.Payload), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history (id, session_id, created_at, function, a, b, tol, mode, status, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, sessionID, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		entry.Function, entry.A, entry.B, entry.Tolerance,
		string(entry.Mode), string(entry.Status), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// List returns the session's entries in insertion order.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, created_at, function, a, b, tol, mode, status, payload
		 FROM history WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var (
			e         domain.HistoryEntry
			createdAt string
			mode      string
			status    string
			payload   sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &createdAt, &e.Function, &e.A, &e.B, &e.Tolerance, &mode, &status, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		e.Mode = domain.Mode(mode)
		e.Status = domain.Status(status)
		if payload.Valid {
			e.Payload = json.RawMessage(payload.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Trim keeps the newest keep rows of the session.
func (s *Store) Trim(ctx context.Context, sessionID string, keep int) error {
	if keep <= 0 {
		return s.Clear(ctx, sessionID)
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM history WHERE session_id = ? AND seq NOT IN (
			SELECT seq FROM history WHERE session_id = ? ORDER BY seq DESC LIMIT ?
		)`, sessionID, sessionID, keep)
	if err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// Clear deletes the session's rows.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Sessions returns the distinct session IDs, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM history ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
