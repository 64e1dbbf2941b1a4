// Package history records finished conversion runs in a local SQLite
// database so past loads can be reviewed from the UI.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses as stored.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Run is one conversion run, past or in progress.
type Run struct {
	ID           string
	StartedAt    time.Time
	CompletedAt  *time.Time
	Status       string
	SourceFile   string
	Server       string
	Database     string
	Table        string
	RowsInserted int64
	RowsSkipped  int64
	ErrorMessage string
}

// Store manages run history in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		status TEXT NOT NULL DEFAULT 'running',
		source_file TEXT NOT NULL,
		server TEXT NOT NULL,
		database_name TEXT NOT NULL,
		table_name TEXT NOT NULL,
		rows_inserted INTEGER NOT NULL DEFAULT 0,
		rows_skipped INTEGER NOT NULL DEFAULT 0,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin records a new run as running and returns its id.
func (s *Store) Begin(sourceFile, server, database, table string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, status, source_file, server, database_name, table_name)
		VALUES (?, datetime('now'), ?, ?, ?, ?, ?)
	`, id, StatusRunning, sourceFile, server, database, table)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Finish marks a run as done with its final status and counts. errMsg is
// empty for completed runs.
func (s *Store) Finish(id, status string, inserted, skipped int64, errMsg string) error {
	_, err := s.db.Exec(`
		UPDATE runs
		SET status = ?, completed_at = datetime('now'),
		    rows_inserted = ?, rows_skipped = ?, error_message = ?
		WHERE id = ?
	`, status, inserted, skipped, errMsg, id)
	return err
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, started_at, completed_at, status, source_file, server,
		       database_name, table_name, rows_inserted, rows_skipped,
		       COALESCE(error_message, '')
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var completedAt sql.NullString
		if err := rows.Scan(&r.ID, &startedAt, &completedAt, &r.Status,
			&r.SourceFile, &r.Server, &r.Database, &r.Table,
			&r.RowsInserted, &r.RowsSkipped, &r.ErrorMessage); err != nil {
			return nil, err
		}
		if t, err := time.Parse("2006-01-02 15:04:05", startedAt); err == nil {
			r.StartedAt = t
		}
		if completedAt.Valid {
			t, err := time.Parse("2006-01-02 15:04:05", completedAt.String)
			if err == nil {
				r.CompletedAt = &t
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
