// Package ledger records batch run history in SQLite. It exists for the
// operator's benefit (the report command's --history view); the pipeline
// never reads it to decide what to process.
package ledger

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding run history.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the ledger database in dataDir and runs
// pending migrations. Pass ":memory:" as dataDir for an in-memory
// database (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "refalign.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies any embedded SQL migrations that haven't been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}
	return nil
}

// CreateRun inserts a new run row with status "running".
func (s *Store) CreateRun(r Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, groups_total, status)
		VALUES (?, ?, ?, 'running')`,
		r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.GroupsTotal,
	)
	return err
}

// FinishRun records the final counters and status of a run.
func (s *Store) FinishRun(id string, processed, skipped, failed int, status string) error {
	res, err := s.db.Exec(`
		UPDATE runs
		SET finished_at = ?, groups_processed = ?, groups_skipped = ?, groups_failed = ?, status = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), processed, skipped, failed, status, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordGroupRun inserts one group attempt.
func (s *Store) RecordGroupRun(g GroupRun) error {
	createdAt := g.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO group_runs (id, run_id, group_key, segments, matches, written, status, error, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.RunID, g.GroupKey, g.Segments, g.Matches, g.Written,
		g.Status, g.Error, g.DurationMs, createdAt.UTC().Format(time.RFC3339),
	)
	return err
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, finished_at, groups_total, groups_processed, groups_skipped, groups_failed, status
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&r.ID, &startedAt, &finishedAt, &r.GroupsTotal, &r.GroupsProcessed, &r.GroupsSkipped, &r.GroupsFailed, &r.Status); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if finishedAt.Valid && finishedAt.String != "" {
			if r.FinishedAt, err = time.Parse(time.RFC3339, finishedAt.String); err != nil {
				return nil, fmt.Errorf("parsing finished_at: %w", err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RecentGroupRuns returns the most recent group attempts, newest first.
func (s *Store) RecentGroupRuns(limit int) ([]GroupRun, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, group_key, segments, matches, written, status, error, duration_ms, created_at
		FROM group_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []GroupRun
	for rows.Next() {
		var g GroupRun
		var createdAt string
		if err := rows.Scan(&g.ID, &g.RunID, &g.GroupKey, &g.Segments, &g.Matches, &g.Written, &g.Status, &g.Error, &g.DurationMs, &createdAt); err != nil {
			return nil, err
		}
		if g.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, g)
	}
	return results, rows.Err()
}
