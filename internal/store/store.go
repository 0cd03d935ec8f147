// Package store is the persistent ledger behind internal/procqueue: a
// SQLite-backed record of every derivative job's identity, priority,
// and last-known state so that an in-flight job resumes as pending
// after a restart instead of silently vanishing.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scottdrichards/photrix/internal/procqueue"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	hash TEXT NOT NULL,
	variant TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	priority INTEGER NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	created_at TEXT NOT NULL,
	started_at TEXT,
	completed_at TEXT,
	UNIQUE(kind, hash, variant)
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
`

// Store persists procqueue.Job state across restarts.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens the ledger at dbPath, running WAL mode the
// same way the teacher's job database does.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("store: create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts a job's current state, keyed by (kind, hash, variant).
// sourcePath is the relative path of the file this job's hash was
// derived from; it lets Restore resubmit pending jobs without needing
// the hash function to be reversible.
func (s *Store) Save(job *procqueue.Job, sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO jobs (id, kind, hash, variant, source_path, priority, status, error, created_at, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, hash, variant) DO UPDATE SET
			id=excluded.id, source_path=excluded.source_path, priority=excluded.priority, status=excluded.status,
			error=excluded.error, started_at=excluded.started_at, completed_at=excluded.completed_at
	`,
		job.ID, job.Kind, job.Hash, job.Variant, sourcePath, int(job.Priority), string(job.Status), job.Error,
		formatTime(job.CreatedAt), formatTime(job.StartedAt), formatTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("store: save job: %w", err)
	}
	return nil
}

// Delete removes a job record entirely. Derivative cache eviction does
// not call it, so an evicted artifact's job row stays in the ledger.
func (s *Store) Delete(kind, hash, variant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM jobs WHERE kind=? AND hash=? AND variant=?`, kind, hash, variant)
	return err
}

// Record pairs a persisted job with the source path its hash was
// computed from.
type Record struct {
	Job        *procqueue.Job
	SourcePath string
}

// LoadAll returns every persisted job, in no particular order.
func (s *Store) LoadAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, kind, hash, variant, source_path, priority, status, error, created_at, started_at, completed_at FROM jobs`)
	if err != nil {
		return nil, fmt.Errorf("store: load jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var j procqueue.Job
		var sourcePath string
		var priority int
		var status string
		var errMsg sql.NullString
		var created, started, completed sql.NullString
		if err := rows.Scan(&j.ID, &j.Kind, &j.Hash, &j.Variant, &sourcePath, &priority, &status, &errMsg, &created, &started, &completed); err != nil {
			return nil, fmt.Errorf("store: scan job: %w", err)
		}
		j.Priority = procqueue.Priority(priority)
		j.Status = procqueue.Status(status)
		j.Error = errMsg.String
		j.CreatedAt = parseTime(created)
		j.StartedAt = parseTime(started)
		j.CompletedAt = parseTime(completed)
		out = append(out, Record{Job: &j, SourcePath: sourcePath})
	}
	return out, rows.Err()
}

// ResetRunningJobs changes every job recorded as running back to
// pending, used on startup to recover from a crash mid-transcode: the
// job is resubmitted rather than left stuck.
func (s *Store) ResetRunningJobs() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`UPDATE jobs SET status=?, started_at=NULL WHERE status=?`,
		string(procqueue.StatusPending), string(procqueue.StatusRunning))
	if err != nil {
		return 0, fmt.Errorf("store: reset running jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func formatTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
