// Package taskrunner implements the Task Runner (§4.K): a single in-process
// worker draining a durable queue, with resource limits, retry-by-kind, and
// parent-before-children ordering.
package taskrunner

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

func ensureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	parent_id TEXT,
	kind TEXT NOT NULL,
	status TEXT NOT NULL,
	payload TEXT NOT NULL,
	attempts INTEGER NOT NULL DEFAULT 0,
	max_attempts INTEGER NOT NULL DEFAULT 0,
	checkpoint TEXT NOT NULL DEFAULT '',
	last_error TEXT NOT NULL DEFAULT '',
	max_memory_bytes INTEGER NOT NULL DEFAULT 0,
	max_cpu_time_ns INTEGER NOT NULL DEFAULT 0,
	max_wall_clock_ns INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
`

// Queue persists tasks and their checkpoints in a single SQLite database
// under the environment directory (.dht/state.db), per §4.K's durable-queue
// requirement: the database's own durability is the resume mechanism, so
// run_until_idle picks up exactly where a prior run left off.
type Queue struct {
	db *sql.DB
}

// OpenQueue opens (creating if absent) the durable queue for environmentDir.
// The exclusive environment-root file lock (§5) must already be held by the
// caller; SQLite's own busy-timeout is a second, inner layer, not a
// replacement for it.
func OpenQueue(environmentDir string) (*Queue, error) {
	path := filepath.Join(environmentDir, ".dht", "state.db")
	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening task queue %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing task queue schema: %w", err)
	}
	return &Queue{db: db}, nil
}

func (q *Queue) Close() error { return q.db.Close() }

// Enqueue inserts t as Pending.
func (q *Queue) Enqueue(t *Task) error {
	_, err := q.db.Exec(
		`INSERT INTO tasks (id, parent_id, kind, status, payload, attempts, max_attempts, checkpoint,
		                     max_memory_bytes, max_cpu_time_ns, max_wall_clock_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, '', ?, ?, ?, ?)`,
		t.ID, t.ParentID, t.Kind, string(StatusPending), t.Payload, t.Attempts, t.MaxAttempts,
		t.Limits.MaxMemoryBytes, int64(t.Limits.MaxCPUTime), int64(t.Limits.MaxWallClock), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("enqueueing task %s: %w", t.ID, err)
	}
	return nil
}

// DequeueNext returns the next runnable task: Pending, and either parentless
// or whose parent has already Succeeded (§4.K's parent-before-children
// ordering). Returns nil, nil if nothing is runnable right now.
func (q *Queue) DequeueNext() (*Task, error) {
	row := q.db.QueryRow(`
		SELECT t.id, t.parent_id, t.kind, t.status, t.payload, t.attempts, t.max_attempts, t.checkpoint,
		       t.max_memory_bytes, t.max_cpu_time_ns, t.max_wall_clock_ns
		FROM tasks t
		WHERE t.status = ?
		  AND (t.parent_id = '' OR t.parent_id IS NULL OR
		       (SELECT status FROM tasks p WHERE p.id = t.parent_id) = ?)
		ORDER BY t.created_at ASC
		LIMIT 1`,
		string(StatusPending), string(StatusSucceeded),
	)

	var t Task
	var status string
	var maxCPU, maxWall int64
	if err := row.Scan(&t.ID, &t.ParentID, &t.Kind, &status, &t.Payload, &t.Attempts, &t.MaxAttempts, &t.Checkpoint,
		&t.Limits.MaxMemoryBytes, &maxCPU, &maxWall); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("dequeuing next task: %w", err)
	}
	t.Status = Status(status)
	t.Limits.MaxCPUTime = time.Duration(maxCPU)
	t.Limits.MaxWallClock = time.Duration(maxWall)
	return &t, nil
}

// HasPending reports whether any task is still Pending or Running, the
// condition run_until_idle loops on.
func (q *Queue) HasPending() (bool, error) {
	var count int
	err := q.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE status IN (?, ?)`,
		string(StatusPending), string(StatusRunning),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking pending tasks: %w", err)
	}
	return count > 0, nil
}

func (q *Queue) SetStatus(id string, status Status, lastErr string) error {
	_, err := q.db.Exec(`UPDATE tasks SET status = ?, last_error = ? WHERE id = ?`, string(status), lastErr, id)
	if err != nil {
		return fmt.Errorf("updating status of task %s: %w", id, err)
	}
	return nil
}

func (q *Queue) IncrementAttempts(id string) error {
	_, err := q.db.Exec(`UPDATE tasks SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("incrementing attempts for task %s: %w", id, err)
	}
	return nil
}

// SaveCheckpoint persists step as the last completed unit of work for task
// id, satisfying the engine.Checkpointer contract so a Task wrapping a full
// regeneration run resumes at the right engine step after a crash.
func (q *Queue) SaveCheckpoint(id, step string) error {
	_, err := q.db.Exec(`UPDATE tasks SET checkpoint = ? WHERE id = ?`, step, id)
	if err != nil {
		return fmt.Errorf("saving checkpoint for task %s: %w", id, err)
	}
	return nil
}

func (q *Queue) LoadCheckpoint(id string) (string, error) {
	var checkpoint string
	err := q.db.QueryRow(`SELECT checkpoint FROM tasks WHERE id = ?`, id).Scan(&checkpoint)
	if err != nil {
		return "", fmt.Errorf("loading checkpoint for task %s: %w", id, err)
	}
	return checkpoint, nil
}
