// Package batch runs queued generation work through the fallback chain on a
// schedule. Unlike the live API path, batch work tolerates waiting: when the
// whole chain is cooling down the runner sleeps through the shortest
// cooldown-sized interval and retries once before giving up on a unit.
package batch

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Unit is one queued generation request.
type Unit struct {
	ID                int64
	Prompt            string
	SystemInstruction string
	Status            string
	Attempts          int
	Result            string
	Model             string
	LastError         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Unit statuses.
const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Queue is a SQLite-backed work queue. SQLite keeps the queue durable
// across restarts while staying a single file next to the cooldown state.
type Queue struct {
	db *sql.DB

	enqueueStmt *sql.Stmt
	pendingStmt *sql.Stmt
	doneStmt    *sql.Stmt
	failedStmt  *sql.Stmt
	countsStmt  *sql.Stmt
}

// OpenQueue opens (creating if needed) the queue database at path.
func OpenQueue(path string) (*Queue, error) {
	if path == "" {
		return nil, fmt.Errorf("queue path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	q := &Queue{db: db}
	if err := q.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize queue schema: %w", err)
	}
	if err := q.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare queue statements: %w", err)
	}
	return q, nil
}

func (q *Queue) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS work_units (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		prompt TEXT NOT NULL,
		system_instruction TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		result TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		last_error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_work_units_status ON work_units(status, id);
	`
	_, err := q.db.Exec(schema)
	return err
}

func (q *Queue) prepareStatements() error {
	var err error

	q.enqueueStmt, err = q.db.Prepare(`
		INSERT INTO work_units (prompt, system_instruction, created_at, updated_at)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	q.pendingStmt, err = q.db.Prepare(`
		SELECT id, prompt, system_instruction, status, attempts, result, model, last_error, created_at, updated_at
		FROM work_units WHERE status = 'pending' ORDER BY id LIMIT ?`)
	if err != nil {
		return err
	}

	q.doneStmt, err = q.db.Prepare(`
		UPDATE work_units
		SET status = 'done', result = ?, model = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?`)
	if err != nil {
		return err
	}

	q.failedStmt, err = q.db.Prepare(`
		UPDATE work_units
		SET status = 'failed', last_error = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?`)
	if err != nil {
		return err
	}

	q.countsStmt, err = q.db.Prepare(`
		SELECT status, COUNT(*) FROM work_units GROUP BY status`)
	return err
}

// Enqueue adds a pending unit and returns its ID.
func (q *Queue) Enqueue(ctx context.Context, prompt, systemInstruction string) (int64, error) {
	if prompt == "" {
		return 0, fmt.Errorf("prompt cannot be empty")
	}
	now := time.Now().Unix()
	res, err := q.enqueueStmt.ExecContext(ctx, prompt, systemInstruction, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue unit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read unit id: %w", err)
	}
	return id, nil
}

// Pending returns up to limit pending units in insertion order.
func (q *Queue) Pending(ctx context.Context, limit int) ([]Unit, error) {
	rows, err := q.pendingStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending units: %w", err)
	}
	defer rows.Close()

	var units []Unit
	for rows.Next() {
		var u Unit
		var createdAt, updatedAt int64
		if err := rows.Scan(&u.ID, &u.Prompt, &u.SystemInstruction, &u.Status, &u.Attempts,
			&u.Result, &u.Model, &u.LastError, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		u.CreatedAt = time.Unix(createdAt, 0)
		u.UpdatedAt = time.Unix(updatedAt, 0)
		units = append(units, u)
	}
	return units, rows.Err()
}

// MarkDone records a successful generation for the unit.
func (q *Queue) MarkDone(ctx context.Context, id int64, model, result string) error {
	if _, err := q.doneStmt.ExecContext(ctx, result, model, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("failed to mark unit %d done: %w", id, err)
	}
	return nil
}

// MarkFailed records a permanent failure for the unit.
func (q *Queue) MarkFailed(ctx context.Context, id int64, cause string) error {
	if _, err := q.failedStmt.ExecContext(ctx, cause, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("failed to mark unit %d failed: %w", id, err)
	}
	return nil
}

// Counts returns the unit count per status.
func (q *Queue) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := q.countsStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan counts: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Close releases the prepared statements and the database handle.
func (q *Queue) Close() error {
	for _, stmt := range []*sql.Stmt{q.enqueueStmt, q.pendingStmt, q.doneStmt, q.failedStmt, q.countsStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return q.db.Close()
}
