package taskdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DueDate     *time.Time
	Tags        string
	Context     string
}

type ListOpts struct {
	Status   string // default "pending"
	Priority int    // 0 = any
}

func (d *DB) Add(ctx context.Context, t Task) (int64, error) {
	if t.Title == "" {
		return 0, fmt.Errorf("task title is required")
	}
	if t.Priority == 0 {
		t.Priority = 2
	}

	var due any
	if t.DueDate != nil {
		due = t.DueDate.Format(time.RFC3339)
	}

	res, err := d.Pool.ExecContext(ctx, `
INSERT INTO tasks (title, description, priority, tags, context, due_date)
VALUES (?, ?, ?, ?, ?, ?);`,
		t.Title, t.Description, t.Priority, t.Tags, t.Context, due)
	if err != nil {
		return 0, fmt.Errorf("add task: %w", err)
	}
	return res.LastInsertId()
}

func (d *DB) List(ctx context.Context, opts ListOpts) ([]Task, error) {
	if opts.Status == "" {
		opts.Status = StatusPending
	}

	query := `
SELECT id, title, description, priority, status, created_at, updated_at, due_date, tags, context
FROM tasks
WHERE status = ?`
	args := []any{opts.Status}

	if opts.Priority != 0 {
		query += ` AND priority = ?`
		args = append(args, opts.Priority)
	}
	query += ` ORDER BY priority ASC, id ASC;`

	rows, err := d.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

// All returns every task regardless of status.
func (d *DB) All(ctx context.Context) ([]Task, error) {
	rows, err := d.Pool.QueryContext(ctx, `
SELECT id, title, description, priority, status, created_at, updated_at, due_date, tags, context
FROM tasks
ORDER BY id ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (d *DB) Complete(ctx context.Context, id int64) error {
	res, err := d.Pool.ExecContext(ctx, `
UPDATE tasks
SET status = 'completed',
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("no task with id %d", id)
	}
	return nil
}

// Reschedule sets the due date and replaces the description notes.
func (d *DB) Reschedule(ctx context.Context, id int64, due time.Time, notes string) error {
	res, err := d.Pool.ExecContext(ctx, `
UPDATE tasks
SET due_date = ?,
    description = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?;`, due.Format(time.RFC3339), notes, id)
	if err != nil {
		return fmt.Errorf("reschedule task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("no task with id %d", id)
	}
	return nil
}

// DeleteDuplicates removes tasks sharing a title, keeping the oldest row.
func (d *DB) DeleteDuplicates(ctx context.Context) (int64, error) {
	res, err := d.Pool.ExecContext(ctx, `
DELETE FROM tasks
WHERE id NOT IN (
  SELECT MIN(id) FROM tasks GROUP BY title
);`)
	if err != nil {
		return 0, fmt.Errorf("delete duplicates: %w", err)
	}
	return res.RowsAffected()
}

func scanTasks(rows *sql.Rows) ([]Task, error) {
	var out []Task
	for rows.Next() {
		var t Task
		var desc, tags, tctx, due sql.NullString
		var created, updated string
		if err := rows.Scan(
			&t.ID, &t.Title, &desc, &t.Priority, &t.Status,
			&created, &updated, &due, &tags, &tctx,
		); err != nil {
			return nil, err
		}
		t.Description = desc.String
		t.Tags = tags.String
		t.Context = tctx.String
		t.CreatedAt = parseDBTime(created)
		t.UpdatedAt = parseDBTime(updated)
		if due.Valid && due.String != "" {
			if ts := parseDBTime(due.String); !ts.IsZero() {
				t.DueDate = &ts
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// parseDBTime handles both RFC3339 (what we write) and sqlite's
// CURRENT_TIMESTAMP format.
func parseDBTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
