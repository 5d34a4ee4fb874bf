package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore persists tasks as JSON documents in SQLite. Indexed columns
// mirror the fields used for filtering.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a task store on an opened database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const selectTasks = `SELECT doc_json FROM tasks`

// Save inserts or replaces a task.
func (s *SQLStore) Save(ctx context.Context, t Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tasks(id, title, description, status, priority, tags_json, created_at, modified_at, doc_json)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			description=excluded.description,
			status=excluded.status,
			priority=excluded.priority,
			tags_json=excluded.tags_json,
			modified_at=excluded.modified_at,
			doc_json=excluded.doc_json`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), string(tags),
		formatTime(t.CreatedAt), formatTime(t.ModifiedAt), string(doc))
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Get fetches a task by id.
func (s *SQLStore) Get(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx, selectTasks+` WHERE id=?`, id)
	var doc string
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
		}
		return Task{}, fmt.Errorf("read task: %w", err)
	}
	return decodeTask(doc)
}

// List returns all tasks in creation order.
func (s *SQLStore) List(ctx context.Context) ([]Task, error) {
	return s.query(ctx, selectTasks+` ORDER BY created_at, rowid`)
}

// ListByStatus returns tasks with the given status.
func (s *SQLStore) ListByStatus(ctx context.Context, status Status) ([]Task, error) {
	return s.query(ctx, selectTasks+` WHERE status=? ORDER BY created_at, rowid`, string(status))
}

// ListActive returns tasks that are not completed.
func (s *SQLStore) ListActive(ctx context.Context) ([]Task, error) {
	return s.query(ctx, selectTasks+` WHERE status != ? ORDER BY created_at, rowid`, string(StatusCompleted))
}

// ListByTag returns tasks carrying tag.
func (s *SQLStore) ListByTag(ctx context.Context, tag string) ([]Task, error) {
	return s.query(ctx, selectTasks+` WHERE EXISTS (SELECT 1 FROM json_each(tasks.tags_json) WHERE json_each.value = ?)
		ORDER BY created_at, rowid`, tag)
}

// Search matches query case-insensitively against title and description.
func (s *SQLStore) Search(ctx context.Context, query string) ([]Task, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.query(ctx, selectTasks+` WHERE lower(title) LIKE ? OR lower(description) LIKE ? ORDER BY created_at, rowid`, pattern, pattern)
}

// Delete removes a task and reports whether it existed.
func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t, err := decodeTask(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func decodeTask(doc string) (Task, error) {
	var t Task
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return Task{}, fmt.Errorf("parse task: %w", err)
	}
	return t, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
