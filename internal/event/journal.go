package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Entry is one journaled message.
type Entry struct {
	Seq      int64     `json:"seq"`
	TaskID   string    `json:"task_id,omitempty"`
	Time     time.Time `json:"ts"`
	Kind     Kind      `json:"type"`
	Message  string    `json:"message"`
	DataJSON string    `json:"data,omitempty"`
}

// Journal appends bus messages to the events table.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// NewJournal creates a journal on an opened database.
func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Attach subscribes the journal to bus. Write failures are logged; they
// never reach the publisher.
func (j *Journal) Attach(bus *Bus) func() {
	return bus.Subscribe(func(m Message) {
		if err := j.Record(context.Background(), m); err != nil {
			log.Warn().Err(err).Str("kind", string(m.Kind())).Msg("journal event")
		}
	})
}

// Record appends m.
func (j *Journal) Record(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = j.db.ExecContext(ctx, `INSERT INTO events(task_id, ts, type, message, data_json) VALUES(?, ?, ?, ?, ?)`,
		nullableString(m.Subject()), j.now().Format(time.RFC3339Nano), string(m.Kind()), Describe(m), string(data))
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns journaled entries in publish order, optionally restricted to
// one task. A positive limit keeps only the most recent entries.
func (j *Journal) List(ctx context.Context, taskID string, limit int) ([]Entry, error) {
	query := `SELECT seq, COALESCE(task_id, ''), ts, type, message, COALESCE(data_json, '') FROM events`
	var args []any
	if taskID != "" {
		query += ` WHERE task_id=?`
		args = append(args, taskID)
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts, kind string
		if err := rows.Scan(&e.Seq, &e.TaskID, &ts, &kind, &e.Message, &e.DataJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = Kind(kind)
		if e.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse event time: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
