package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const exportVersion = 1

type exportDocument struct {
	Version    int       `json:"version"`
	Tasks      []Task    `json:"tasks"`
	ExportedAt time.Time `json:"exported_at"`
}

// Export serializes every task in store as an indented JSON document.
func Export(ctx context.Context, store Store) ([]byte, error) {
	tasks, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	out, err := json.MarshalIndent(exportDocument{
		Version:    exportVersion,
		Tasks:      tasks,
		ExportedAt: time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return out, nil
}

// Import saves every task of an exported document into store and returns
// the number of tasks written. Existing tasks with the same id are replaced.
func Import(ctx context.Context, store Store, data []byte) (int, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse export: %w", err)
	}
	if doc.Version != exportVersion {
		return 0, fmt.Errorf("unsupported export version %d", doc.Version)
	}
	imported := 0
	for _, t := range doc.Tasks {
		if err := store.Save(ctx, t); err != nil {
			return imported, fmt.Errorf("import task %s: %w", t.ID, err)
		}
		imported++
	}
	return imported, nil
}
