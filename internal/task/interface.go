package task

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when a task id is unknown.
var ErrNotFound = errors.New("task not found")

// Store defines the persistence contract drivers use between agent calls.
// The agent itself never reads or writes a store.
type Store interface {
	Save(ctx context.Context, t Task) error
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context) ([]Task, error)
	ListByStatus(ctx context.Context, status Status) ([]Task, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Searcher is implemented by stores that can filter tasks without loading
// the whole set into the caller.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Task, error)
	ListByTag(ctx context.Context, tag string) ([]Task, error)
	ListActive(ctx context.Context) ([]Task, error)
}
