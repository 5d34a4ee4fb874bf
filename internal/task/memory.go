package task

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps tasks in process memory in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]Task)}
}

// Save adds or replaces a task.
func (s *MemoryStore) Save(_ context.Context, t Task) error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

// Get returns the task with id or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

// List returns all tasks.
func (s *MemoryStore) List(_ context.Context) ([]Task, error) {
	return s.filter(func(Task) bool { return true }), nil
}

// ListByStatus returns tasks with the given status.
func (s *MemoryStore) ListByStatus(_ context.Context, status Status) ([]Task, error) {
	return s.filter(func(t Task) bool { return t.Status == status }), nil
}

// ListActive returns tasks that are not completed.
func (s *MemoryStore) ListActive(_ context.Context) ([]Task, error) {
	return s.filter(func(t Task) bool { return t.Status != StatusCompleted }), nil
}

// ListByTag returns tasks carrying tag.
func (s *MemoryStore) ListByTag(_ context.Context, tag string) ([]Task, error) {
	return s.filter(func(t Task) bool { return t.HasTag(tag) }), nil
}

// Search matches query case-insensitively against title and description.
func (s *MemoryStore) Search(_ context.Context, query string) ([]Task, error) {
	q := strings.ToLower(query)
	return s.filter(func(t Task) bool {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}), nil
}

// Delete removes a task and reports whether it existed.
func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (s *MemoryStore) filter(keep func(Task) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.order))
	for _, id := range s.order {
		t := s.tasks[id]
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}
