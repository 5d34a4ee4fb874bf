// Package service drives the agent on behalf of user-facing commands. Each
// mutating call locks the data directory, loads the task, runs one agent
// operation and saves the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

var (
	ErrAmbiguous        = errors.New("ambiguous reference")
	ErrQuestionNotFound = errors.New("question not found")
	ErrMetricNotFound   = errors.New("metric not found")
	ErrNoJournal        = errors.New("event journal is not configured")
	ErrBusy             = errors.New("data directory is busy")
)

// Store is the persistence the service needs.
type Store interface {
	task.Store
	task.Searcher
}

// Service serializes agent operations over a task store.
type Service struct {
	store   Store
	agent   *agent.Agent
	journal *event.Journal
	lockDir string
	noWait  bool

	mu sync.Mutex
}

// New creates a service. An empty lockDir disables the cross-process lock;
// calls are still serialized within the process.
func New(store Store, ag *agent.Agent, journal *event.Journal, lockDir string) *Service {
	return &Service{store: store, agent: ag, journal: journal, lockDir: lockDir}
}

// SetNoWait makes mutating calls fail with ErrBusy instead of waiting when
// another process holds the data directory lock.
func (s *Service) SetNoWait(noWait bool) {
	s.noWait = noWait
}

// Agent returns the underlying agent.
func (s *Service) Agent() *agent.Agent {
	return s.agent
}

// NewTask describes a task to add.
type NewTask struct {
	Title       string
	Description string
	Priority    task.Priority
	Tags        []string
	DueDate     *time.Time
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Status task.Status
	Tag    string
	Search string
	Active bool
}

// Add stores a new task and runs research and planning on it.
func (s *Service) Add(ctx context.Context, in NewTask) (task.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return task.Task{}, fmt.Errorf("%w: task title is required", agent.ErrInvalidInput)
	}
	t := task.New(title, strings.TrimSpace(in.Description))
	if in.Priority != "" {
		if !task.IsValidPriority(in.Priority) {
			return task.Task{}, fmt.Errorf("%w: priority %q", agent.ErrInvalidInput, in.Priority)
		}
		t.Priority = in.Priority
	}
	for _, tag := range in.Tags {
		if tag = strings.TrimSpace(tag); tag != "" && !t.HasTag(tag) {
			t.Tags = append(t.Tags, tag)
		}
	}
	t.DueDate = in.DueDate

	unlock, err := s.lock()
	if err != nil {
		return task.Task{}, err
	}
	defer unlock()

	if err := s.store.Save(ctx, t); err != nil {
		return task.Task{}, err
	}
	log.Info().Str("task_id", t.ID).Str("title", t.Title).Msg("task added")

	s.agent.ProcessTask(ctx, &t)
	if err := s.store.Save(ctx, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// Get returns the task named by ref, a full id or a unique id prefix.
func (s *Service) Get(ctx context.Context, ref string) (task.Task, error) {
	return s.resolve(ctx, ref)
}

// List returns tasks in creation order.
func (s *Service) List(ctx context.Context, f Filter) ([]task.Task, error) {
	if f.Status != "" && !task.IsValidStatus(f.Status) {
		return nil, fmt.Errorf("%w: status %q", agent.ErrInvalidInput, f.Status)
	}
	var (
		tasks []task.Task
		err   error
	)
	switch {
	case f.Search != "":
		tasks, err = s.store.Search(ctx, f.Search)
	case f.Tag != "":
		tasks, err = s.store.ListByTag(ctx, f.Tag)
	case f.Status != "":
		tasks, err = s.store.ListByStatus(ctx, f.Status)
	case f.Active:
		tasks, err = s.store.ListActive(ctx)
	default:
		tasks, err = s.store.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := tasks[:0]
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Tag != "" && !t.HasTag(f.Tag) {
			continue
		}
		if f.Active && t.Status == task.StatusCompleted {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, ref string) error {
	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	t, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.store.Delete(ctx, t.ID); err != nil {
		return err
	}
	log.Info().Str("task_id", t.ID).Msg("task deleted")
	return nil
}

// Approve approves the task's plan.
func (s *Service) Approve(ctx context.Context, ref string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		return s.agent.ApprovePlan(ctx, t)
	})
}

// Modify edits the task's draft plan.
func (s *Service) Modify(ctx context.Context, ref string, edits agent.PlanEdits) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		return s.agent.ModifyPlan(ctx, t, edits)
	})
}

// Answer answers a clarification question named by 1-based index, id or id
// prefix.
func (s *Service) Answer(ctx context.Context, ref, questionRef, answer string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		ids := make([]string, len(t.ClarificationQuestions))
		for i, q := range t.ClarificationQuestions {
			ids[i] = q.ID
		}
		id, err := pick(questionRef, ids, ErrQuestionNotFound)
		if err != nil {
			return err
		}
		return s.agent.AnswerQuestion(ctx, t, id, answer)
	})
}

// Complete marks a subtask completed.
func (s *Service) Complete(ctx context.Context, ref, subtaskRef string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		id, err := pickSubtask(t, subtaskRef)
		if err != nil {
			return err
		}
		return s.agent.CompleteSubtask(ctx, t, id)
	})
}

// Execute runs the skill bound to a subtask.
func (s *Service) Execute(ctx context.Context, ref, subtaskRef string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		id, err := pickSubtask(t, subtaskRef)
		if err != nil {
			return err
		}
		return s.agent.ExecuteSubtask(ctx, t, id)
	})
}

// AddSubtask appends a user-defined subtask.
func (s *Service) AddSubtask(ctx context.Context, ref, title, description string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		_, err := s.agent.AddSubtask(ctx, t, title, description)
		return err
	})
}

// Block marks the task blocked.
func (s *Service) Block(ctx context.Context, ref, reason string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		return s.agent.BlockTask(ctx, t, reason)
	})
}

// UpdateMetric records a new metric value.
func (s *Service) UpdateMetric(ctx context.Context, ref, metricRef string, value float64, note string) (task.Task, error) {
	return s.mutate(ctx, ref, func(t *task.Task) error {
		ids := make([]string, len(t.ProgressMetrics))
		for i, m := range t.ProgressMetrics {
			ids[i] = m.ID
		}
		id, err := pick(metricRef, ids, ErrMetricNotFound)
		if err != nil {
			return err
		}
		return s.agent.UpdateMetric(ctx, t, id, value, note)
	})
}

// Progress asks the provider for a progress report without modifying the
// task.
func (s *Service) Progress(ctx context.Context, ref string) (task.Task, intel.ProgressReport, error) {
	t, err := s.resolve(ctx, ref)
	if err != nil {
		return task.Task{}, intel.ProgressReport{}, err
	}
	report, err := s.agent.AnalyzeProgress(ctx, &t)
	if err != nil {
		return task.Task{}, intel.ProgressReport{}, err
	}
	return t, report, nil
}

// Skills lists the registered skill directories.
func (s *Service) Skills() []skill.Directory {
	if r := s.agent.Registry(); r != nil {
		return r.Directories()
	}
	return nil
}

// MatchSkills returns registered skills relevant to text.
func (s *Service) MatchSkills(text string) []skill.Skill {
	if r := s.agent.Registry(); r != nil {
		return r.FindRelevant(text)
	}
	return nil
}

// Suggest asks the provider which skills fit a piece of work.
func (s *Service) Suggest(ctx context.Context, text string) ([]intel.SkillSelection, error) {
	return s.agent.SuggestSkills(ctx, text)
}

// Events returns journaled messages, for one task when ref is not empty.
func (s *Service) Events(ctx context.Context, ref string, limit int) ([]event.Entry, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	taskID := ""
	if ref != "" {
		t, err := s.resolve(ctx, ref)
		if err != nil {
			return nil, err
		}
		taskID = t.ID
	}
	return s.journal.List(ctx, taskID, limit)
}

// Export serializes every task.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	return task.Export(ctx, s.store)
}

// Import loads exported tasks, replacing tasks with the same id.
func (s *Service) Import(ctx context.Context, data []byte) (int, error) {
	unlock, err := s.lock()
	if err != nil {
		return 0, err
	}
	defer unlock()
	return task.Import(ctx, s.store, data)
}

func (s *Service) mutate(ctx context.Context, ref string, fn func(*task.Task) error) (task.Task, error) {
	unlock, err := s.lock()
	if err != nil {
		return task.Task{}, err
	}
	defer unlock()

	t, err := s.resolve(ctx, ref)
	if err != nil {
		return task.Task{}, err
	}
	if err := fn(&t); err != nil {
		return task.Task{}, err
	}
	if err := s.store.Save(ctx, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (s *Service) lock() (func(), error) {
	s.mu.Lock()
	if s.lockDir == "" {
		return s.mu.Unlock, nil
	}
	l, err := s.acquire()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			log.Warn().Err(err).Msg("release lock")
		}
		s.mu.Unlock()
	}, nil
}

func (s *Service) acquire() (*Lock, error) {
	if !s.noWait {
		return AcquireLock(s.lockDir)
	}
	l, ok, err := TryAcquireLock(s.lockDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, s.lockDir)
	}
	return l, nil
}

func (s *Service) resolve(ctx context.Context, ref string) (task.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return task.Task{}, fmt.Errorf("%w: task id is required", agent.ErrInvalidInput)
	}
	t, err := s.store.Get(ctx, ref)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, task.ErrNotFound) {
		return task.Task{}, err
	}

	all, err := s.store.List(ctx)
	if err != nil {
		return task.Task{}, err
	}
	var matches []task.Task
	for _, candidate := range all {
		if strings.HasPrefix(candidate.ID, ref) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("task %s: %w", ref, task.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("task %s matches %d tasks: %w", ref, len(matches), ErrAmbiguous)
	}
}

func pickSubtask(t *task.Task, ref string) (string, error) {
	ids := make([]string, len(t.Subtasks))
	for i, st := range t.Subtasks {
		ids[i] = st.ID
	}
	return pick(ref, ids, agent.ErrSubtaskNotFound)
}

// pick resolves ref against ids as a 1-based index, an exact id or a unique
// id prefix.
func pick(ref string, ids []string, notFound error) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", notFound
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(ids) {
			return ids[n-1], nil
		}
		return "", fmt.Errorf("%w: index %d", notFound, n)
	}
	var match string
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%s: %w", ref, ErrAmbiguous)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", notFound, ref)
	}
	return match, nil
}
