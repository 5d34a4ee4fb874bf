// Package agent drives tasks through research, planning, approval and
// execution, consulting an intelligence provider and the skill registry
// and publishing every transition on an event bus.
//
// The agent mutates the *task.Task it is given; callers serialize
// operations on a task and persist it afterwards.
package agent

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoPlan           = errors.New("task has no plan")
	ErrPlanApproved     = errors.New("plan already approved")
	ErrSubtaskNotFound  = errors.New("subtask not found")
	ErrNotAutomatable   = errors.New("subtask cannot be automated")
	ErrSkillNotFound    = errors.New("skill not found")
	ErrQuestionAnswered = errors.New("question already answered")
	ErrInvalidInput     = errors.New("invalid input")
)

// Mode is what the agent is currently doing.
type Mode string

const (
	ModeIdle           Mode = "idle"
	ModeResearching    Mode = "researching"
	ModePlanning       Mode = "planning"
	ModeExecuting      Mode = "executing"
	ModeWaitingForUser Mode = "waiting_for_user"
)

// Options tune the agent. Zero values disable the corresponding limit.
type Options struct {
	// ProviderTimeout bounds each research, planning and analysis call.
	ProviderTimeout time.Duration
	// SkillTimeout bounds each skill execution.
	SkillTimeout time.Duration
	// Fallback generates the plan when the provider fails to.
	Fallback intel.Provider
	// MaxSubtasks caps the proposed subtasks kept from a plan.
	MaxSubtasks int
	// WorkDir is handed to skills as their working directory.
	WorkDir string
}

// Agent orchestrates the task workflow.
type Agent struct {
	provider intel.Provider
	registry *skill.Registry
	bus      *event.Bus
	opts     Options

	mu   sync.Mutex
	mode Mode
}

// New creates an agent. A nil bus gets a private one.
func New(provider intel.Provider, registry *skill.Registry, bus *event.Bus, opts Options) *Agent {
	if bus == nil {
		bus = event.NewBus()
	}
	return &Agent{
		provider: provider,
		registry: registry,
		bus:      bus,
		opts:     opts,
		mode:     ModeIdle,
	}
}

// Subscribe registers an observer for lifecycle messages.
func (a *Agent) Subscribe(h event.Handler) func() {
	return a.bus.Subscribe(h)
}

// Bus returns the bus the agent publishes on.
func (a *Agent) Bus() *event.Bus {
	return a.bus
}

// Registry returns the skill registry the agent plans against.
func (a *Agent) Registry() *skill.Registry {
	return a.registry
}

// Mode reports the current activity.
func (a *Agent) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *Agent) setMode(m Mode) {
	a.mu.Lock()
	a.mode = m
	a.mu.Unlock()
}

func (a *Agent) publish(m event.Message) {
	a.bus.Publish(m)
}

func (a *Agent) progress(t *task.Task, msg string) {
	a.publish(event.ProgressUpdate{TaskID: t.ID, Message: msg})
}

func (a *Agent) fail(t *task.Task, msg string) {
	log.Warn().Str("task_id", t.ID).Msg(msg)
	a.publish(event.Error{TaskID: t.ID, Message: msg})
}

func (a *Agent) updated(t *task.Task) {
	a.publish(event.TaskUpdated{Task: t.Clone()})
}

func (a *Agent) setStatus(t *task.Task, s task.Status) {
	from := t.Status
	t.Status = s
	touch(t)
	a.publish(event.StatusChanged{Task: t.Clone(), From: from, To: s})
}

func touch(t *task.Task) {
	t.ModifiedAt = now()
}

func now() time.Time {
	return time.Now().UTC()
}

func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
