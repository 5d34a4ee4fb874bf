// Package task defines the goal model driven by the agent and the stores
// that persist it between user commands.
package task

import (
	"time"
)

// Status is the lifecycle status of a task or subtask.
type Status string

const (
	StatusPending       Status = "pending"
	StatusResearching   Status = "researching"
	StatusPlanning      Status = "planning"
	StatusAwaitingInput Status = "awaiting_input"
	StatusInProgress    Status = "in_progress"
	StatusBlocked       Status = "blocked"
	StatusCompleted     Status = "completed"
)

// ValidStatuses returns all status values in phase order.
func ValidStatuses() []Status {
	return []Status{
		StatusPending, StatusResearching, StatusPlanning, StatusAwaitingInput,
		StatusInProgress, StatusBlocked, StatusCompleted,
	}
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusResearching, StatusPlanning, StatusAwaitingInput,
		StatusInProgress, StatusBlocked, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether s ends the workflow branch.
func IsTerminal(s Status) bool {
	return s == StatusBlocked || s == StatusCompleted
}

// Priority orders tasks for the user.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValidPriority reports whether p is a known priority.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Confidence grades a research finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// PlanStatus is the lifecycle status of a plan.
type PlanStatus string

const (
	PlanDraft            PlanStatus = "draft"
	PlanAwaitingApproval PlanStatus = "awaiting_approval"
	PlanApproved         PlanStatus = "approved"
	PlanInProgress       PlanStatus = "in_progress"
	PlanCompleted        PlanStatus = "completed"
)

// MetricEntry is one recorded value of a progress metric.
type MetricEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Note      string    `json:"note,omitempty"`
}

// ProgressMetric tracks a numeric goal with an append-only history.
type ProgressMetric struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Unit         string        `json:"unit"`
	CurrentValue float64       `json:"current_value"`
	TargetValue  float64       `json:"target_value"`
	History      []MetricEntry `json:"history"`
}

// ResearchFinding is one fact gathered during the research phase.
type ResearchFinding struct {
	ID         string     `json:"id"`
	Topic      string     `json:"topic"`
	Summary    string     `json:"summary"`
	Sources    []string   `json:"sources"`
	Confidence Confidence `json:"confidence"`
	Timestamp  time.Time  `json:"timestamp"`
}

// ClarificationQuestion is a question raised while planning.
type ClarificationQuestion struct {
	ID         string     `json:"id"`
	Question   string     `json:"question"`
	Context    string     `json:"context"`
	Options    []string   `json:"options,omitempty"`
	Answer     string     `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}

// Answered reports whether the question has an answer.
func (q ClarificationQuestion) Answered() bool {
	return q.Answer != ""
}

// AutomationResult records the outcome of running a skill for a subtask.
type AutomationResult struct {
	Success    bool      `json:"success"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Subtask is a concrete unit of work under a task.
type Subtask struct {
	ID                string            `json:"id"`
	ParentTaskID      string            `json:"parent_task_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Status            Status            `json:"status"`
	EstimatedMinutes  int               `json:"estimated_minutes,omitempty"`
	ActualMinutes     int               `json:"actual_minutes,omitempty"`
	Order             int               `json:"order"`
	CreatedAt         time.Time         `json:"created_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	Automatable       bool              `json:"automatable"`
	AutomationSkillID string            `json:"automation_skill_id,omitempty"`
	AutomationResult  *AutomationResult `json:"automation_result,omitempty"`
}

// ProposedSubtask is a subtask suggested by a plan before approval.
type ProposedSubtask struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes,omitempty"`
	Automatable      bool   `json:"automatable"`
	RequiredSkill    string `json:"required_skill,omitempty"`
}

// ProposedMetric is a metric suggested by a plan before approval.
type ProposedMetric struct {
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	TargetValue float64 `json:"target_value"`
}

// Plan is a proposed decomposition of a task.
type Plan struct {
	ID                string            `json:"id"`
	TaskID            string            `json:"task_id"`
	Status            PlanStatus        `json:"status"`
	Summary           string            `json:"summary"`
	Approach          string            `json:"approach"`
	EstimatedDuration string            `json:"estimated_duration,omitempty"`
	ProposedSubtasks  []ProposedSubtask `json:"proposed_subtasks"`
	ProposedMetrics   []ProposedMetric  `json:"proposed_metrics"`
	QuestionsForUser  []string          `json:"questions_for_user"`
	CreatedAt         time.Time         `json:"created_at"`
	ApprovedAt        *time.Time        `json:"approved_at,omitempty"`
	ModifiedAt        time.Time         `json:"modified_at"`
}

// RecurrenceConfig describes a repeating task.
type RecurrenceConfig struct {
	Cycle         string     `json:"cycle"`
	Interval      int        `json:"interval"`
	DaysOfWeek    []int      `json:"days_of_week,omitempty"`
	DayOfMonth    int        `json:"day_of_month,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	LastGenerated *time.Time `json:"last_generated,omitempty"`
}

// Task is a user goal tracked through its full lifecycle.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	ParentID    string   `json:"parent_id,omitempty"`

	CreatedAt    time.Time  `json:"created_at"`
	ModifiedAt   time.Time  `json:"modified_at"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	TimeEstimate int        `json:"time_estimate,omitempty"`
	TimeSpent    int        `json:"time_spent"`

	Recurrence *RecurrenceConfig `json:"recurrence,omitempty"`

	ResearchFindings       []ResearchFinding       `json:"research_findings"`
	ClarificationQuestions []ClarificationQuestion `json:"clarification_questions"`
	Plan                   *Plan                   `json:"plan,omitempty"`

	ProgressMetrics []ProgressMetric `json:"progress_metrics"`
	Subtasks        []Subtask        `json:"subtasks"`

	Tags      []string `json:"tags"`
	ContextID string   `json:"context_id,omitempty"`
	Notes     []string `json:"notes"`
	Reasoning string   `json:"reasoning,omitempty"`
}

// UnansweredQuestions returns the questions still waiting for the user.
func (t *Task) UnansweredQuestions() []ClarificationQuestion {
	var out []ClarificationQuestion
	for _, q := range t.ClarificationQuestions {
		if !q.Answered() {
			out = append(out, q)
		}
	}
	return out
}

// CompletedSubtasks counts subtasks with status completed.
func (t *Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.Subtasks {
		if st.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// HasTag reports whether the task carries tag.
func (t *Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}
