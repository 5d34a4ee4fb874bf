// Package event carries lifecycle messages from the agent to any number of
// observers.
package event

import (
	"fmt"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
)

// Kind names a message type on the wire and in the journal.
type Kind string

const (
	KindTaskAdded        Kind = "task_added"
	KindTaskUpdated      Kind = "task_updated"
	KindStatusChanged    Kind = "status_changed"
	KindResearchComplete Kind = "research_complete"
	KindPlanReady        Kind = "plan_ready"
	KindQuestionRaised   Kind = "question_raised"
	KindSkillExecuted    Kind = "skill_executed"
	KindProgressUpdate   Kind = "progress_update"
	KindError            Kind = "error"
)

// Message is implemented by the nine message types of this package only.
type Message interface {
	Kind() Kind
	// Subject is the id of the task the message is about, possibly empty.
	Subject() string
	sealed()
}

// TaskAdded is published when the agent starts processing a task.
type TaskAdded struct {
	Task task.Task `json:"task"`
}

// TaskUpdated carries the task after a state change.
type TaskUpdated struct {
	Task task.Task `json:"task"`
}

// StatusChanged reports a status transition.
type StatusChanged struct {
	Task task.Task   `json:"task"`
	From task.Status `json:"from"`
	To   task.Status `json:"to"`
}

// ResearchComplete carries the findings of the research phase.
type ResearchComplete struct {
	TaskID   string                 `json:"task_id"`
	Summary  string                 `json:"summary"`
	Findings []task.ResearchFinding `json:"findings"`
}

// PlanReady carries a newly generated plan.
type PlanReady struct {
	TaskID string    `json:"task_id"`
	Plan   task.Plan `json:"plan"`
}

// QuestionRaised carries one clarification question.
type QuestionRaised struct {
	TaskID   string                     `json:"task_id"`
	Question task.ClarificationQuestion `json:"question"`
}

// SkillExecuted reports the outcome of an automated subtask.
type SkillExecuted struct {
	TaskID    string       `json:"task_id"`
	SubtaskID string       `json:"subtask_id"`
	SkillID   string       `json:"skill_id"`
	Result    skill.Result `json:"result"`
}

// ProgressUpdate is free text describing what the agent is doing.
type ProgressUpdate struct {
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// Error reports a collaborator failure that the workflow absorbed.
type Error struct {
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

func (TaskAdded) Kind() Kind        { return KindTaskAdded }
func (TaskUpdated) Kind() Kind      { return KindTaskUpdated }
func (StatusChanged) Kind() Kind    { return KindStatusChanged }
func (ResearchComplete) Kind() Kind { return KindResearchComplete }
func (PlanReady) Kind() Kind        { return KindPlanReady }
func (QuestionRaised) Kind() Kind   { return KindQuestionRaised }
func (SkillExecuted) Kind() Kind    { return KindSkillExecuted }
func (ProgressUpdate) Kind() Kind   { return KindProgressUpdate }
func (Error) Kind() Kind            { return KindError }

func (m TaskAdded) Subject() string        { return m.Task.ID }
func (m TaskUpdated) Subject() string      { return m.Task.ID }
func (m StatusChanged) Subject() string    { return m.Task.ID }
func (m ResearchComplete) Subject() string { return m.TaskID }
func (m PlanReady) Subject() string        { return m.TaskID }
func (m QuestionRaised) Subject() string   { return m.TaskID }
func (m SkillExecuted) Subject() string    { return m.TaskID }
func (m ProgressUpdate) Subject() string   { return m.TaskID }
func (m Error) Subject() string            { return m.TaskID }

func (TaskAdded) sealed()        {}
func (TaskUpdated) sealed()      {}
func (StatusChanged) sealed()    {}
func (ResearchComplete) sealed() {}
func (PlanReady) sealed()        {}
func (QuestionRaised) sealed()   {}
func (SkillExecuted) sealed()    {}
func (ProgressUpdate) sealed()   {}
func (Error) sealed()            {}

// Describe renders a one-line human summary of m.
func Describe(m Message) string {
	switch m := m.(type) {
	case TaskAdded:
		return "Task added: " + m.Task.Title
	case TaskUpdated:
		return fmt.Sprintf("Task updated: %s (%s)", m.Task.Title, m.Task.Status)
	case StatusChanged:
		return fmt.Sprintf("Status changed: %s -> %s", m.From, m.To)
	case ResearchComplete:
		return fmt.Sprintf("Research complete: %d findings", len(m.Findings))
	case PlanReady:
		return fmt.Sprintf("Plan ready: %d subtasks, %d metrics", len(m.Plan.ProposedSubtasks), len(m.Plan.ProposedMetrics))
	case QuestionRaised:
		return "Question: " + m.Question.Question
	case SkillExecuted:
		if m.Result.Success {
			return fmt.Sprintf("Skill %s succeeded", m.SkillID)
		}
		return fmt.Sprintf("Skill %s failed: %s", m.SkillID, m.Result.Error)
	case ProgressUpdate:
		return m.Message
	case Error:
		return "Error: " + m.Message
	default:
		return string(m.Kind())
	}
}
