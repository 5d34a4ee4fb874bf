package task

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier for tasks and their records.
func NewID() string {
	return uuid.NewString()
}

// New creates a pending task with medium priority and empty collections.
func New(title, description string) Task {
	now := time.Now().UTC()
	return Task{
		ID:                     NewID(),
		Title:                  title,
		Description:            description,
		Status:                 StatusPending,
		Priority:               PriorityMedium,
		CreatedAt:              now,
		ModifiedAt:             now,
		ResearchFindings:       []ResearchFinding{},
		ClarificationQuestions: []ClarificationQuestion{},
		ProgressMetrics:        []ProgressMetric{},
		Subtasks:               []Subtask{},
		Tags:                   []string{},
		Notes:                  []string{},
	}
}

// NewSubtask creates a pending subtask under parentID.
func NewSubtask(parentID, title string, order int, automatable bool) Subtask {
	return Subtask{
		ID:           NewID(),
		ParentTaskID: parentID,
		Title:        title,
		Status:       StatusPending,
		Order:        order,
		CreatedAt:    time.Now().UTC(),
		Automatable:  automatable,
	}
}

// Clone returns a deep copy of the task. Observers and providers receive
// clones so later mutations by the agent never leak into them.
func (t Task) Clone() Task {
	out := t
	out.DueDate = cloneTime(t.DueDate)
	out.CompletedAt = cloneTime(t.CompletedAt)
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.DaysOfWeek = cloneSlice(t.Recurrence.DaysOfWeek)
		r.EndDate = cloneTime(t.Recurrence.EndDate)
		r.LastGenerated = cloneTime(t.Recurrence.LastGenerated)
		out.Recurrence = &r
	}

	out.ResearchFindings = make([]ResearchFinding, len(t.ResearchFindings))
	for i, f := range t.ResearchFindings {
		f.Sources = cloneSlice(f.Sources)
		out.ResearchFindings[i] = f
	}

	out.ClarificationQuestions = make([]ClarificationQuestion, len(t.ClarificationQuestions))
	for i, q := range t.ClarificationQuestions {
		q.Options = cloneSlice(q.Options)
		q.AnsweredAt = cloneTime(q.AnsweredAt)
		out.ClarificationQuestions[i] = q
	}

	if t.Plan != nil {
		p := t.Plan.Clone()
		out.Plan = &p
	}

	out.ProgressMetrics = make([]ProgressMetric, len(t.ProgressMetrics))
	for i, m := range t.ProgressMetrics {
		m.History = cloneSlice(m.History)
		out.ProgressMetrics[i] = m
	}

	out.Subtasks = make([]Subtask, len(t.Subtasks))
	for i, st := range t.Subtasks {
		st.CompletedAt = cloneTime(st.CompletedAt)
		if st.AutomationResult != nil {
			r := *st.AutomationResult
			st.AutomationResult = &r
		}
		out.Subtasks[i] = st
	}

	out.Tags = cloneSlice(t.Tags)
	out.Notes = cloneSlice(t.Notes)
	return out
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := p
	out.ProposedSubtasks = cloneSlice(p.ProposedSubtasks)
	out.ProposedMetrics = cloneSlice(p.ProposedMetrics)
	out.QuestionsForUser = cloneSlice(p.QuestionsForUser)
	out.ApprovedAt = cloneTime(p.ApprovedAt)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
