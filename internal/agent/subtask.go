package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

// AnswerQuestion records the answer to a clarification question. An unknown
// question id changes nothing.
func (a *Agent) AnswerQuestion(_ context.Context, t *task.Task, questionID, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", ErrInvalidInput)
	}
	for i := range t.ClarificationQuestions {
		q := &t.ClarificationQuestions[i]
		if q.ID != questionID {
			continue
		}
		if q.Answered() {
			return fmt.Errorf("question %s: %w", questionID, ErrQuestionAnswered)
		}
		ts := now()
		q.Answer = answer
		q.AnsweredAt = &ts
		touch(t)
		a.updated(t)
		return nil
	}
	log.Debug().Str("task_id", t.ID).Str("question_id", questionID).Msg("answer for unknown question ignored")
	return nil
}

// CompleteSubtask marks a subtask completed. When every subtask of a task
// with at least one subtask is completed the task completes too. An unknown
// subtask id changes nothing.
func (a *Agent) CompleteSubtask(_ context.Context, t *task.Task, subtaskID string) error {
	st := findSubtask(t, subtaskID)
	if st == nil {
		log.Debug().Str("task_id", t.ID).Str("subtask_id", subtaskID).Msg("complete for unknown subtask ignored")
		return nil
	}
	ts := now()
	st.Status = task.StatusCompleted
	st.CompletedAt = &ts
	touch(t)

	a.advancePlan(t)
	if allCompleted(t) {
		t.CompletedAt = &ts
		if t.Plan != nil {
			t.Plan.Status = task.PlanCompleted
		}
		a.setStatus(t, task.StatusCompleted)
		a.updated(t)
		a.progress(t, "All subtasks completed! Task is done.")
		return nil
	}
	a.updated(t)
	return nil
}

// UpdateMetric sets a metric's current value and appends it to the
// history. An unknown metric id changes nothing.
func (a *Agent) UpdateMetric(_ context.Context, t *task.Task, metricID string, value float64, note string) error {
	for i := range t.ProgressMetrics {
		m := &t.ProgressMetrics[i]
		if m.ID != metricID {
			continue
		}
		m.CurrentValue = value
		m.History = append(m.History, task.MetricEntry{Timestamp: now(), Value: value, Note: note})
		touch(t)
		a.updated(t)
		return nil
	}
	log.Debug().Str("task_id", t.ID).Str("metric_id", metricID).Msg("update for unknown metric ignored")
	return nil
}

// ExecuteSubtask runs the skill bound to an automatable subtask. Success
// completes the subtask, failure blocks it; the result is recorded either
// way. Missing subtasks or skills are errors and leave the task unchanged.
func (a *Agent) ExecuteSubtask(ctx context.Context, t *task.Task, subtaskID string) error {
	st := findSubtask(t, subtaskID)
	if st == nil {
		return fmt.Errorf("execute %s: %w", subtaskID, ErrSubtaskNotFound)
	}
	if !st.Automatable || st.AutomationSkillID == "" {
		return fmt.Errorf("execute %q: %w", st.Title, ErrNotAutomatable)
	}
	s, ok := a.lookupSkill(st.AutomationSkillID)
	if !ok {
		return fmt.Errorf("execute %q: %w: %s", st.Title, ErrSkillNotFound, st.AutomationSkillID)
	}

	a.setMode(ModeExecuting)
	defer a.setMode(ModeIdle)
	a.progress(t, "Executing: "+st.Title)

	input := map[string]any{"query": st.Title, "description": st.Description}
	sc := skill.Context{TaskID: t.ID, WorkDir: a.opts.WorkDir}

	callCtx, cancel := bounded(ctx, a.opts.SkillTimeout)
	res, err := s.Run(callCtx, input, sc)
	cancel()
	if err != nil {
		a.fail(t, fmt.Sprintf("Skill execution failed: %v", err))
		res = skill.Failure(err.Error())
	}

	ts := now()
	st.AutomationResult = &task.AutomationResult{
		Success:    res.Success,
		Output:     renderOutput(res.Output),
		Error:      res.Error,
		ExecutedAt: ts,
	}
	if res.Success {
		st.Status = task.StatusCompleted
		st.CompletedAt = &ts
		a.advancePlan(t)
	} else {
		st.Status = task.StatusBlocked
	}
	touch(t)

	log.Info().Str("task_id", t.ID).Str("skill_id", s.ID).Bool("success", res.Success).Msg("skill executed")
	a.publish(event.SkillExecuted{TaskID: t.ID, SubtaskID: st.ID, SkillID: s.ID, Result: res})
	a.updated(t)
	return nil
}

// AddSubtask appends a user-defined subtask.
func (a *Agent) AddSubtask(_ context.Context, t *task.Task, title, description string) (task.Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return task.Subtask{}, fmt.Errorf("%w: subtask title is required", ErrInvalidInput)
	}
	st := task.NewSubtask(t.ID, title, len(t.Subtasks), false)
	st.Description = description
	t.Subtasks = append(t.Subtasks, st)
	touch(t)
	a.updated(t)
	return st, nil
}

// BlockTask marks the task blocked and records the reason as a note.
func (a *Agent) BlockTask(_ context.Context, t *task.Task, reason string) error {
	if t.Status == task.StatusCompleted {
		return fmt.Errorf("%w: task %s is completed", ErrInvalidInput, t.ID)
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		t.Notes = append(t.Notes, "Blocked: "+reason)
	}
	a.setStatus(t, task.StatusBlocked)
	a.updated(t)
	return nil
}

func (a *Agent) lookupSkill(id string) (skill.Skill, bool) {
	if a.registry == nil {
		return skill.Skill{}, false
	}
	return a.registry.Get(id)
}

// advancePlan moves an approved plan to in_progress once work starts.
func (a *Agent) advancePlan(t *task.Task) {
	if t.Plan != nil && t.Plan.Status == task.PlanApproved {
		t.Plan.Status = task.PlanInProgress
	}
}

func findSubtask(t *task.Task, id string) *task.Subtask {
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id {
			return &t.Subtasks[i]
		}
	}
	return nil
}

func allCompleted(t *task.Task) bool {
	if len(t.Subtasks) == 0 {
		return false
	}
	for _, st := range t.Subtasks {
		if st.Status != task.StatusCompleted {
			return false
		}
	}
	return true
}

func renderOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
