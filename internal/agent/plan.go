package agent

import (
	"context"
	"fmt"
	"slices"

	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/task"
)

// addedSubtaskMinutes is the estimate given to subtasks added by the user.
const addedSubtaskMinutes = 30

// SubtaskDraft is a subtask the user adds to a plan.
type SubtaskDraft struct {
	Title       string
	Description string
}

// PlanEdits are user changes to a draft plan. RemoveIndices refer to the
// proposed subtasks as they were before the edit.
type PlanEdits struct {
	RemoveIndices []int
	Add           []SubtaskDraft
	Approach      string
}

// ApprovePlan compiles the plan's proposed subtasks and metrics into
// concrete records and moves the task to in_progress. Subtasks added by the
// user before approval are kept after the compiled ones.
func (a *Agent) ApprovePlan(_ context.Context, t *task.Task) error {
	if t.Plan == nil {
		return fmt.Errorf("approve %s: %w", t.ID, ErrNoPlan)
	}
	if t.Plan.Status != task.PlanDraft && t.Plan.Status != task.PlanAwaitingApproval {
		return fmt.Errorf("approve %s: %w", t.ID, ErrPlanApproved)
	}

	plan := t.Plan
	subtasks := make([]task.Subtask, 0, len(plan.ProposedSubtasks)+len(t.Subtasks))
	for i, p := range plan.ProposedSubtasks {
		st := task.NewSubtask(t.ID, p.Title, i, p.Automatable)
		st.Description = p.Description
		st.EstimatedMinutes = p.EstimatedMinutes
		st.AutomationSkillID = p.RequiredSkill
		subtasks = append(subtasks, st)
	}
	for _, manual := range t.Subtasks {
		manual.Order = len(subtasks)
		subtasks = append(subtasks, manual)
	}

	for _, p := range plan.ProposedMetrics {
		t.ProgressMetrics = append(t.ProgressMetrics, task.ProgressMetric{
			ID:           task.NewID(),
			Name:         p.Name,
			Unit:         p.Unit,
			CurrentValue: 0,
			TargetValue:  p.TargetValue,
			History:      []task.MetricEntry{},
		})
	}

	ts := now()
	t.Subtasks = subtasks
	plan.Status = task.PlanApproved
	plan.ApprovedAt = &ts
	plan.ModifiedAt = ts
	a.setStatus(t, task.StatusInProgress)
	a.updated(t)
	a.progress(t, "Plan approved! Ready to start working.")
	a.setMode(ModeIdle)
	return nil
}

// ModifyPlan applies user edits to a plan that has not been approved yet.
func (a *Agent) ModifyPlan(_ context.Context, t *task.Task, edits PlanEdits) error {
	if t.Plan == nil {
		return fmt.Errorf("modify %s: %w", t.ID, ErrNoPlan)
	}
	if t.Plan.Status != task.PlanDraft && t.Plan.Status != task.PlanAwaitingApproval {
		return fmt.Errorf("modify %s: %w", t.ID, ErrPlanApproved)
	}

	plan := t.Plan
	kept := make([]task.ProposedSubtask, 0, len(plan.ProposedSubtasks)+len(edits.Add))
	for i, p := range plan.ProposedSubtasks {
		if !slices.Contains(edits.RemoveIndices, i) {
			kept = append(kept, p)
		}
	}
	for _, d := range edits.Add {
		kept = append(kept, task.ProposedSubtask{
			Title:            d.Title,
			Description:      d.Description,
			EstimatedMinutes: addedSubtaskMinutes,
		})
	}
	plan.ProposedSubtasks = kept
	if edits.Approach != "" {
		plan.Approach = edits.Approach
	}
	plan.EstimatedDuration = intel.EstimateDuration(kept)
	plan.ModifiedAt = now()
	touch(t)
	a.updated(t)
	return nil
}
