package agent

import (
	"context"
	"fmt"

	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
)

// ProcessTask runs the research and planning phases. On success the task
// ends in awaiting_input with a draft plan and its clarification questions.
// Provider failures are published as error messages: a failed research phase
// still plans, a failed planning phase leaves the task in planning.
func (a *Agent) ProcessTask(ctx context.Context, t *task.Task) {
	a.publish(event.TaskAdded{Task: t.Clone()})
	a.progress(t, "Starting to analyze task...")

	a.research(ctx, t)
	if a.plan(ctx, t) {
		a.setMode(ModeWaitingForUser)
		return
	}
	a.setMode(ModeIdle)
}

func (a *Agent) research(ctx context.Context, t *task.Task) {
	a.setMode(ModeResearching)
	a.setStatus(t, task.StatusResearching)
	a.progress(t, "Researching the task...")

	callCtx, cancel := bounded(ctx, a.opts.ProviderTimeout)
	res, err := a.provider.Research(callCtx, t.Title, t.Description)
	cancel()
	if err != nil {
		a.fail(t, fmt.Sprintf("Research failed: %v", err))
		return
	}

	ts := now()
	findings := make([]task.ResearchFinding, 0, len(res.Findings))
	for _, f := range res.Findings {
		findings = append(findings, task.ResearchFinding{
			ID:         task.NewID(),
			Topic:      t.Title,
			Summary:    f,
			Sources:    []string{},
			Confidence: task.ConfidenceMedium,
			Timestamp:  ts,
		})
	}
	t.ResearchFindings = append(t.ResearchFindings, findings...)
	t.Reasoning = res.Summary
	touch(t)

	log.Debug().Str("task_id", t.ID).Str("phase", "research").Int("findings", len(findings)).Msg("research complete")
	a.publish(event.ResearchComplete{TaskID: t.ID, Summary: res.Summary, Findings: findings})
}

// plan reports whether a plan was stored.
func (a *Agent) plan(ctx context.Context, t *task.Task) bool {
	a.setMode(ModePlanning)
	a.setStatus(t, task.StatusPlanning)
	a.progress(t, "Creating a plan...")

	summary := ""
	if a.registry != nil {
		summary = a.registry.CapabilitySummary()
	}

	callCtx, cancel := bounded(ctx, a.opts.ProviderTimeout)
	plan, err := a.provider.GeneratePlan(callCtx, t.Clone(), summary)
	cancel()
	if err != nil {
		a.fail(t, fmt.Sprintf("Planning failed: %v", err))
		if a.opts.Fallback == nil {
			return false
		}
		a.progress(t, "Falling back to a template plan...")
		fbCtx, fbCancel := bounded(ctx, a.opts.ProviderTimeout)
		plan, err = a.opts.Fallback.GeneratePlan(fbCtx, t.Clone(), summary)
		fbCancel()
		if err != nil {
			a.fail(t, fmt.Sprintf("Planning failed: %v", err))
			return false
		}
	}

	if limit := a.opts.MaxSubtasks; limit > 0 && len(plan.ProposedSubtasks) > limit {
		log.Debug().Str("task_id", t.ID).Int("proposed", len(plan.ProposedSubtasks)).Int("max", limit).Msg("truncate plan")
		plan.ProposedSubtasks = plan.ProposedSubtasks[:limit]
		plan.EstimatedDuration = intel.EstimateDuration(plan.ProposedSubtasks)
	}
	plan.TaskID = t.ID
	if plan.Status == "" {
		plan.Status = task.PlanDraft
	}
	t.Plan = &plan
	a.setStatus(t, task.StatusAwaitingInput)

	questions := make([]task.ClarificationQuestion, 0, len(plan.QuestionsForUser))
	for _, q := range plan.QuestionsForUser {
		questions = append(questions, task.ClarificationQuestion{
			ID:       task.NewID(),
			Question: q,
			Context:  "Related to planning: " + t.Title,
		})
	}
	t.ClarificationQuestions = append(t.ClarificationQuestions, questions...)

	for _, q := range questions {
		a.publish(event.QuestionRaised{TaskID: t.ID, Question: q})
	}
	a.publish(event.PlanReady{TaskID: t.ID, Plan: plan.Clone()})
	log.Debug().Str("task_id", t.ID).Str("phase", "planning").Int("subtasks", len(plan.ProposedSubtasks)).Msg("plan ready")
	return true
}
