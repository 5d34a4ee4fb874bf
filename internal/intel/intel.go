// Package intel defines the decision-making collaborator the agent consults
// for research, plans, skill choices and progress reports, together with
// the keyword-template and OpenAI-backed implementations.
package intel

import (
	"context"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
)

// Provider produces plans and assessments for tasks. Implementations must
// not mutate their inputs.
type Provider interface {
	GeneratePlan(ctx context.Context, t task.Task, capabilities string) (task.Plan, error)
	Research(ctx context.Context, topic, detail string) (Research, error)
	SelectSkills(ctx context.Context, subtask string, available []skill.Skill) ([]SkillSelection, error)
	AnalyzeProgress(ctx context.Context, t task.Task) (ProgressReport, error)
}

// Research is the outcome of the research phase.
type Research struct {
	Summary            string   `json:"summary"`
	Findings           []string `json:"findings"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// SkillSelection proposes running a skill with the given input.
type SkillSelection struct {
	SkillID string         `json:"skill_id"`
	Input   map[string]any `json:"input"`
}

// ProgressReport summarizes how far a task has come.
type ProgressReport struct {
	ProgressPercentage int      `json:"progress_percentage"`
	Summary            string   `json:"summary"`
	NextSteps          []string `json:"next_steps"`
	Blockers           []string `json:"blockers"`
}
