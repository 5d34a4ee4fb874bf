package agent

import (
	"context"
	"fmt"

	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
)

// AnalyzeProgress asks the provider for a progress report. The task is not
// modified.
func (a *Agent) AnalyzeProgress(ctx context.Context, t *task.Task) (intel.ProgressReport, error) {
	callCtx, cancel := bounded(ctx, a.opts.ProviderTimeout)
	defer cancel()
	report, err := a.provider.AnalyzeProgress(callCtx, t.Clone())
	if err != nil {
		a.fail(t, fmt.Sprintf("Progress analysis failed: %v", err))
		return intel.ProgressReport{}, fmt.Errorf("analyze progress: %w", err)
	}
	return report, nil
}

// SuggestSkills asks the provider which registered skills fit a piece of
// work.
func (a *Agent) SuggestSkills(ctx context.Context, description string) ([]intel.SkillSelection, error) {
	var available []skill.Skill
	if a.registry != nil {
		available = a.registry.List()
	}
	callCtx, cancel := bounded(ctx, a.opts.ProviderTimeout)
	defer cancel()
	selections, err := a.provider.SelectSkills(callCtx, description, available)
	if err != nil {
		a.publish(event.Error{Message: fmt.Sprintf("Skill selection failed: %v", err)})
		return nil, fmt.Errorf("select skills: %w", err)
	}
	return selections, nil
}
