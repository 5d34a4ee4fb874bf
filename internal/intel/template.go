package intel

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
)

// TemplateProvider answers every request from the keyword templates. It is
// deterministic apart from identifiers and timestamps.
type TemplateProvider struct {
	// Delay simulates thinking time before each answer. Zero disables it.
	Delay time.Duration
}

var _ Provider = (*TemplateProvider)(nil)

// NewTemplateProvider creates a template provider with the given delay.
func NewTemplateProvider(delay time.Duration) *TemplateProvider {
	return &TemplateProvider{Delay: delay}
}

// GeneratePlan returns a draft plan built from the template matching the
// task title.
func (p *TemplateProvider) GeneratePlan(ctx context.Context, t task.Task, _ string) (task.Plan, error) {
	if err := p.think(ctx); err != nil {
		return task.Plan{}, err
	}
	return PlanFromTemplate(t, FindTemplate(t.Title)), nil
}

// Research returns canned findings for topic.
func (p *TemplateProvider) Research(ctx context.Context, topic, _ string) (Research, error) {
	if err := p.think(ctx); err != nil {
		return Research{}, err
	}
	questions := FindTemplate(topic).Questions
	return Research{
		Summary: "Research completed for: " + topic,
		Findings: []string{
			"Found relevant information about " + topic,
			"Identified key steps and considerations",
			"Gathered best practices from similar tasks",
		},
		SuggestedQuestions: append([]string(nil), questions[:min(2, len(questions))]...),
	}, nil
}

// SelectSkills proposes every skill whose name or description shares a word
// with the subtask.
func (p *TemplateProvider) SelectSkills(ctx context.Context, subtask string, available []skill.Skill) ([]SkillSelection, error) {
	if err := p.think(ctx); err != nil {
		return nil, err
	}
	return MatchSkills(subtask, available), nil
}

// AnalyzeProgress reports completion from the subtask list.
func (p *TemplateProvider) AnalyzeProgress(ctx context.Context, t task.Task) (ProgressReport, error) {
	if err := p.think(ctx); err != nil {
		return ProgressReport{}, err
	}
	return Assess(t), nil
}

func (p *TemplateProvider) think(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PlanFromTemplate builds a draft plan for t. The template's lists are
// copied so edits to the plan never reach the template table.
func PlanFromTemplate(t task.Task, tpl Template) task.Plan {
	now := time.Now().UTC()
	return task.Plan{
		ID:                task.NewID(),
		TaskID:            t.ID,
		Status:            task.PlanDraft,
		Summary:           "Plan for: " + t.Title,
		Approach:          tpl.Approach,
		EstimatedDuration: EstimateDuration(tpl.Subtasks),
		ProposedSubtasks:  append([]task.ProposedSubtask(nil), tpl.Subtasks...),
		ProposedMetrics:   append([]task.ProposedMetric(nil), tpl.Metrics...),
		QuestionsForUser:  append([]string(nil), tpl.Questions...),
		CreatedAt:         now,
		ModifiedAt:        now,
	}
}

// EstimateDuration renders the summed subtask estimates, in minutes below an
// hour and in rounded hours above.
func EstimateDuration(subtasks []task.ProposedSubtask) string {
	total := 0
	for _, st := range subtasks {
		total += st.EstimatedMinutes
	}
	if total < 60 {
		return fmt.Sprintf("%d minutes", total)
	}
	hours := int(math.Round(float64(total) / 60))
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// MatchSkills selects skills by word overlap and passes the subtask text as
// the query input.
func MatchSkills(subtask string, available []skill.Skill) []SkillSelection {
	words := strings.Fields(strings.ToLower(subtask))
	out := []SkillSelection{}
	for _, s := range available {
		haystack := strings.ToLower(s.Name + " " + s.Description)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				out = append(out, SkillSelection{SkillID: s.ID, Input: map[string]any{"query": subtask}})
				break
			}
		}
	}
	return out
}

// Assess computes a progress report from the task's subtasks and questions.
func Assess(t task.Task) ProgressReport {
	done := t.CompletedSubtasks()
	total := max(1, len(t.Subtasks))
	pct := int(math.Round(float64(done) / float64(total) * 100))

	summary := fmt.Sprintf("%d of %d subtasks completed", done, total)
	switch pct {
	case 0:
		summary = "Just getting started!"
	case 100:
		summary = "All subtasks completed!"
	}

	next := []string{}
	for _, st := range t.Subtasks {
		if len(next) == 3 {
			break
		}
		if st.Status == task.StatusPending {
			next = append(next, st.Title)
		}
	}

	blockers := []string{}
	for _, q := range t.UnansweredQuestions() {
		blockers = append(blockers, "Awaiting answer: "+q.Question)
	}

	return ProgressReport{
		ProgressPercentage: pct,
		Summary:            summary,
		NextSteps:          next,
		Blockers:           blockers,
	}
}
