package intel

import (
	"context"
	"testing"
	"time"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title string
		want  string
	}{
		{"Run a 5K race", "running"},
		{"Do my TAXES", "taxes"},
		{"Learn Go programming", "learning"},
		{"Study for the tax exam", "taxes"},
		{"Organize my stamp collection", "default"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindTemplate(tt.title).Name, tt.title)
	}
}

func TestEstimateDuration(t *testing.T) {
	t.Parallel()

	minutes := func(values ...int) []task.ProposedSubtask {
		out := make([]task.ProposedSubtask, 0, len(values))
		for _, v := range values {
			out = append(out, task.ProposedSubtask{EstimatedMinutes: v})
		}
		return out
	}
	assert.Equal(t, "45 minutes", EstimateDuration(minutes(15, 30)))
	assert.Equal(t, "0 minutes", EstimateDuration(nil))
	assert.Equal(t, "1 hour", EstimateDuration(minutes(60)))
	assert.Equal(t, "1 hour", EstimateDuration(minutes(89)))
	assert.Equal(t, "2 hours", EstimateDuration(minutes(90)))
	assert.Equal(t, "3 hours", EstimateDuration(DefaultTemplate.Subtasks))
	assert.Equal(t, "19 hours", EstimateDuration(FindTemplate("run").Subtasks))
}

func TestTemplateProvider_GeneratePlanRunning(t *testing.T) {
	t.Parallel()

	item := task.New("Run a 5K race", "")
	plan, err := NewTemplateProvider(0).GeneratePlan(context.Background(), item, "")
	require.NoError(t, err)

	assert.Equal(t, item.ID, plan.TaskID)
	assert.Equal(t, task.PlanDraft, plan.Status)
	assert.Equal(t, "Plan for: Run a 5K race", plan.Summary)
	assert.Contains(t, plan.Approach, "8-week training plan")
	require.Len(t, plan.ProposedSubtasks, 8)
	assert.Equal(t, "Create training schedule", plan.ProposedSubtasks[2].Title)
	assert.True(t, plan.ProposedSubtasks[2].Automatable)
	assert.Equal(t, "calendar", plan.ProposedSubtasks[2].RequiredSkill)
	require.Len(t, plan.ProposedMetrics, 3)
	assert.Equal(t, task.ProposedMetric{Name: "Longest run", Unit: "miles", TargetValue: 3.5}, plan.ProposedMetrics[0])
	assert.Len(t, plan.QuestionsForUser, 4)
}

func TestTemplateProvider_GeneratePlanIsIndependentOfCallCount(t *testing.T) {
	t.Parallel()

	p := NewTemplateProvider(0)
	item := task.New("Organize my stamp collection", "")
	first, err := p.GeneratePlan(context.Background(), item, "")
	require.NoError(t, err)
	first.ProposedSubtasks[0].Title = "edited"
	first.ProposedSubtasks = append(first.ProposedSubtasks, task.ProposedSubtask{Title: "extra"})

	second, err := p.GeneratePlan(context.Background(), item, "")
	require.NoError(t, err)
	require.Len(t, second.ProposedSubtasks, 5)
	assert.Equal(t, "Clarify the goal", second.ProposedSubtasks[0].Title)
	require.Len(t, second.ProposedMetrics, 1)
	assert.Equal(t, float64(5), second.ProposedMetrics[0].TargetValue)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestTemplateProvider_Research(t *testing.T) {
	t.Parallel()

	res, err := NewTemplateProvider(0).Research(context.Background(), "Do my taxes", "")
	require.NoError(t, err)
	assert.Equal(t, "Research completed for: Do my taxes", res.Summary)
	assert.Equal(t, []string{
		"Found relevant information about Do my taxes",
		"Identified key steps and considerations",
		"Gathered best practices from similar tasks",
	}, res.Findings)
	assert.Equal(t, []string{
		"Do you have any self-employment income this year?",
		"Did you have any major life changes (marriage, home purchase, children)?",
	}, res.SuggestedQuestions)
}

func TestTemplateProvider_SelectSkills(t *testing.T) {
	t.Parallel()

	got, err := NewTemplateProvider(0).SelectSkills(context.Background(), "Create training schedule", skill.Builtins())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "calendar", got[0].SkillID)
	assert.Equal(t, "notes", got[1].SkillID)
	assert.Equal(t, map[string]any{"query": "Create training schedule"}, got[0].Input)

	got, err = NewTemplateProvider(0).SelectSkills(context.Background(), "", skill.Builtins())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssess(t *testing.T) {
	t.Parallel()

	item := task.New("Run a 5K race", "")
	report := Assess(item)
	assert.Equal(t, 0, report.ProgressPercentage)
	assert.Equal(t, "Just getting started!", report.Summary)
	assert.Empty(t, report.NextSteps)
	assert.Empty(t, report.Blockers)

	for i, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		item.Subtasks = append(item.Subtasks, task.NewSubtask(item.ID, title, i, false))
	}
	for i := 0; i < 3; i++ {
		item.Subtasks[i].Status = task.StatusCompleted
	}
	item.Subtasks[3].Status = task.StatusBlocked
	item.ClarificationQuestions = []task.ClarificationQuestion{
		{ID: "q1", Question: "Target date?"},
		{ID: "q2", Question: "Injuries?", Answer: "None"},
	}

	report = Assess(item)
	assert.Equal(t, 38, report.ProgressPercentage)
	assert.Equal(t, "3 of 8 subtasks completed", report.Summary)
	assert.Equal(t, []string{"e", "f", "g"}, report.NextSteps)
	assert.Equal(t, []string{"Awaiting answer: Target date?"}, report.Blockers)

	for i := range item.Subtasks {
		item.Subtasks[i].Status = task.StatusCompleted
	}
	report = Assess(item)
	assert.Equal(t, 100, report.ProgressPercentage)
	assert.Equal(t, "All subtasks completed!", report.Summary)
}

func TestTemplateProvider_DelayHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTemplateProvider(time.Hour).GeneratePlan(ctx, task.New("Run", ""), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMatchSkills_BlankDescriptionSelectsNothing(t *testing.T) {
	t.Parallel()

	available := skill.Builtins()
	assert.Empty(t, MatchSkills("", available))
	assert.Empty(t, MatchSkills("   \t", available))

	got := MatchSkills("Calendar", available)
	require.Len(t, got, 1)
	assert.Equal(t, "calendar", got[0].SkillID)
	assert.Equal(t, map[string]any{"query": "Calendar"}, got[0].Input)
}
