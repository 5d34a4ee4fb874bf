package render

import (
	"bytes"
	"testing"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTask() task.Task {
	item := task.New("Run a 5K race", "Spring race downtown")
	item.Tags = []string{"fitness"}
	item.Reasoning = "Research completed for: Run a 5K race"
	item.ResearchFindings = []task.ResearchFinding{{Summary: "Start slow", Confidence: task.ConfidenceMedium}}
	item.Plan = &task.Plan{
		Status:            task.PlanDraft,
		Approach:          "Build up gradually",
		EstimatedDuration: "19 hours",
		ProposedSubtasks: []task.ProposedSubtask{
			{Title: "Get shoes", Description: "Visit a store"},
			{Title: "Create training schedule", Automatable: true, RequiredSkill: "calendar"},
		},
	}
	item.ClarificationQuestions = []task.ClarificationQuestion{
		{ID: "q1", Question: "Have you run before?", Answer: "Yes, a little"},
		{ID: "q2", Question: "Race date?"},
	}
	return item
}

func TestTaskMarkdown_DraftPlan(t *testing.T) {
	t.Parallel()

	md := TaskMarkdown(sampleTask())

	assert.Contains(t, md, "# Run a 5K race\n")
	assert.Contains(t, md, "**Status:** pending")
	assert.Contains(t, md, "Tags: fitness")
	assert.Contains(t, md, "- Start slow _(medium)_")
	assert.Contains(t, md, "## Plan (draft)")
	assert.Contains(t, md, "1. **Get shoes** - Visit a store\n")
	assert.Contains(t, md, "2. **Create training schedule** `calendar`\n")
	assert.Contains(t, md, "1. Have you run before?\n   > Yes, a little\n")
	assert.Contains(t, md, "2. Race date?\n")
	assert.NotContains(t, md, "## Subtasks")
}

func TestTaskMarkdown_ApprovedShowsSubtasksAndMetrics(t *testing.T) {
	t.Parallel()

	item := sampleTask()
	item.Plan.Status = task.PlanInProgress
	done := task.NewSubtask(item.ID, "Get shoes", 0, false)
	done.Status = task.StatusCompleted
	blocked := task.NewSubtask(item.ID, "Create training schedule", 1, true)
	blocked.AutomationSkillID = "calendar"
	blocked.Status = task.StatusBlocked
	blocked.AutomationResult = &task.AutomationResult{Error: "offline"}
	item.Subtasks = []task.Subtask{done, blocked}
	item.ProgressMetrics = []task.ProgressMetric{{Name: "Longest run", Unit: "miles", CurrentValue: 2, TargetValue: 3.5}}
	item.Notes = []string{"Blocked: rain"}

	md := TaskMarkdown(item)

	assert.Contains(t, md, "## Subtasks (1/2)")
	assert.Contains(t, md, "1. [x] Get shoes\n")
	assert.Contains(t, md, "2. [!] Create training schedule `calendar` - failed: offline\n")
	assert.Contains(t, md, "| 1 | Longest run | 2 | 3.5 | miles |")
	assert.Contains(t, md, "- Blocked: rain")
	assert.NotContains(t, md, "**Get shoes**")
}

func TestSkillsMarkdown(t *testing.T) {
	t.Parallel()

	md := SkillsMarkdown([]skill.Directory{skill.BuiltinDirectory()})

	assert.Contains(t, md, "## Built-in Skills")
	assert.Contains(t, md, "- **Calendar Management** `calendar` (calendar)")
	assert.Contains(t, md, "  - `action` string, required: Action to perform: create, list, delete")
}

func TestMarkdown_RendersPlainText(t *testing.T) {
	t.Parallel()

	out, err := Markdown(TaskMarkdown(sampleTask()), 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Run a 5K race")
	assert.Contains(t, out, "Build up gradually")
}

func TestTaskList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	TaskList(&buf, nil)
	assert.Equal(t, "No tasks.\n", buf.String())

	buf.Reset()
	item := task.New("Learn Go", "")
	item.ID = "abcdef12-0000-0000-0000-000000000000"
	item.Status = task.StatusInProgress
	item.Subtasks = []task.Subtask{task.NewSubtask(item.ID, "Read the tour", 0, false)}
	TaskList(&buf, []task.Task{item})
	assert.Equal(t, "abcdef12  in_progress    Learn Go 0/1\n", buf.String())
}
