package render

import (
	"bytes"
	"testing"

	"github.com/ankitson/clankerhub/internal/event"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_Handle(t *testing.T) {
	t.Parallel()

	item := task.New("Run a 5K race", "")
	item.ID = "1234abcd-0000-0000-0000-000000000000"

	tests := []struct {
		name string
		msg  event.Message
		want string
	}{
		{
			name: "task added",
			msg:  event.TaskAdded{Task: item},
			want: "+ Run a 5K race 1234abcd\n",
		},
		{
			name: "status changed",
			msg:  event.StatusChanged{Task: item, From: task.StatusPending, To: task.StatusResearching},
			want: "  status pending -> researching\n",
		},
		{
			name: "research",
			msg: event.ResearchComplete{TaskID: item.ID, Summary: "Done", Findings: []task.ResearchFinding{
				{Summary: "first"}, {Summary: "second"},
			}},
			want: "  research Done\n    - first\n    - second\n",
		},
		{
			name: "plan",
			msg: event.PlanReady{TaskID: item.ID, Plan: task.Plan{
				Approach:          "Go slow",
				EstimatedDuration: "2 hours",
				ProposedSubtasks: []task.ProposedSubtask{
					{Title: "Buy shoes"},
					{Title: "Schedule runs", Automatable: true, RequiredSkill: "calendar"},
				},
			}},
			want: "  plan Go slow\n    1. Buy shoes\n    2. Schedule runs [calendar]\n    estimated 2 hours\n",
		},
		{
			name: "question",
			msg:  event.QuestionRaised{TaskID: item.ID, Question: task.ClarificationQuestion{ID: "q1", Question: "When?"}},
			want: "  ? When? q1\n",
		},
		{
			name: "skill ok",
			msg:  event.SkillExecuted{SkillID: "calendar", Result: skill.Result{Success: true}},
			want: "  ok calendar\n",
		},
		{
			name: "skill failed",
			msg:  event.SkillExecuted{SkillID: "notes", Result: skill.Failure("no disk")},
			want: "  failed notes: no disk\n",
		},
		{
			name: "progress",
			msg:  event.ProgressUpdate{Message: "Creating a plan..."},
			want: "  Creating a plan...\n",
		},
		{
			name: "error",
			msg:  event.Error{Message: "Research failed: boom"},
			want: "  error Research failed: boom\n",
		},
		{
			name: "task updated is quiet",
			msg:  event.TaskUpdated{Task: item},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			NewPrinter(&buf).Handle(tt.msg)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestPrinter_VerboseShowsUpdates(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Verbose = true
	item := task.New("Learn Go", "")
	item.Status = task.StatusInProgress

	p.Handle(event.TaskUpdated{Task: item})
	assert.Equal(t, "Task updated: Learn Go (in_progress)\n", buf.String())
}

func TestPrinter_SubscribesToBus(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	bus := event.NewBus()
	bus.Subscribe(NewPrinter(&buf).Handle)

	bus.Publish(event.ProgressUpdate{Message: "one"})
	bus.Publish(event.ProgressUpdate{Message: "two"})
	assert.Equal(t, "  one\n  two\n", buf.String())
}
