package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ankitson/clankerhub/internal/agent"
	"github.com/ankitson/clankerhub/internal/intel"
	"github.com/ankitson/clankerhub/internal/service"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "store:\n  path: " + filepath.Join(dir, "data", "todone.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg, "-q"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfg string, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, args...)
	require.NoError(t, err, out)
	return out
}

func addedTask(t *testing.T, cfg string) task.Task {
	t.Helper()
	out := mustRun(t, cfg, "list")
	fields := strings.Fields(out)
	require.NotEmpty(t, fields)
	var got task.Task
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfg, "show", "--json", fields[0])), &got))
	return got
}

func TestAddListShow(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "add", "Run", "a", "5K", "race", "-p", "high", "-t", "fitness")
	assert.Contains(t, out, "is awaiting_input")
	assert.Contains(t, out, "Review it with: todone show")

	item := addedTask(t, cfg)
	assert.Equal(t, "Run a 5K race", item.Title)
	assert.Equal(t, task.PriorityHigh, item.Priority)
	assert.Equal(t, []string{"fitness"}, item.Tags)
	require.NotNil(t, item.Plan)
	assert.Len(t, item.Plan.ProposedSubtasks, 8)
	assert.Len(t, item.ClarificationQuestions, 4)

	out = mustRun(t, cfg, "list", "--tag", "fitness")
	assert.Contains(t, out, "Run a 5K race")
	out = mustRun(t, cfg, "list", "--tag", "finance")
	assert.Equal(t, "No tasks.\n", out)

	out = mustRun(t, cfg, "show", item.ID[:8])
	assert.Contains(t, out, "Run a 5K race")
}

func TestAdd_Validation(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "add", "Learn Go", "--due", "tomorrow")
	assert.ErrorContains(t, err, "parse --due")

	_, err = run(t, cfg, "add", "Learn Go", "-p", "someday")
	assert.ErrorIs(t, err, agent.ErrInvalidInput)
}

func TestWorkflow(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "Run a 5K race")
	id := addedTask(t, cfg).ID[:8]

	out := mustRun(t, cfg, "answer", id, "1", "I jog", "twice", "a", "week")
	assert.Equal(t, "3 questions left\n", out)

	out = mustRun(t, cfg, "modify", id, "--remove", "2", "--add", "Stretch daily:ten minutes")
	assert.Contains(t, out, "8. Stretch daily\n")
	assert.NotContains(t, out, "Get proper running shoes")

	out = mustRun(t, cfg, "approve", id)
	assert.Equal(t, "8 subtasks and 3 metrics created\n", out)

	_, err := run(t, cfg, "approve", id)
	assert.ErrorIs(t, err, agent.ErrPlanApproved)

	out = mustRun(t, cfg, "complete", id, "1")
	assert.Equal(t, "1/8 subtasks done\n", out)

	out = mustRun(t, cfg, "execute", id, "2")
	assert.Contains(t, out, "Create training schedule")

	out = mustRun(t, cfg, "metric", id, "1", "2", "--note", "Morning run")
	assert.Contains(t, out, "Longest run: 2/3.5 miles\n")

	_, err = run(t, cfg, "metric", id, "1", "far")
	assert.ErrorContains(t, err, `parse value "far"`)

	out = mustRun(t, cfg, "add-subtask", id, "Buy", "race", "bib")
	assert.Equal(t, "Subtask 9 added\n", out)

	var report intel.ProgressReport
	require.NoError(t, json.Unmarshal([]byte(mustRun(t, cfg, "progress", "--json", id)), &report))
	assert.Equal(t, 22, report.ProgressPercentage)

	out = mustRun(t, cfg, "events", id, "-n", "0")
	assert.Contains(t, out, "status_changed")
}

func TestBlockAndDelete(t *testing.T) {
	cfg := writeConfig(t)
	mustRun(t, cfg, "add", "Do my taxes")
	id := addedTask(t, cfg).ID[:8]

	mustRun(t, cfg, "block", id, "waiting", "on", "W-2")
	assert.Equal(t, task.StatusBlocked, addedTask(t, cfg).Status)

	out := mustRun(t, cfg, "delete", id)
	assert.Equal(t, "Deleted "+id+"\n", out)
	assert.Equal(t, "No tasks.\n", mustRun(t, cfg, "list"))

	_, err := run(t, cfg, "show", id)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestExportImport(t *testing.T) {
	src := writeConfig(t)
	mustRun(t, src, "add", "Learn Go")
	mustRun(t, src, "add", "Do my taxes")

	file := filepath.Join(t.TempDir(), "tasks.json")
	mustRun(t, src, "export", "-o", file)

	dst := writeConfig(t)
	out := mustRun(t, dst, "import", file)
	assert.Equal(t, "Imported 2 tasks\n", out)

	out = mustRun(t, dst, "list")
	assert.Contains(t, out, "Learn Go")
	assert.Contains(t, out, "Do my taxes")
}

func TestSkillsAndSuggest(t *testing.T) {
	cfg := writeConfig(t)

	out := mustRun(t, cfg, "skills")
	assert.Contains(t, out, "calendar")

	out = mustRun(t, cfg, "suggest", "calendar")
	assert.Contains(t, out, "calendar")
}

func TestPlanEdits(t *testing.T) {
	edits, err := planEdits([]int{1, 3}, []string{"Stretch daily: ten minutes", "Rest"}, "  slower  ")
	require.NoError(t, err)
	assert.Equal(t, agent.PlanEdits{
		RemoveIndices: []int{0, 2},
		Add: []agent.SubtaskDraft{
			{Title: "Stretch daily", Description: "ten minutes"},
			{Title: "Rest"},
		},
		Approach: "slower",
	}, edits)

	_, err = planEdits([]int{0}, nil, "")
	assert.Error(t, err)

	_, err = planEdits(nil, []string{":no title"}, "")
	assert.Error(t, err)
}

func TestNoWait_FailsWhileLocked(t *testing.T) {
	cfg := writeConfig(t)
	held, err := service.AcquireLock(filepath.Join(filepath.Dir(cfg), "data"))
	require.NoError(t, err)

	_, err = run(t, cfg, "--no-wait", "add", "Learn Go")
	assert.ErrorIs(t, err, service.ErrBusy)

	require.NoError(t, held.Release())
	out := mustRun(t, cfg, "--no-wait", "add", "Learn Go")
	assert.Contains(t, out, "Review it with")
}
