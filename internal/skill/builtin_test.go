package skill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInput_AppliesDefaults(t *testing.T) {
	t.Parallel()

	got, err := Calendar().ValidateInput(map[string]any{"query": "Create training schedule"})
	require.NoError(t, err)
	assert.Equal(t, "create", got["action"])
	assert.Equal(t, 60, got["duration"])
	assert.Equal(t, "Create training schedule", got["query"])
}

func TestValidateInput_RejectsMissingRequired(t *testing.T) {
	t.Parallel()

	_, err := Reminder().ValidateInput(map[string]any{"message": "stretch"})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "time")
}

func TestValidateInput_RejectsWrongType(t *testing.T) {
	t.Parallel()

	_, err := WebResearch().ValidateInput(map[string]any{"query": "5K plans", "maxResults": "many"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRun_InvalidInputIsFailedResult(t *testing.T) {
	t.Parallel()

	res, err := Reminder().Run(context.Background(), map[string]any{}, Context{TaskID: "t1"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "invalid skill input")
}

func TestRun_WithoutExecutorIsError(t *testing.T) {
	t.Parallel()

	_, err := Skill{ID: "empty"}.Run(context.Background(), nil, Context{})
	assert.Error(t, err)
}

func TestRun_PanicIsError(t *testing.T) {
	t.Parallel()

	s := Skill{ID: "exploding", Execute: func(context.Context, map[string]any, Context) (Result, error) {
		panic("out of stamps")
	}}
	var (
		res Result
		err error
	)
	require.NotPanics(t, func() { res, err = s.Run(context.Background(), map[string]any{}, Context{}) })
	require.ErrorIs(t, err, ErrPanicked)
	assert.Contains(t, err.Error(), "out of stamps")
	assert.False(t, res.Success)
}

func TestCalendar_CreateUsesQueryAsTitle(t *testing.T) {
	t.Parallel()

	res, err := Calendar().Run(context.Background(), map[string]any{"query": "Create training schedule"}, Context{})
	require.NoError(t, err)
	require.True(t, res.Success)
	out, ok := res.Output.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Create training schedule", out["title"])
	assert.Equal(t, "created", out["status"])
	assert.Equal(t, []string{"Created calendar event: Create training schedule"}, res.Logs)
}

func TestCalendar_UnknownActionFails(t *testing.T) {
	t.Parallel()

	res, err := Calendar().Run(context.Background(), map[string]any{"action": "explode"}, Context{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Unknown action: explode", res.Error)
}

func TestFileSearch_MatchesNamesAndContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-W2-Employer.pdf"), []byte("pdf"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("bring the W-2 form"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".cache"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cache", "w2-copy.pdf"), []byte(""), 0o600))

	res, err := FileSearch().Run(context.Background(), map[string]any{"query": "W2"}, Context{WorkDir: dir})
	require.NoError(t, err)
	require.True(t, res.Success)
	out := res.Output.(map[string]any)
	assert.Equal(t, []string{filepath.Join(dir, "2024-W2-Employer.pdf")}, out["matchingFiles"])

	res, err = FileSearch().Run(context.Background(), map[string]any{
		"query": "w-2", "directory": dir, "includeContent": true,
	}, Context{})
	require.NoError(t, err)
	out = res.Output.(map[string]any)
	assert.Equal(t, []string{filepath.Join(dir, "notes.txt")}, out["matchingFiles"])
}

func TestFileSearch_MissingDirectoryFails(t *testing.T) {
	t.Parallel()

	res, err := FileSearch().Run(context.Background(), map[string]any{
		"query": "x", "directory": filepath.Join(t.TempDir(), "absent"),
	}, Context{})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestBuiltinCatalog_IndexesAllBuiltins(t *testing.T) {
	t.Parallel()

	c := BuiltinCatalog()
	for _, id := range []string{"file_search", "research", "calendar", "notes", "reminder"} {
		_, ok := c[id]
		assert.True(t, ok, id)
	}
}
