package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirectory_Manifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{
  "id": "my-skills",
  "name": "My Custom Skills",
  "description": "Personal automation skills",
  "skills": [
    {"file": "calendar.js", "id": "calendar"},
    {"file": "email.js", "id": "email"},
    {"file": "reminder.js"}
  ],
  "context": [
    {"file": "preferences.md", "id": "prefs", "name": "User Preferences", "tags": ["personal"]},
    {"file": "missing.md"}
  ]
}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "preferences.md"), []byte("Runs in the morning."), 0o600))

	d, err := LoadDirectory(dir, BuiltinCatalog())
	require.NoError(t, err)

	assert.Equal(t, "my-skills", d.ID)
	assert.Equal(t, "My Custom Skills", d.Name)
	require.Len(t, d.Skills, 2)
	assert.Equal(t, "calendar", d.Skills[0].ID)
	assert.Equal(t, "reminder", d.Skills[1].ID)
	require.Len(t, d.Context, 1)
	assert.Equal(t, "prefs", d.Context[0].ID)
	assert.Equal(t, "Runs in the morning.", d.Context[0].Content)
	assert.Equal(t, []string{"personal"}, d.Context[0].Tags)
}

func TestLoadDirectory_SkipsContextOutsideDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "skills")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("hunter2"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "plan.md"), []byte("Week 1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte(`context:
  - file: ../secret.txt
  - file: notes/../../secret.txt
  - file: `+filepath.Join(root, "secret.txt")+`
  - file: notes/plan.md
`), 0o600))

	d, err := LoadDirectory(dir, BuiltinCatalog())
	require.NoError(t, err)
	require.Len(t, d.Context, 1)
	assert.Equal(t, "Week 1", d.Context[0].Content)
	assert.Equal(t, filepath.Join(dir, "notes", "plan.md"), d.Context[0].Path)
}

func TestWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		ok   bool
	}{
		{"plan.md", true},
		{"notes/plan.md", true},
		{"notes/../plan.md", true},
		{"..plan.md", true},
		{"../plan.md", false},
		{"..", false},
		{"/etc/passwd", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := within("/skills", tt.file)
		assert.Equal(t, tt.ok, ok, tt.file)
	}
}

func TestLoadDirectory_YAMLManifestDefaultsToDirName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "running")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.yaml"), []byte("skills:\n  - id: research\n"), 0o600))

	d, err := LoadDirectory(dir, BuiltinCatalog())
	require.NoError(t, err)
	assert.Equal(t, "running", d.ID)
	assert.Equal(t, "running", d.Name)
	require.Len(t, d.Skills, 1)
	assert.Equal(t, "research", d.Skills[0].ID)
}

func TestLoadDirectory_ScanFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("# notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte{0, 1}, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.YAML"), []byte("k: v"), 0o600))

	d, err := LoadDirectory(dir, BuiltinCatalog())
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), d.ID)
	assert.Empty(t, d.Skills)
	require.Len(t, d.Context, 2)
	assert.Equal(t, "a.md", d.Context[0].Name)
	assert.Equal(t, []string{"md"}, d.Context[0].Tags)
	assert.Equal(t, []string{"yaml"}, d.Context[1].Tags)
}

func TestLoadDirectory_MissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := LoadDirectory(filepath.Join(t.TempDir(), "absent"), BuiltinCatalog())
	assert.Error(t, err)
}
