package skill

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// ManifestFiles are tried in order when loading a directory. YAML is a
// superset of the JSON manifests the format started with.
var ManifestFiles = []string{"manifest.json", "manifest.yaml", "manifest.yml"}

var contextExtensions = map[string]bool{
	".txt": true, ".md": true, ".json": true, ".yaml": true, ".yml": true,
}

type manifest struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Skills      []manifestSkill   `yaml:"skills"`
	Context     []manifestContext `yaml:"context"`
}

type manifestSkill struct {
	File string `yaml:"file"`
	ID   string `yaml:"id"`
}

type manifestContext struct {
	File        string   `yaml:"file"`
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
}

// LoadDirectory builds a Directory from dir. Skills named in the manifest are
// resolved against catalog by id; unknown ids and missing context files are
// skipped with a warning. Without a manifest every text file in dir becomes
// a context document.
func LoadDirectory(dir string, catalog Catalog) (Directory, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Directory{}, fmt.Errorf("resolve skill directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Directory{}, fmt.Errorf("skill directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Directory{}, fmt.Errorf("skill directory %s is not a directory", abs)
	}

	for _, name := range ManifestFiles {
		data, err := os.ReadFile(filepath.Join(abs, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Directory{}, fmt.Errorf("read manifest: %w", err)
		}
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return Directory{}, fmt.Errorf("parse manifest %s: %w", name, err)
		}
		return fromManifest(abs, m, catalog), nil
	}

	log.Warn().Str("dir", abs).Msg("no manifest found, scanning files")
	return scanDirectory(abs)
}

func fromManifest(dir string, m manifest, catalog Catalog) Directory {
	base := filepath.Base(dir)
	d := Directory{
		ID:          firstNonEmpty(m.ID, base),
		Name:        firstNonEmpty(m.Name, base),
		Description: m.Description,
		Skills:      []Skill{},
		Context:     []ContextInfo{},
	}

	for _, ref := range m.Skills {
		id := ref.ID
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(ref.File), filepath.Ext(ref.File))
		}
		s, ok := catalog[id]
		if !ok {
			log.Warn().Str("dir", dir).Str("skill_id", id).Msg("manifest references unknown skill")
			continue
		}
		d.Skills = append(d.Skills, s)
	}

	for _, ref := range m.Context {
		path, ok := within(dir, ref.File)
		if !ok {
			log.Warn().Str("dir", dir).Str("file", ref.File).Msg("context file outside directory")
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skip context file")
			continue
		}
		name := filepath.Base(path)
		tags := ref.Tags
		if tags == nil {
			tags = []string{}
		}
		d.Context = append(d.Context, ContextInfo{
			ID:          firstNonEmpty(ref.ID, name),
			Name:        firstNonEmpty(ref.Name, name),
			Type:        "file",
			Path:        path,
			Content:     string(content),
			Description: ref.Description,
			Tags:        tags,
		})
	}
	return d
}

// within joins file onto dir and reports whether the result stays inside dir.
func within(dir, file string) (string, bool) {
	if file == "" || filepath.IsAbs(file) {
		return "", false
	}
	path := filepath.Join(dir, file)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return path, true
}

func scanDirectory(dir string) (Directory, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Directory{}, fmt.Errorf("scan skill directory: %w", err)
	}
	base := filepath.Base(dir)
	d := Directory{
		ID:          base,
		Name:        base,
		Description: "Auto-scanned directory: " + dir,
		Skills:      []Skill{},
		Context:     []ContextInfo{},
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !contextExtensions[ext] {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return Directory{}, fmt.Errorf("read context file: %w", err)
		}
		d.Context = append(d.Context, ContextInfo{
			ID:      entry.Name(),
			Name:    entry.Name(),
			Type:    "file",
			Path:    path,
			Content: string(content),
			Tags:    []string{strings.TrimPrefix(ext, ".")},
		})
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
