package skill

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Catalog maps skill ids to compiled-in implementations. Directory
// manifests reference skills by id from a catalog.
type Catalog map[string]Skill

// NewCatalog indexes skills by id.
func NewCatalog(skills ...Skill) Catalog {
	c := make(Catalog, len(skills))
	for _, s := range skills {
		c[s.ID] = s
	}
	return c
}

// BuiltinDirectoryID identifies the directory of built-in skills.
const BuiltinDirectoryID = "builtin"

// Builtins returns the skills shipped with todone in a stable order.
func Builtins() []Skill {
	return []Skill{FileSearch(), WebResearch(), Calendar(), Notes(), Reminder()}
}

// BuiltinCatalog indexes Builtins by id.
func BuiltinCatalog() Catalog {
	return NewCatalog(Builtins()...)
}

// BuiltinDirectory bundles Builtins for registration.
func BuiltinDirectory() Directory {
	return Directory{
		ID:          BuiltinDirectoryID,
		Name:        "Built-in Skills",
		Description: "Default skills that come with todone",
		Skills:      Builtins(),
		Context:     []ContextInfo{},
	}
}

// ErrPanicked wraps the value recovered from a panicking executor.
var ErrPanicked = errors.New("skill panicked")

// Run validates input and calls the executor. Invalid input yields a failed
// result rather than an error. A panicking executor is reported as an error.
func (s Skill) Run(ctx context.Context, input map[string]any, sc Context) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("skill_id", s.ID).Interface("panic", r).Msg("skill panicked")
			res, err = Result{}, fmt.Errorf("%w: skill %s: %v", ErrPanicked, s.ID, r)
		}
	}()
	if s.Execute == nil {
		return Result{}, fmt.Errorf("skill %s has no executor", s.ID)
	}
	valid, err := s.ValidateInput(input)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return Failure(err.Error()), nil
		}
		return Result{}, err
	}
	return s.Execute(ctx, valid, sc)
}

const maxSearchResults = 50

// FileSearch finds files under a directory by name or content.
func FileSearch() Skill {
	return Skill{
		ID:          "file_search",
		Name:        "File Search",
		Description: "Search for files by name or content in a directory",
		Category:    CategoryFileOps,
		InputSchema: map[string]InputField{
			"query":          {Type: "string", Description: "Search query (filename or content pattern)", Required: true},
			"directory":      {Type: "string", Description: "Directory to search in", Default: "."},
			"includeContent": {Type: "boolean", Description: "Whether to search file contents", Default: false},
		},
		Execute: searchFiles,
	}
}

func searchFiles(ctx context.Context, input map[string]any, sc Context) (Result, error) {
	query := strings.ToLower(stringInput(input, "query"))
	dir := stringInput(input, "directory")
	if !filepath.IsAbs(dir) && sc.WorkDir != "" {
		dir = filepath.Join(sc.WorkDir, dir)
	}
	withContent, _ := input["includeContent"].(bool)

	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.Contains(strings.ToLower(d.Name()), query) || (withContent && fileContains(path, query)) {
			matches = append(matches, path)
			if len(matches) >= maxSearchResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Failure(fmt.Sprintf("search %s: %v", dir, err)), nil
	}
	if matches == nil {
		matches = []string{}
	}
	return Result{
		Success: true,
		Output: map[string]any{
			"matchingFiles": matches,
			"searchQuery":   query,
		},
		Logs: []string{fmt.Sprintf("Searched %s for pattern: %s", dir, query)},
	}, nil
}

const maxContentScan = 1 << 20

func fileContains(path, query string) bool {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxContentScan {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), query)
}

// WebResearch returns canned search results for a query.
func WebResearch() Skill {
	return Skill{
		ID:          "research",
		Name:        "Web Research",
		Description: "Search the web for information on a topic",
		Category:    CategoryResearch,
		InputSchema: map[string]InputField{
			"query":      {Type: "string", Description: "Search query", Required: true},
			"maxResults": {Type: "number", Description: "Maximum number of results", Default: 5},
		},
		Execute: func(_ context.Context, input map[string]any, _ Context) (Result, error) {
			query := stringInput(input, "query")
			return Result{
				Success: true,
				Output: map[string]any{
					"results": []map[string]any{{
						"title":   "Top results for: " + query,
						"summary": "Found relevant information on the topic.",
						"url":     "https://example.com/result1",
					}},
				},
				Logs: []string{"Performed web search: " + query},
			}, nil
		},
	}
}

// Calendar manages calendar events.
func Calendar() Skill {
	return Skill{
		ID:          "calendar",
		Name:        "Calendar Management",
		Description: "Create, read, and manage calendar events",
		Category:    CategoryCalendar,
		InputSchema: map[string]InputField{
			"action":   {Type: "string", Description: "Action to perform: create, list, delete", Required: true, Default: "create"},
			"title":    {Type: "string", Description: "Event title (for create)"},
			"date":     {Type: "string", Description: "Event date (ISO format)"},
			"duration": {Type: "number", Description: "Duration in minutes", Default: 60},
		},
		Execute: func(_ context.Context, input map[string]any, _ Context) (Result, error) {
			action := stringInput(input, "action")
			switch action {
			case "create":
				title := stringInput(input, "title")
				if title == "" {
					title = stringInput(input, "query")
				}
				return Result{
					Success: true,
					Output: map[string]any{
						"eventId":  "evt_" + uuid.NewString(),
						"title":    title,
						"date":     input["date"],
						"duration": input["duration"],
						"status":   "created",
					},
					Logs: []string{"Created calendar event: " + title},
				}, nil
			case "list":
				return Result{
					Success: true,
					Output: map[string]any{
						"events": []map[string]any{{"title": "Sample Event", "date": time.Now().UTC().Format(time.RFC3339)}},
					},
					Logs: []string{"Listed calendar events"},
				}, nil
			default:
				return Failure("Unknown action: " + action), nil
			}
		},
	}
}

// Notes creates and organizes notes.
func Notes() Skill {
	return Skill{
		ID:          "notes",
		Name:        "Note Taking",
		Description: "Create and organize notes",
		Category:    CategoryFileOps,
		InputSchema: map[string]InputField{
			"action":  {Type: "string", Description: "Action: create, append, read", Required: true},
			"title":   {Type: "string", Description: "Note title"},
			"content": {Type: "string", Description: "Note content"},
		},
		Execute: func(_ context.Context, input map[string]any, _ Context) (Result, error) {
			action := stringInput(input, "action")
			if action == "create" {
				title := stringInput(input, "title")
				return Result{
					Success: true,
					Output: map[string]any{
						"noteId":  "note_" + uuid.NewString(),
						"title":   title,
						"content": input["content"],
						"status":  "created",
					},
					Logs: []string{"Created note: " + title},
				}, nil
			}
			return Result{
				Success: true,
				Output:  map[string]any{"action": action, "status": "completed"},
			}, nil
		},
	}
}

// Reminder schedules a reminder message.
func Reminder() Skill {
	return Skill{
		ID:          "reminder",
		Name:        "Set Reminder",
		Description: "Set a reminder for a specific time",
		Category:    CategoryAutomation,
		InputSchema: map[string]InputField{
			"message": {Type: "string", Description: "Reminder message", Required: true},
			"time":    {Type: "string", Description: `When to remind (ISO datetime or relative like "in 1 hour")`, Required: true},
		},
		Execute: func(_ context.Context, input map[string]any, _ Context) (Result, error) {
			message := stringInput(input, "message")
			at := stringInput(input, "time")
			return Result{
				Success: true,
				Output: map[string]any{
					"reminderId":   "rem_" + uuid.NewString(),
					"message":      message,
					"scheduledFor": at,
					"status":       "scheduled",
				},
				Logs: []string{fmt.Sprintf("Set reminder: %s at %s", message, at)},
			}, nil
		},
	}
}

func stringInput(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}
