// Package skill holds the capability registry the agent plans against and
// dispatches automatable subtasks to.
package skill

import "context"

// Category groups skills in capability summaries.
type Category string

const (
	CategoryResearch       Category = "research"
	CategoryFileOps        Category = "file_ops"
	CategoryCalendar       Category = "calendar"
	CategoryCommunication  Category = "communication"
	CategoryDataProcessing Category = "data_processing"
	CategoryAutomation     Category = "automation"
	CategoryCustom         Category = "custom"
)

// InputField declares one input of a skill.
type InputField struct {
	Type        string `json:"type"               yaml:"type"`
	Description string `json:"description"        yaml:"description"`
	Required    bool   `json:"required"           yaml:"required"`
	Default     any    `json:"default,omitempty"  yaml:"default,omitempty"`
}

// Context is passed to an executor alongside its input.
type Context struct {
	TaskID  string
	WorkDir string
	Env     map[string]string
}

// Artifact is a named by-product of a skill run.
type Artifact struct {
	Name    string `json:"name"`
	Path    string `json:"path,omitempty"`
	Content string `json:"content,omitempty"`
}

// Result is the outcome of a skill run. A failed run sets Success false and
// Error; executors return a non-nil error only when they could not run at all.
type Result struct {
	Success   bool       `json:"success"`
	Output    any        `json:"output,omitempty"`
	Error     string     `json:"error,omitempty"`
	Logs      []string   `json:"logs,omitempty"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Failure builds an unsuccessful result.
func Failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// Executor runs a skill.
type Executor func(ctx context.Context, input map[string]any, sc Context) (Result, error)

// Skill is a named, categorized executable capability.
type Skill struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Category    Category              `json:"category"`
	InputSchema map[string]InputField `json:"input_schema,omitempty"`
	Execute     Executor              `json:"-"`
}

// ContextInfo is a reference document shipped with a directory.
type ContextInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Path        string   `json:"path,omitempty"`
	Content     string   `json:"content,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Directory is a bundle of skills and context registered together.
type Directory struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Skills      []Skill       `json:"skills"`
	Context     []ContextInfo `json:"context"`
}
