package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ankitson/clankerhub/internal/intel/openaiapi"
	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// Completer sends one prompt to a model and returns its text output.
type Completer interface {
	Complete(ctx context.Context, req openaiapi.Request) (string, error)
}

// OpenAIProvider asks a model for research and plans. Skill selection and
// progress analysis have fixed contracts and are answered locally.
type OpenAIProvider struct {
	client Completer
	local  *TemplateProvider
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a model-backed provider.
func NewOpenAIProvider(client Completer) *OpenAIProvider {
	return &OpenAIProvider{client: client, local: NewTemplateProvider(0)}
}

const planInstructions = `You are a planning assistant for a personal task manager.
Break the user's goal into concrete, ordered subtasks and numeric progress metrics.
Mark a subtask automatable only when one of the listed capabilities can do it, and
set required_skill to that capability's id. Ask up to four clarification questions.
Respond with a single JSON object:
{"summary": string, "approach": string,
 "subtasks": [{"title": string, "description": string, "estimated_minutes": int, "automatable": bool, "required_skill": string}],
 "metrics": [{"name": string, "unit": string, "target_value": number}],
 "questions": [string]}`

const planSchema = `{
  "type": "object",
  "required": ["approach", "subtasks"],
  "properties": {
    "summary": {"type": "string"},
    "approach": {"type": "string", "minLength": 1},
    "subtasks": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "estimated_minutes": {"type": "integer", "minimum": 0},
          "automatable": {"type": "boolean"},
          "required_skill": {"type": "string"}
        }
      }
    },
    "metrics": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "target_value"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "unit": {"type": "string"},
          "target_value": {"type": "number"}
        }
      }
    },
    "questions": {"type": "array", "items": {"type": "string"}}
  }
}`

type planInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Findings     []string `json:"research_findings,omitempty"`
	Answers      []string `json:"answered_questions,omitempty"`
	Capabilities string   `json:"capabilities"`
}

type planOutput struct {
	Summary   string                 `json:"summary"`
	Approach  string                 `json:"approach"`
	Subtasks  []task.ProposedSubtask `json:"subtasks"`
	Metrics   []task.ProposedMetric  `json:"metrics"`
	Questions []string               `json:"questions"`
}

// defaultSubtaskMinutes is used when the model omits an estimate.
const defaultSubtaskMinutes = 30

// GeneratePlan asks the model for a plan and validates its shape.
func (p *OpenAIProvider) GeneratePlan(ctx context.Context, t task.Task, capabilities string) (task.Plan, error) {
	in := planInput{Title: t.Title, Description: t.Description, Capabilities: capabilities}
	for _, f := range t.ResearchFindings {
		in.Findings = append(in.Findings, f.Summary)
	}
	for _, q := range t.ClarificationQuestions {
		if q.Answered() {
			in.Answers = append(in.Answers, q.Question+" "+q.Answer)
		}
	}

	var out planOutput
	if err := p.ask(ctx, planInstructions, planSchema, in, &out); err != nil {
		return task.Plan{}, fmt.Errorf("generate plan: %w", err)
	}
	for i := range out.Subtasks {
		if out.Subtasks[i].EstimatedMinutes <= 0 {
			out.Subtasks[i].EstimatedMinutes = defaultSubtaskMinutes
		}
		if out.Subtasks[i].RequiredSkill == "" {
			out.Subtasks[i].Automatable = false
		}
	}
	if out.Metrics == nil {
		out.Metrics = []task.ProposedMetric{}
	}
	if out.Questions == nil {
		out.Questions = []string{}
	}

	now := time.Now().UTC()
	summary := out.Summary
	if summary == "" {
		summary = "Plan for: " + t.Title
	}
	return task.Plan{
		ID:                task.NewID(),
		TaskID:            t.ID,
		Status:            task.PlanDraft,
		Summary:           summary,
		Approach:          out.Approach,
		EstimatedDuration: EstimateDuration(out.Subtasks),
		ProposedSubtasks:  out.Subtasks,
		ProposedMetrics:   out.Metrics,
		QuestionsForUser:  out.Questions,
		CreatedAt:         now,
		ModifiedAt:        now,
	}, nil
}

const researchInstructions = `You research goals for a personal task manager.
Summarize what someone needs to know before planning the goal, list short factual
findings, and suggest up to two clarification questions.
Respond with a single JSON object:
{"summary": string, "findings": [string], "suggested_questions": [string]}`

const researchSchema = `{
  "type": "object",
  "required": ["summary", "findings"],
  "properties": {
    "summary": {"type": "string"},
    "findings": {"type": "array", "items": {"type": "string"}},
    "suggested_questions": {"type": "array", "items": {"type": "string"}}
  }
}`

// Research asks the model about topic.
func (p *OpenAIProvider) Research(ctx context.Context, topic, detail string) (Research, error) {
	var out Research
	in := map[string]string{"topic": topic, "context": detail}
	if err := p.ask(ctx, researchInstructions, researchSchema, in, &out); err != nil {
		return Research{}, fmt.Errorf("research: %w", err)
	}
	if out.SuggestedQuestions == nil {
		out.SuggestedQuestions = []string{}
	}
	return out, nil
}

// SelectSkills matches skills by word overlap.
func (p *OpenAIProvider) SelectSkills(ctx context.Context, subtask string, available []skill.Skill) ([]SkillSelection, error) {
	return p.local.SelectSkills(ctx, subtask, available)
}

// AnalyzeProgress computes progress from the task.
func (p *OpenAIProvider) AnalyzeProgress(ctx context.Context, t task.Task) (ProgressReport, error) {
	return p.local.AnalyzeProgress(ctx, t)
}

func (p *OpenAIProvider) ask(ctx context.Context, instructions, schema string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	text, err := p.client.Complete(ctx, openaiapi.Request{Instructions: instructions, Input: string(payload)})
	if err != nil {
		return err
	}
	raw, err := openaiapi.ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := validateOutput(schema, raw); err != nil {
		log.Debug().Str("output", raw).Msg("model output rejected")
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

func validateOutput(schema, raw string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("validate model output: %w", err)
	}
	if result.Valid() {
		return nil
	}
	errs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, e.String())
	}
	sort.Strings(errs)
	return fmt.Errorf("model output does not match schema: %s", strings.Join(errs, "; "))
}
