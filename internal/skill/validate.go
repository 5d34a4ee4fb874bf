package skill

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidInput is wrapped by ValidateInput when input does not satisfy
// a skill's declared schema.
var ErrInvalidInput = errors.New("invalid skill input")

// JSONSchema renders the declared input fields as a JSON schema object.
// Undeclared keys are allowed so callers can pass extra context.
func (s Skill) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s.InputSchema))
	required := make([]any, 0)
	for _, name := range s.InputNames() {
		field := s.InputSchema[name]
		prop := map[string]any{"description": field.Description}
		if field.Type != "" {
			prop["type"] = field.Type
		}
		properties[name] = prop
		if field.Required {
			required = append(required, name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// InputNames returns the declared input names sorted alphabetically.
func (s Skill) InputNames() []string {
	names := make([]string, 0, len(s.InputSchema))
	for name := range s.InputSchema {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyDefaults returns a copy of input with declared defaults filled in for
// absent fields.
func (s Skill) ApplyDefaults(input map[string]any) map[string]any {
	out := make(map[string]any, len(input)+len(s.InputSchema))
	for k, v := range input {
		out[k] = v
	}
	for name, field := range s.InputSchema {
		if _, ok := out[name]; !ok && field.Default != nil {
			out[name] = field.Default
		}
	}
	return out
}

// ValidateInput applies defaults and checks the result against the skill's
// input schema.
func (s Skill) ValidateInput(input map[string]any) (map[string]any, error) {
	filled := s.ApplyDefaults(input)
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(s.JSONSchema()),
		gojsonschema.NewGoLoader(filled),
	)
	if err != nil {
		return nil, fmt.Errorf("validate %s input: %w", s.ID, err)
	}
	if result.Valid() {
		return filled, nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)
	return nil, fmt.Errorf("%w for %s: %s", ErrInvalidInput, s.ID, strings.Join(errs, "; "))
}
