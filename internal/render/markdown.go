package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ankitson/clankerhub/internal/skill"
	"github.com/ankitson/clankerhub/internal/task"
	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word wrap used when the terminal width is unknown.
const DefaultWidth = 80

// TaskMarkdown describes a task, its plan and its progress as Markdown.
func TaskMarkdown(t task.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Title)
	fmt.Fprintf(&b, "**Status:** %s · **Priority:** %s · **ID:** `%s`\n\n", t.Status, t.Priority, t.ID)
	if t.Description != "" {
		b.WriteString(t.Description + "\n\n")
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(t.Tags, ", "))
	}

	if t.Reasoning != "" || len(t.ResearchFindings) > 0 {
		b.WriteString("## Research\n\n")
		if t.Reasoning != "" {
			b.WriteString(t.Reasoning + "\n\n")
		}
		for _, f := range t.ResearchFindings {
			fmt.Fprintf(&b, "- %s _(%s)_\n", f.Summary, f.Confidence)
		}
		b.WriteString("\n")
	}

	if p := t.Plan; p != nil {
		fmt.Fprintf(&b, "## Plan (%s)\n\n", p.Status)
		if p.Approach != "" {
			b.WriteString(p.Approach + "\n\n")
		}
		if p.EstimatedDuration != "" {
			fmt.Fprintf(&b, "Estimated duration: %s\n\n", p.EstimatedDuration)
		}
		if len(t.Subtasks) == 0 {
			for i, st := range p.ProposedSubtasks {
				fmt.Fprintf(&b, "%d. **%s**", i+1, st.Title)
				if st.Description != "" {
					b.WriteString(" - " + st.Description)
				}
				if st.Automatable && st.RequiredSkill != "" {
					fmt.Fprintf(&b, " `%s`", st.RequiredSkill)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintf(&b, "## Subtasks (%d/%d)\n\n", t.CompletedSubtasks(), len(t.Subtasks))
		for i, st := range t.Subtasks {
			fmt.Fprintf(&b, "%d. %s %s", i+1, checkbox(st.Status), st.Title)
			if st.AutomationSkillID != "" {
				fmt.Fprintf(&b, " `%s`", st.AutomationSkillID)
			}
			if r := st.AutomationResult; r != nil && !r.Success {
				fmt.Fprintf(&b, " - failed: %s", r.Error)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(t.ProgressMetrics) > 0 {
		b.WriteString("## Metrics\n\n")
		b.WriteString("| # | Metric | Current | Target | Unit |\n|---|---|---|---|---|\n")
		for i, m := range t.ProgressMetrics {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", i+1, m.Name, number(m.CurrentValue), number(m.TargetValue), m.Unit)
		}
		b.WriteString("\n")
	}

	if len(t.ClarificationQuestions) > 0 {
		b.WriteString("## Questions\n\n")
		for i, q := range t.ClarificationQuestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
			if q.Answered() {
				fmt.Fprintf(&b, "   > %s\n", q.Answer)
			}
		}
		b.WriteString("\n")
	}

	if len(t.Notes) > 0 {
		b.WriteString("## Notes\n\n")
		for _, n := range t.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// SkillsMarkdown lists skill directories and their skills.
func SkillsMarkdown(dirs []skill.Directory) string {
	var b strings.Builder
	b.WriteString("# Skills\n\n")
	for _, d := range dirs {
		fmt.Fprintf(&b, "## %s\n\n", d.Name)
		if d.Description != "" {
			b.WriteString(d.Description + "\n\n")
		}
		for _, s := range d.Skills {
			fmt.Fprintf(&b, "- **%s** `%s` (%s): %s\n", s.Name, s.ID, s.Category, s.Description)
			for _, name := range s.InputNames() {
				field := s.InputSchema[name]
				req := ""
				if field.Required {
					req = ", required"
				}
				fmt.Fprintf(&b, "  - `%s` %s%s: %s\n", name, field.Type, req, field.Description)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders md for a terminal wrapped at width.
func Markdown(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// TaskList writes one line per task.
func TaskList(w io.Writer, tasks []task.Task) {
	s := NewStyles(w)
	if len(tasks) == 0 {
		_, _ = fmt.Fprintln(w, s.Muted.Render("No tasks."))
		return
	}
	for _, t := range tasks {
		progress := ""
		if n := len(t.Subtasks); n > 0 {
			progress = s.Muted.Render(fmt.Sprintf(" %d/%d", t.CompletedSubtasks(), n))
		}
		_, _ = fmt.Fprintf(w, "%s  %-14s %s%s\n", s.Muted.Render(shortID(t.ID)), s.Status(t.Status), t.Title, progress)
	}
}

func checkbox(s task.Status) string {
	switch s {
	case task.StatusCompleted:
		return "[x]"
	case task.StatusBlocked:
		return "[!]"
	default:
		return "[ ]"
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
