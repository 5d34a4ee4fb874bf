package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ankitson/clankerhub/internal/event"
)

// Printer writes agent messages to a terminal as they are published.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
	// Verbose also prints task updates.
	Verbose bool
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, styles: NewStyles(w)}
}

// Handle is an event.Handler.
func (p *Printer) Handle(m event.Message) {
	line := p.format(m)
	if line == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.w, line)
}

func (p *Printer) format(m event.Message) string {
	s := p.styles
	switch m := m.(type) {
	case event.TaskAdded:
		return s.Title.Render("+ "+m.Task.Title) + " " + s.Muted.Render(shortID(m.Task.ID))
	case event.TaskUpdated:
		if !p.Verbose {
			return ""
		}
		return s.Muted.Render(event.Describe(m))
	case event.StatusChanged:
		return fmt.Sprintf("  %s %s -> %s", s.Muted.Render("status"), s.Status(m.From), s.Status(m.To))
	case event.ResearchComplete:
		var b strings.Builder
		b.WriteString(s.Success.Render("  research") + " " + m.Summary)
		for _, f := range m.Findings {
			b.WriteString("\n    - " + f.Summary)
		}
		return b.String()
	case event.PlanReady:
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s", s.Plan.Render("  plan"), m.Plan.Approach)
		for i, st := range m.Plan.ProposedSubtasks {
			fmt.Fprintf(&b, "\n    %d. %s", i+1, st.Title)
			if st.Automatable && st.RequiredSkill != "" {
				b.WriteString(" " + s.Muted.Render("["+st.RequiredSkill+"]"))
			}
		}
		if m.Plan.EstimatedDuration != "" {
			b.WriteString("\n    " + s.Muted.Render("estimated "+m.Plan.EstimatedDuration))
		}
		return b.String()
	case event.QuestionRaised:
		return s.Question.Render("  ? "+m.Question.Question) + " " + s.Muted.Render(shortID(m.Question.ID))
	case event.SkillExecuted:
		if m.Result.Success {
			return s.Success.Render("  ok") + " " + m.SkillID
		}
		return s.Failure.Render("  failed") + " " + m.SkillID + ": " + m.Result.Error
	case event.ProgressUpdate:
		return s.Muted.Render("  " + m.Message)
	case event.Error:
		return s.Failure.Render("  error") + " " + m.Message
	default:
		return event.Describe(m)
	}
}

// shortID trims a uuid to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
