// Package render turns agent messages and tasks into terminal output.
package render

import (
	"io"

	"github.com/ankitson/clankerhub/internal/task"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorMuted     = "#888888"
	colorAccent    = "#6B8EEF"
	colorSuccess   = "#50C878"
	colorFailure   = "#FF6B6B"
	colorQuestion  = "#FFD700"
	colorWaiting   = "#FFA500"
	colorHighlight = "#DDA0DD"
)

// Styles holds the lipgloss styles bound to one output.
type Styles struct {
	Muted    lipgloss.Style
	Title    lipgloss.Style
	Success  lipgloss.Style
	Failure  lipgloss.Style
	Question lipgloss.Style
	Plan     lipgloss.Style
	status   map[task.Status]lipgloss.Style
}

// NewStyles creates styles whose color profile follows w. Writers that are
// not terminals get plain text.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	color := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Styles{
		Muted:    color(colorMuted),
		Title:    color(colorAccent).Bold(true),
		Success:  color(colorSuccess).Bold(true),
		Failure:  color(colorFailure).Bold(true),
		Question: color(colorQuestion),
		Plan:     color(colorHighlight).Bold(true),
		status: map[task.Status]lipgloss.Style{
			task.StatusPending:       color(colorMuted),
			task.StatusResearching:   color(colorAccent),
			task.StatusPlanning:      color(colorAccent),
			task.StatusAwaitingInput: color(colorWaiting).Bold(true),
			task.StatusInProgress:    color(colorAccent).Bold(true),
			task.StatusBlocked:       color(colorFailure),
			task.StatusCompleted:     color(colorSuccess),
		},
	}
}

// Status renders a status with its color.
func (s Styles) Status(st task.Status) string {
	style, ok := s.status[st]
	if !ok {
		return string(st)
	}
	return style.Render(string(st))
}
