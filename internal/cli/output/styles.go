package output

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/tablook/pkg/core"
)

// Styles contains the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	ID      lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Hint    lipgloss.Style
}

// Palette colours.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorAccent  = lipgloss.Color("#06B6D4")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

// newStyles builds styles bound to a lipgloss renderer. Without a TTY the
// renderer uses the ASCII profile so no escape codes are written.
func newStyles(lr *lipgloss.Renderer, isTTY bool) *Styles {
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(colorPrimary),
		Header2: lr.NewStyle().Bold(true).Foreground(colorAccent),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(colorMuted),
		ID:      lr.NewStyle().Foreground(colorAccent),
		Success: lr.NewStyle().Foreground(colorSuccess),
		Warning: lr.NewStyle().Foreground(colorWarning),
		Error:   lr.NewStyle().Foreground(colorError).Bold(true),
		Info:    lr.NewStyle().Foreground(colorAccent),
		Hint:    lr.NewStyle().Foreground(colorMuted),
	}
}

// Severity returns the style for a finding severity.
func (s *Styles) Severity(sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return s.Error
	case core.SeverityWarning:
		return s.Warning
	case core.SeverityInfo:
		return s.Info
	default:
		return s.Hint
	}
}
