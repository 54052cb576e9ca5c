package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Colour palette for terminal output.
var (
	colourPrimary = lipgloss.Color("#7C3AED") // Purple
	colourMuted   = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess = lipgloss.Color("#A6E3A1") // Green
	colourWarning = lipgloss.Color("#F9E2AF") // Yellow
	colourError   = lipgloss.Color("#F38BA8") // Red
)

// printer styles output when it goes to a terminal and writes plain
// text otherwise.
type printer struct {
	styled bool

	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		styled:  isTerminal(w),
		title:   lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		label:   lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(colourMuted),
		success: lipgloss.NewStyle().Foreground(colourSuccess),
		warning: lipgloss.NewStyle().Foreground(colourWarning),
		failure: lipgloss.NewStyle().Foreground(colourError),
	}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) Title(s string) string   { return p.render(p.title, s) }
func (p *printer) Label(s string) string   { return p.render(p.label, s) }
func (p *printer) Muted(s string) string   { return p.render(p.muted, s) }
func (p *printer) Success(s string) string { return p.render(p.success, s) }
func (p *printer) Warning(s string) string { return p.render(p.warning, s) }
func (p *printer) Failure(s string) string { return p.render(p.failure, s) }

// Score colours a similarity score by strength.
func (p *printer) Score(score float64, s string) string {
	switch {
	case score >= 0.8:
		return p.Success(s)
	case score >= 0.5:
		return p.Warning(s)
	default:
		return p.Failure(s)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
