package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type styles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	Assistant lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
}

// stdoutIsTerminal reports whether colour output makes sense.
func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{
			Title:     plain,
			Prompt:    plain,
			Assistant: plain,
			Muted:     plain,
			Success:   plain,
			Warning:   plain,
			Error:     plain,
		}
	}
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E3A1")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}
