package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ledgerlab/reconcile/internal/cli"
)

// Styles contains styling definitions for report formatting.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style

	Box      lipgloss.Style
	Critical lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
}

// NewStyles creates a Styles instance with the default palette.
func NewStyles() *Styles {
	return &Styles{
		Title:    cli.TitleStyle,
		Subtitle: cli.SubtitleStyle,
		Success:  cli.SuccessStyle,
		Warning:  cli.WarningStyle,
		Error:    cli.ErrorStyle,
		Info:     cli.InfoStyle,
		Subtle:   cli.SubtleStyle,
		Normal:   lipgloss.NewStyle(),

		Box: cli.BoxStyle,

		Critical: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFF")).
			Background(cli.ErrorColor).
			Padding(0, 1),
		High: lipgloss.NewStyle().
			Bold(true).
			Foreground(cli.ErrorColor),
		Medium: lipgloss.NewStyle().
			Foreground(cli.WarningColor),
		Low: lipgloss.NewStyle().
			Foreground(cli.SubtleColor),
	}
}

// severityStyle picks the style for a recommendation severity.
func (s *Styles) severityStyle(sev Severity) lipgloss.Style {
	switch sev {
	case SeverityCritical:
		return s.Critical
	case SeverityHigh:
		return s.High
	case SeverityMedium:
		return s.Medium
	default:
		return s.Low
	}
}
