package report

import (
	"fmt"
	"sort"
	"strings"
)

// CLIFormatter renders a Report for terminal display.
type CLIFormatter struct {
	styles *Styles
}

// NewCLIFormatter creates a formatter with default styles.
func NewCLIFormatter() *CLIFormatter {
	return &CLIFormatter{styles: NewStyles()}
}

// FormatSummary renders the whole report as a styled multi-section summary.
func (f *CLIFormatter) FormatSummary(rep *Report) string {
	if rep == nil {
		return f.styles.Error.Render("No report available")
	}

	sections := []string{
		f.formatHeader(rep),
		f.formatPairwise(rep),
	}

	if len(rep.Monthly) > 0 {
		sections = append(sections, f.formatMonthly(rep))
	}
	sections = append(sections, f.formatMissing(rep))
	if len(rep.Recommendations) > 0 {
		sections = append(sections, f.formatRecommendations(rep))
	}

	return strings.Join(sections, "\n\n")
}

func (f *CLIFormatter) formatHeader(rep *Report) string {
	var lines []string
	lines = append(lines, f.styles.Title.Render("Reconciliation Report"))

	names := append([]string(nil), rep.Sources...)
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %d records", name, rep.Totals[name]))
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatPairwise(rep *Report) string {
	var lines []string
	lines = append(lines, f.styles.Subtitle.Render("Pairwise matching"))

	for _, p := range rep.Pairwise {
		line := fmt.Sprintf("  %s vs %s: %d matched (%d high, %d medium), %d only in %s, %d only in %s",
			p.SourceB, p.SourceA, p.Matched, p.HighTier, p.MediumTier,
			p.OnlyInB, p.SourceB, p.OnlyInA, p.SourceA)
		if p.OnlyInA == 0 && p.OnlyInB == 0 {
			line = f.styles.Success.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatMonthly(rep *Report) string {
	var lines []string
	lines = append(lines, f.styles.Subtitle.Render(
		fmt.Sprintf("Months with discrepancies: %d", len(rep.Monthly))))

	for _, m := range rep.Monthly {
		names := make([]string, 0, len(m.Counts))
		for name := range m.Counts {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%d", name, m.Counts[name]))
		}
		lines = append(lines, f.styles.Warning.Render(
			fmt.Sprintf("  %s: %s", m.Month, strings.Join(parts, ", "))))
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatMissing(rep *Report) string {
	var lines []string
	lines = append(lines, f.styles.Subtitle.Render("Missing records"))

	for _, set := range rep.Missing {
		line := fmt.Sprintf("  in %s but not in %s: %d", set.From, set.NotIn, set.Count())
		if set.Count() == 0 {
			line = f.styles.Subtle.Render(line)
		} else {
			line = f.styles.Warning.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (f *CLIFormatter) formatRecommendations(rep *Report) string {
	var lines []string
	lines = append(lines, f.styles.Subtitle.Render("Recommendations"))

	for i, rec := range rep.Recommendations {
		badge := f.styles.severityStyle(rec.Severity).Render(string(rec.Severity))
		lines = append(lines, fmt.Sprintf("  %d. %s %s", i+1, badge, rec.Issue))
		lines = append(lines, f.styles.Subtle.Render("     "+rec.Action))
		for _, ex := range rec.Examples {
			lines = append(lines, f.styles.Subtle.Render(fmt.Sprintf("       %s  %-30s %10.2f %s",
				ex.DateString(), truncate(ex.Description, 30), ex.Amount, ex.Currency)))
		}
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
