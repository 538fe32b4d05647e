// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/iwvelando/rebalance-simulator/internal/forecast"
	formatutil "github.com/iwvelando/rebalance-simulator/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable rather than machine-readable table with a
// row every stride months.
func PrettyFormat(w io.Writer, result forecast.Forecast, stride int) {
	p := message.NewPrinter(language.English)
	_, _ = fmt.Fprintf(w, "--- Results for %s ---\n", result.Name)
	_, _ = fmt.Fprintf(w, "Date    | Contributed      | Total Asset\n")
	_, _ = fmt.Fprintf(w, "____    | ________________ | _______________\n")
	for _, row := range result.Rows(stride) {
		_, _ = p.Fprintf(w, "%s | $%.2f | $%.2f\n", row.Label(), row.Contributed, row.Total)
	}

	m := result.Metrics
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = p.Fprintf(w, "Final value:       $%.2f\n", m.FinalValue)
	_, _ = p.Fprintf(w, "Total contributed: $%.2f\n", m.TotalContributed)
	_, _ = p.Fprintf(w, "Growth:            $%.2f (%.2fx)\n", m.Growth, m.GrowthMultiple)
	_, _ = p.Fprintf(w, "Annualized return: %.2f%%\n", m.AnnualizedReturn)

	for _, summary := range m.Optimizations {
		_, _ = fmt.Fprintf(w, "Optimized %s: %s -> %s (target %s, achieved %s, converged %t)\n",
			summary.Field, summary.OriginalDisplay, summary.ValueDisplay,
			formatutil.Currency(summary.Target), formatutil.Currency(summary.Achieved), summary.Converged)
		for _, note := range summary.Notes {
			_, _ = fmt.Fprintf(w, "  note: %s\n", note)
		}
	}
}

// CsvFormat writes the forecast in comma-separated value format.
func CsvFormat(w io.Writer, result forecast.Forecast, stride int) {
	_, _ = io.WriteString(w, CsvString(result, stride))
}

// CsvString returns the forecast in comma-separated value format.
func CsvString(result forecast.Forecast, stride int) string {
	var b strings.Builder
	b.WriteString(`"month","years","date","contributed","total"`)
	b.WriteString("\n")
	for _, row := range result.Rows(stride) {
		fmt.Fprintf(&b, `"%d","%.4f","%s","%.2f","%.2f"`, row.Month, row.Years, row.Date, row.Contributed, row.Total)
		b.WriteString("\n")
	}
	return b.String()
}

// MarkdownString returns a markdown summary and table of the forecast.
func MarkdownString(result forecast.Forecast, stride int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", result.Name)

	in := result.Input
	fmt.Fprintf(&b, "- Principal: %s\n", formatutil.Currency(in.Principal))
	fmt.Fprintf(&b, "- Horizon: %d years\n", in.Years)
	fmt.Fprintf(&b, "- Rebalance every %d months with %s contributed\n", in.RebalanceMonths, formatutil.Currency(in.ContributionPerRebalance))
	b.WriteString("\n| Method | Annual return | Target weight |\n|---|---:|---:|\n")
	for _, asset := range in.Assets {
		fmt.Fprintf(&b, "| %s | %.2f%% | %.2f%% |\n", asset.Name, asset.AnnualReturnPercent, asset.TargetWeightPercent)
	}

	m := result.Metrics
	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- Final value: **%s**\n", formatutil.Currency(m.FinalValue))
	fmt.Fprintf(&b, "- Total contributed: %s\n", formatutil.Currency(m.TotalContributed))
	fmt.Fprintf(&b, "- Growth: %s (%.2fx)\n", formatutil.Currency(m.Growth), m.GrowthMultiple)
	fmt.Fprintf(&b, "- Annualized return: %.2f%%\n", m.AnnualizedReturn)

	b.WriteString("\n## Projection\n\n| Date | Contributed | Total Asset |\n|---|---:|---:|\n")
	for _, row := range result.Rows(stride) {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row.Label(), formatutil.Currency(row.Contributed), formatutil.Currency(row.Total))
	}
	return b.String()
}

// MarkdownFormat renders the markdown summary for a terminal. An empty style
// detects the terminal background; "notty" renders plain text.
func MarkdownFormat(w io.Writer, result forecast.Forecast, stride int, style string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(MarkdownString(result, stride))
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}
