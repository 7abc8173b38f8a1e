package reporting

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// FormatMarkdown renders a side-by-side comparison of estimation reports.
// truth may be nil when the data-generating values are unknown.
func FormatMarkdown(title string, truth *models.TrueParams, reports ...*models.EstimationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	header := []string{"Parameter"}
	if truth != nil {
		header = append(header, "True")
	}
	for _, r := range reports {
		header = append(header, r.Result.Model)
	}

	b.WriteString("## Parameters\n\n")
	b.WriteString("Estimates with robust standard errors in parentheses.\n\n")
	writeRow(&b, header)
	writeRule(&b, len(header))
	for _, name := range parameterNames(reports) {
		row := []string{"`" + name + "`"}
		if truth != nil {
			if v, ok := truth.Lookup(name); ok {
				row = append(row, fmt.Sprintf("%.4f", v))
			} else {
				row = append(row, "")
			}
		}
		for _, r := range reports {
			row = append(row, parameterCell(r.Result, name))
		}
		writeRow(&b, row)
	}

	b.WriteString("\n## Fit\n\n")
	fitHeader := []string{"Measure"}
	for _, r := range reports {
		fitHeader = append(fitHeader, r.Result.Model)
	}
	writeRow(&b, fitHeader)
	writeRule(&b, len(fitHeader))
	measures := []struct {
		label string
		value func(*models.EstimationResult) string
	}{
		{"Observations", func(r *models.EstimationResult) string { return printer.Sprintf("%d", r.SampleSize) }},
		{"Free parameters", func(r *models.EstimationResult) string { return fmt.Sprintf("%d", r.NumParams) }},
		{"Final log-likelihood", func(r *models.EstimationResult) string { return fmt.Sprintf("%.3f", r.FinalLL) }},
		{"Null log-likelihood", func(r *models.EstimationResult) string { return fmt.Sprintf("%.3f", r.NullLL) }},
		{"ρ²", func(r *models.EstimationResult) string { return fmt.Sprintf("%.4f", r.RhoSquare) }},
		{"ρ̄²", func(r *models.EstimationResult) string { return fmt.Sprintf("%.4f", r.RhoBarSquare) }},
		{"AIC", func(r *models.EstimationResult) string { return fmt.Sprintf("%.2f", r.AIC) }},
		{"BIC", func(r *models.EstimationResult) string { return fmt.Sprintf("%.2f", r.BIC) }},
	}
	for _, m := range measures {
		row := []string{m.label}
		for _, r := range reports {
			row = append(row, m.value(r.Result))
		}
		writeRow(&b, row)
	}

	hasVTT := false
	for _, r := range reports {
		hasVTT = hasVTT || r.VTT != nil
	}
	if hasVTT {
		b.WriteString("\n## Value of travel time\n\n")
		vttHeader := []string{"Model", "VTT per hour", "Std.err", "95% CI"}
		if truth != nil {
			vttHeader = append(vttHeader, "Assessment")
		}
		writeRow(&b, vttHeader)
		writeRule(&b, len(vttHeader))
		for _, r := range reports {
			if r.VTT == nil {
				continue
			}
			row := []string{
				r.Result.Model,
				fmt.Sprintf("%.2f", r.VTT.Estimate),
				fmt.Sprintf("%.2f", r.VTT.StdErr),
				fmt.Sprintf("%.2f to %.2f", r.VTT.Lower, r.VTT.Upper),
			}
			if truth != nil {
				row = append(row, InterpretVTT(r.VTT, truth.ValueOfTime()))
			}
			writeRow(&b, row)
		}
	}
	return b.String()
}

func parameterNames(reports []*models.EstimationReport) []string {
	var names []string
	seen := map[string]bool{}
	for _, r := range reports {
		for _, p := range r.Result.Parameters {
			if !seen[p.Name] {
				seen[p.Name] = true
				names = append(names, p.Name)
			}
		}
	}
	return names
}

func parameterCell(res *models.EstimationResult, name string) string {
	p, ok := res.Parameter(name)
	switch {
	case !ok:
		return ""
	case p.Fixed:
		return fmt.Sprintf("%.4f (fixed)", p.Value)
	default:
		return fmt.Sprintf("%.4f (%.4f)", p.Value, p.RobustStdErr)
	}
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
}

func writeRule(b *strings.Builder, n int) {
	b.WriteString("|" + strings.Repeat(" --- |", n) + "\n")
}

// RenderHTML converts markdown to an HTML fragment with GitHub-flavored
// tables.
func RenderHTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("rendering html: %w", err)
	}
	return buf.String(), nil
}
