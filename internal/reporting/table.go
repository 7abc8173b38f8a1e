package reporting

import (
	"strings"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// table lays out rows in columns padded to their display width. The first
// column is left-aligned, the rest right-aligned.
type table struct {
	rows [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(b *strings.Builder, indent string) {
	var widths []int
	for _, row := range t.rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range t.rows {
		b.WriteString(indent)
		for i, cell := range row {
			if i == 0 {
				b.WriteString(padRight(cell, widths[i]))
				continue
			}
			b.WriteString("  ")
			b.WriteString(padLeft(cell, widths[i]))
		}
		b.WriteString("\n")
	}
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

// FormatEstimationTable renders one estimation result as aligned text. vtt
// may be nil.
func FormatEstimationTable(res *models.EstimationResult, vtt *models.ValueOfTime) string {
	var b strings.Builder

	b.WriteString(printer.Sprintf("Model: %s (%d observations, %d free parameters)\n\n",
		res.Model, res.SampleSize, res.NumParams))

	params := &table{}
	params.add("Parameter", "Estimate", "Std.err", "Rob.std.err", "Rob.t", "p-value")
	for _, p := range res.Parameters {
		if p.Fixed {
			params.add(p.Name, printer.Sprintf("%.4f", p.Value), "fixed", "", "", "")
			continue
		}
		params.add(p.Name,
			printer.Sprintf("%.4f", p.Value),
			printer.Sprintf("%.4f", p.StdErr),
			printer.Sprintf("%.4f", p.RobustStdErr),
			printer.Sprintf("%.2f", p.TStat),
			printer.Sprintf("%.4f", p.PValue),
		)
	}
	params.write(&b, "  ")

	b.WriteString("\n")
	fit := &table{}
	fit.add("Init log-likelihood", printer.Sprintf("%.3f", res.InitLL))
	fit.add("Final log-likelihood", printer.Sprintf("%.3f", res.FinalLL))
	fit.add("Null log-likelihood", printer.Sprintf("%.3f", res.NullLL))
	fit.add("ρ²", printer.Sprintf("%.4f", res.RhoSquare))
	fit.add("ρ̄²", printer.Sprintf("%.4f", res.RhoBarSquare))
	fit.add("AIC", printer.Sprintf("%.2f", res.AIC))
	fit.add("BIC", printer.Sprintf("%.2f", res.BIC))
	fit.add("Iterations", printer.Sprintf("%d (%s)", res.Iterations, res.Status))
	fit.write(&b, "  ")
	b.WriteString("  " + InterpretRhoSquare(res.RhoSquare) + "\n")

	if vtt != nil {
		b.WriteString(printer.Sprintf("\n  Value of time: %.2f per hour (std.err %.2f, 95%% CI %.2f to %.2f)\n",
			vtt.Estimate, vtt.StdErr, vtt.Lower, vtt.Upper))
	}
	return b.String()
}

// FormatSimulationTable renders a Monte Carlo summary as aligned text.
func FormatSimulationTable(s *models.SimulationSummary) string {
	var b strings.Builder

	b.WriteString(printer.Sprintf("Monte Carlo study: %d replications of %d respondents (seed %d)\n",
		s.Replications, s.Respondents, s.Seed))
	b.WriteString(printer.Sprintf("True value of time: %.2f per hour\n", s.TrueVTT))

	for _, m := range s.Models {
		b.WriteString(printer.Sprintf("\nModel: %s (%d converged, %d failed)\n", m.Model, m.Replications, m.Failed))
		if m.Replications == 0 {
			continue
		}
		t := &table{}
		t.add("Parameter", "True", "Mean", "Bias", "Std.dev", "Mean rob.se", "RMSE", "Coverage")
		for _, p := range m.Parameters {
			truth, bias, rmse, coverage := "-", "-", "-", "-"
			if p.HasTrue {
				truth = printer.Sprintf("%.4f", p.True)
				bias = printer.Sprintf("%.4f", p.Bias)
				rmse = printer.Sprintf("%.4f", p.RMSE)
				coverage = printer.Sprintf("%.0f%%", 100*p.Coverage)
			}
			t.add(p.Name, truth,
				printer.Sprintf("%.4f", p.Mean),
				bias,
				printer.Sprintf("%.4f", p.StdDev),
				printer.Sprintf("%.4f", p.MeanStdErr),
				rmse, coverage)
		}
		t.write(&b, "  ")
		b.WriteString(printer.Sprintf("  Mean final log-likelihood: %.3f\n", m.MeanFinalLL))
		b.WriteString(printer.Sprintf("  Value of time: mean %.2f (95%% CI of mean %.2f to %.2f), 95%% of replications in %.2f to %.2f\n",
			m.VTTMean, m.VTTMeanLower, m.VTTMeanUpper, m.VTTLower, m.VTTUpper))
		for _, p := range m.Parameters {
			if p.HasTrue {
				b.WriteString("  " + p.Name + ": " + InterpretBias(p) + " " + InterpretCoverage(p.Coverage) + "\n")
			}
		}
	}
	return b.String()
}
