package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/choicelab/choicelab/internal/estimation"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/projectconfig"
	"github.com/choicelab/choicelab/internal/reporting"
	"github.com/choicelab/choicelab/internal/utility"
)

// checkFormat rejects report formats outside allowed.
func checkFormat(format string, allowed ...string) error {
	if len(allowed) == 0 {
		allowed = projectconfig.Formats
	}
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("unsupported format %q: must be one of %s", format, strings.Join(allowed, ", "))
	}
	return nil
}

// newReport wraps a result with a run id, a timestamp and, when the model
// carries both coefficients, the implied value of travel time.
func newReport(res *models.EstimationResult, dataPath string) *models.EstimationReport {
	report := &models.EstimationReport{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		DataPath:  dataPath,
		Result:    res,
	}
	vtt, err := estimation.VTT(res, utility.ParamBetaTime, utility.ParamBetaCost)
	if err != nil {
		slog.Debug("value of time not reported", "model", res.Model, "error", err)
	} else {
		report.VTT = vtt
	}
	return report
}

// writeReports renders estimation reports in the requested format. truth is
// nil when the data-generating values are unknown.
func writeReports(w io.Writer, format, title string, truth *models.TrueParams, reports []*models.EstimationReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	case "markdown":
		_, err := io.WriteString(w, reporting.FormatMarkdown(title, truth, reports...))
		return err
	case "html":
		html, err := reporting.RenderHTML(reporting.FormatMarkdown(title, truth, reports...))
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, html)
		return err
	default:
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "Run %s (%s)\n", r.RunID, r.Timestamp.Format(time.RFC3339))
			fmt.Fprint(w, reporting.FormatEstimationTable(r.Result, r.VTT))
			if truth != nil && r.VTT != nil {
				fmt.Fprintf(w, "  %s\n", reporting.InterpretVTT(r.VTT, truth.ValueOfTime()))
			}
		}
		return nil
	}
}

// writeSimulation renders a Monte Carlo summary as a table or JSON.
func writeSimulation(w io.Writer, format string, summary *models.SimulationSummary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	fmt.Fprint(w, reporting.FormatSimulationTable(summary))
	return nil
}
