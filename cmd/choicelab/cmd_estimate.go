package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/choicelab/choicelab/internal/dataset"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/utility"
)

func newEstimateCommand(root *rootOptions) *cobra.Command {
	var (
		dataPath  string
		modelRefs []string
		format    string
		rows      string
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a multinomial logit model on a dataset",
		Long: `Estimate one or more multinomial logit models by maximum likelihood.

--model accepts a built-in model (with-asc, without-asc) or a path to a
YAML model file, and can be repeated to compare several models on the same
data. Results include robust standard errors, fit statistics and, when the
model has b_time and b_cost, the implied value of travel time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if dataPath == "" {
				dataPath = cfg.Output.Data
			}
			if format == "" {
				format = cfg.Estimate.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}

			specs := make([]*utility.Specification, 0, len(modelRefs))
			for _, ref := range modelRefs {
				spec, err := utility.Resolve(ref)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			obs, err := loadObservations(dataPath, rows)
			if err != nil {
				return err
			}

			est := root.estimator(cfg)
			reports := make([]*models.EstimationReport, 0, len(specs))
			for _, spec := range specs {
				res, err := est.Estimate(cmd.Context(), spec, obs)
				if err != nil {
					return fmt.Errorf("estimating %s: %w", spec.Name, err)
				}
				reports = append(reports, newReport(res, dataPath))
			}
			return writeReports(cmd.OutOrStdout(), format, "Estimation results", nil, reports)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "Dataset to estimate on (default from config)")
	cmd.Flags().StringArrayVarP(&modelRefs, "model", "m", []string{utility.ModelWithASC}, "Built-in model name or model file (can be repeated)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, markdown or html (default from config)")
	cmd.Flags().StringVar(&rows, "rows", "", "Only use data rows START:END (1-based, inclusive)")

	return cmd
}

// loadObservations reads a dataset, optionally restricted to a row range.
func loadObservations(path, rows string) ([]models.Observation, error) {
	if rows == "" {
		return dataset.Load(path)
	}
	start, end, err := parseRowRange(rows)
	if err != nil {
		return nil, err
	}
	return dataset.LoadRange(path, start, end)
}

// parseRowRange parses "START:END".
func parseRowRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --rows %q: want START:END", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --rows start %q: %w", lo, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid --rows end %q: %w", hi, err)
	}
	return start, end, nil
}
