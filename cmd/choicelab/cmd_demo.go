package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/choicelab/choicelab/internal/dataset"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/reporting"
	"github.com/choicelab/choicelab/internal/utility"
)

func newDemoCommand(root *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	var format string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the misspecification demonstration end to end",
		Long: `Run three scenarios on one synthetic dataset:

  A  generate choices from the true process (with a constant on alternative 2)
  B  estimate the correctly specified model (with-asc)
  C  estimate the misspecified model that drops the constant (without-asc)

and compare the recovered parameters, fit and value of travel time with the
truth. Scenario C fits worse and distorts the value of time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if format == "" {
				format = cfg.Estimate.Format
			}
			if err := checkFormat(format); err != nil {
				return err
			}
			respondents, seed := flags.apply(cmd, cfg)
			truth := cfg.TruthValue()
			w := cmd.OutOrStdout()
			human := format == "table"

			// Scenario A
			obs, err := generateDataset(cfg, respondents, seed)
			if err != nil {
				return err
			}
			if flags.out != "" {
				if err := dataset.Save(flags.out, obs); err != nil {
					return err
				}
			}
			if human {
				printer.Fprintf(w, "Scenario A: %d observations from %d respondents (seed %d), true %s\n",
					len(obs), respondents, seed, truth)
				if flags.out != "" {
					fmt.Fprintf(w, "  dataset written to %s\n", flags.out)
				}
				writeShares(cmd, obs)
				fmt.Fprintln(w)
			}

			// Scenarios B and C
			est := root.estimator(cfg)
			reports := make([]*models.EstimationReport, 0, 2)
			for _, spec := range []*utility.Specification{utility.WithASC(), utility.WithoutASC()} {
				res, err := est.Estimate(cmd.Context(), spec, obs)
				if err != nil {
					return fmt.Errorf("estimating %s: %w", spec.Name, err)
				}
				reports = append(reports, newReport(res, flags.out))
			}

			if err := writeReports(w, format, "Misspecification demo", &truth, reports); err != nil {
				return err
			}
			if human {
				writeComparison(w, truth, reports[0], reports[1])
			}
			return nil
		},
	}

	flags.register(cmd, "Also write the Scenario A dataset to this file")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: table, json, markdown or html (default from config)")
	return cmd
}

// writeComparison summarizes what dropping the constant did.
func writeComparison(w io.Writer, truth models.TrueParams, correct, misspecified *models.EstimationReport) {
	b, c := correct.Result, misspecified.Result
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Comparison")
	printer.Fprintf(w, "  Log-likelihood: %s %.3f vs %s %.3f (difference %.3f)\n",
		b.Model, b.FinalLL, c.Model, c.FinalLL, b.FinalLL-c.FinalLL)
	printer.Fprintf(w, "  AIC: %s %.2f vs %s %.2f\n", b.Model, b.AIC, c.Model, c.AIC)
	printer.Fprintf(w, "  True value of time: %.2f per hour\n", truth.ValueOfTime())
	for _, r := range []*models.EstimationReport{correct, misspecified} {
		fmt.Fprintf(w, "  %s: %s\n", r.Result.Model, reporting.InterpretVTT(r.VTT, truth.ValueOfTime()))
	}
}
