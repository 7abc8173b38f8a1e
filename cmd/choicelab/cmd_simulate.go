package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/choicelab/choicelab/internal/simulation"
	"github.com/choicelab/choicelab/internal/spinner"
	"github.com/choicelab/choicelab/internal/utility"
)

func newSimulateCommand(root *rootOptions) *cobra.Command {
	var (
		replications int
		workers      int
		respondents  int
		seed         int64
		modelRefs    []string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a Monte Carlo bias study",
		Long: `Repeat the generate/estimate cycle on many independent datasets.

Replication r uses seed SEED+r, so results do not depend on the number of
workers. For every model the study reports mean estimates, bias, empirical
standard deviation, mean robust standard error, RMSE, 95% interval coverage
and the distribution of the implied value of travel time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			if err := checkFormat(format, "table", "json"); err != nil {
				return err
			}

			simCfg := simulation.Config{
				Replications: cfg.Simulate.Replications,
				Respondents:  cfg.Generate.Respondents,
				Seed:         cfg.SeedValue(),
				Truth:        cfg.TruthValue(),
				Tasks:        cfg.Generate.Tasks,
				Workers:      cfg.Simulate.Workers,
			}
			if cmd.Flags().Changed("replications") {
				simCfg.Replications = replications
			}
			if cmd.Flags().Changed("workers") {
				simCfg.Workers = workers
			}
			if cmd.Flags().Changed("respondents") {
				simCfg.Respondents = respondents
			}
			if cmd.Flags().Changed("seed") {
				simCfg.Seed = seed
			}

			specs := make([]*utility.Specification, 0, len(modelRefs))
			for _, ref := range modelRefs {
				spec, err := utility.Resolve(ref)
				if err != nil {
					return err
				}
				specs = append(specs, spec)
			}

			runner := simulation.NewRunner(root.estimator(cfg), slog.Default())
			var failed atomic.Int64
			runner.OnProgress(func(e simulation.ProgressEvent) {
				if e.EventType == simulation.EventEstimationFailed {
					failed.Add(1)
					slog.Debug("replication failed", "replication", e.Replication, "model", e.Model, "error", e.Err)
				}
			})
			if f, ok := cmd.ErrOrStderr().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				sp := spinner.Start(f, fmt.Sprintf("replication 0/%d", simCfg.Replications))
				runner.OnProgress(func(e simulation.ProgressEvent) {
					if e.EventType == simulation.EventReplicationComplete {
						sp.SetMessage(printer.Sprintf("replication %d/%d", e.Completed, e.Total))
					}
				})
				defer sp.Stop()
			}

			summary, err := runner.Run(cmd.Context(), simCfg, specs...)
			if err != nil {
				return err
			}
			if n := failed.Load(); n > 0 {
				slog.Warn("some estimations failed", "count", n)
			}
			return writeSimulation(cmd.OutOrStdout(), format, summary)
		},
	}

	cmd.Flags().IntVarP(&replications, "replications", "r", 0, "Number of replications (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent replications (default from config)")
	cmd.Flags().IntVarP(&respondents, "respondents", "n", 0, "Respondents per replication (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base random seed (default from config)")
	cmd.Flags().StringArrayVarP(&modelRefs, "model", "m", []string{utility.ModelWithASC, utility.ModelWithoutASC}, "Built-in model name or model file (can be repeated)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
