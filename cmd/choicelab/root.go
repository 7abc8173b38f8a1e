package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/choicelab/choicelab/internal/estimation"
	"github.com/choicelab/choicelab/internal/projectconfig"
)

var version = "dev"

// rootOptions carries persistent flags and the lazily loaded project config.
type rootOptions struct {
	configDir string
	debug     bool

	cfg *projectconfig.ProjectConfig
}

// config loads .choicelab.yaml from --config, or from the working directory
// upwards, once per command invocation.
func (o *rootOptions) config() (*projectconfig.ProjectConfig, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	dir := o.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded project config", "dir", dir, "respondents", cfg.Generate.Respondents, "seed", cfg.SeedValue())
	o.cfg = cfg
	return cfg, nil
}

// estimator builds an estimator whose Newton optimizer honours the
// configured iteration cap and gradient threshold.
func (o *rootOptions) estimator(cfg *projectconfig.ProjectConfig) *estimation.Estimator {
	logger := slog.Default()
	opt := estimation.NewNewtonOptimizer(logger)
	opt.MaxIterations = cfg.Estimate.MaxIterations
	opt.GradientThreshold = cfg.Estimate.GradientThreshold
	return estimation.New(opt, logger)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "choicelab",
		Short: "choicelab - synthetic discrete-choice data and logit estimation",
		Long: `choicelab is a command-line laboratory for discrete-choice estimation.

It generates binary choice data from a known random-utility process,
recovers the parameters with multinomial logit maximum likelihood, and
shows how a misspecified utility biases the implied value of travel time.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.configDir, "config", "", "Directory to search for .choicelab.yaml (default: working directory)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if opts.debug {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newGenerateCommand(opts))
	cmd.AddCommand(newEstimateCommand(opts))
	cmd.AddCommand(newDemoCommand(opts))
	cmd.AddCommand(newSimulateCommand(opts))
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	return rootCmd.ExecuteContext(ctx)
}
