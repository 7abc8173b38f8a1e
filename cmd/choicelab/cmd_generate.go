package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/choicelab/choicelab/internal/dataset"
	"github.com/choicelab/choicelab/internal/generator"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/projectconfig"
)

var printer = message.NewPrinter(language.English)

// generateFlags are the dataset knobs shared by generate and demo.
type generateFlags struct {
	respondents int
	seed        int64
	out         string
}

func (f *generateFlags) register(cmd *cobra.Command, outUsage string) {
	cmd.Flags().IntVarP(&f.respondents, "respondents", "n", 0, "Number of simulated respondents (default from config)")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Random seed (default from config)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", outUsage)
}

// apply overlays explicitly set flags onto the configured values.
func (f *generateFlags) apply(cmd *cobra.Command, cfg *projectconfig.ProjectConfig) (respondents int, seed int64) {
	respondents, seed = cfg.Generate.Respondents, cfg.SeedValue()
	if cmd.Flags().Changed("respondents") {
		respondents = f.respondents
	}
	if cmd.Flags().Changed("seed") {
		seed = f.seed
	}
	return respondents, seed
}

func newGenerateCommand(root *rootOptions) *cobra.Command {
	flags := &generateFlags{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic choice dataset",
		Long: `Generate a synthetic binary choice dataset.

Every respondent answers each configured task once. Choices follow a random
utility model with Gumbel errors and the configured true parameters, so a
given seed always produces the same file. The output format follows the file
extension: .csv, .csv.gz, .csv.zst or .xlsx.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.config()
			if err != nil {
				return err
			}
			respondents, seed := flags.apply(cmd, cfg)
			out := cfg.Output.Data
			if flags.out != "" {
				out = flags.out
			}

			obs, err := generateDataset(cfg, respondents, seed)
			if err != nil {
				return err
			}
			if err := dataset.Save(out, obs); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printer.Fprintf(w, "Wrote %d observations (%d respondents x %d tasks, seed %d) to %s\n",
				len(obs), respondents, len(cfg.Generate.Tasks), seed, out)
			writeShares(cmd, obs)
			return nil
		},
	}
	flags.register(cmd, "Output file (default from config)")
	return cmd
}

// generateDataset draws one dataset from the configured tasks and truth.
func generateDataset(cfg *projectconfig.ProjectConfig, respondents int, seed int64) ([]models.Observation, error) {
	obs, err := generator.GenerateWithOptions(cfg.Generate.Tasks, respondents, cfg.TruthValue(),
		generator.NewSource(seed), generator.Options{Logger: slog.Default()})
	if err != nil {
		return nil, fmt.Errorf("generating data: %w", err)
	}
	return obs, nil
}

func writeShares(cmd *cobra.Command, obs []models.Observation) {
	shares := generator.Shares(obs)
	w := cmd.OutOrStdout()
	printer.Fprintf(w, "Choice shares: alternative 1 %.1f%%, alternative 2 %.1f%%\n",
		100*shares[1], 100*shares[2])
	unresolved := 0
	for _, o := range obs {
		if !o.Resolved() {
			unresolved++
		}
	}
	if unresolved > 0 {
		printer.Fprintf(w, "Unresolved (tied) observations: %d\n", unresolved)
	}
}
