package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/choicelab/choicelab/internal/projectconfig"
)

// RunInitWizard runs an interactive huh form that collects the project
// settings written by `choicelab init`. Fields start from base, which is
// not modified.
func RunInitWizard(in io.Reader, out io.Writer, base *projectconfig.ProjectConfig) (*projectconfig.ProjectConfig, error) {
	var (
		respondents  = strconv.Itoa(base.Generate.Respondents)
		seed         = strconv.FormatInt(base.SeedValue(), 10)
		replications = strconv.Itoa(base.Simulate.Replications)
		workers      = strconv.Itoa(base.Simulate.Workers)
		dataPath     = base.Output.Data
		format       = base.Estimate.Format
	)

	options := make([]huh.Option[string], 0, len(projectconfig.Formats))
	for _, f := range projectconfig.Formats {
		options = append(options, huh.NewOption(f, f))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Respondents").
				Description("Simulated respondents per dataset (each answers every task)").
				Value(&respondents).
				Validate(validatePositive),
			huh.NewInput().
				Title("Seed").
				Description("Random seed for reproducible datasets").
				Value(&seed).
				Validate(validateSeed),
			huh.NewInput().
				Title("Replications").
				Description("Monte Carlo replications for `choicelab simulate`").
				Value(&replications).
				Validate(validatePositive),
			huh.NewInput().
				Title("Workers").
				Description("Replications estimated in parallel").
				Value(&workers).
				Validate(validatePositive),
			huh.NewInput().
				Title("Dataset path").
				Description("Where generated data is written (.csv, .csv.gz, .csv.zst, .xlsx)").
				Value(&dataPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("dataset path is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Report format").
				Options(options...).
				Value(&format),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	cfg := *base
	cfg.Generate.Respondents, _ = strconv.Atoi(strings.TrimSpace(respondents))
	s, _ := strconv.ParseInt(strings.TrimSpace(seed), 10, 64)
	cfg.Generate.Seed = &s
	cfg.Simulate.Replications, _ = strconv.Atoi(strings.TrimSpace(replications))
	cfg.Simulate.Workers, _ = strconv.Atoi(strings.TrimSpace(workers))
	cfg.Output.Data = strings.TrimSpace(dataPath)
	cfg.Estimate.Format = format
	return &cfg, nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not a whole number", s)
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateSeed(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("%q is not a valid seed", s)
	}
	return nil
}
