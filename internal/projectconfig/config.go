// Package projectconfig provides the ProjectConfig struct and loader for
// .choicelab.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/choicelab/choicelab/internal/models"
)

// FileName is the project configuration file searched for by Load.
const FileName = ".choicelab.yaml"

// EnvPrefix prefixes every environment override, e.g. CHOICELAB_SEED.
const EnvPrefix = "CHOICELAB"

// Default values for project configuration. These are the single source of
// truth: New() references them and no other code should duplicate them.
const (
	DefaultRespondents = 200
	DefaultSeed        = 42

	DefaultMaxIterations     = 200
	DefaultGradientThreshold = 1e-6
	DefaultFormat            = "table"

	DefaultReplications = 100
	DefaultWorkers      = 4

	DefaultDataPath = "choices.csv"
)

// maxSearchDepth bounds how many parent directories Load inspects.
const maxSearchDepth = 10

// Formats lists the report formats accepted by estimate.format.
var Formats = []string{"table", "json", "markdown", "html"}

// GenerateConfig holds synthetic data generation settings.
type GenerateConfig struct {
	Respondents int                `yaml:"respondents,omitempty" validate:"gt=0"`
	Seed        *int64             `yaml:"seed,omitempty"`
	Truth       *models.TrueParams `yaml:"truth,omitempty"`
	Tasks       []models.Task      `yaml:"tasks,omitempty" validate:"omitempty,dive"`
}

// EstimateConfig holds optimizer and report settings.
type EstimateConfig struct {
	MaxIterations     int     `yaml:"max_iterations,omitempty" validate:"gt=0"`
	GradientThreshold float64 `yaml:"gradient_threshold,omitempty" validate:"gt=0"`
	Format            string  `yaml:"format,omitempty" validate:"oneof=table json markdown html"`
}

// SimulateConfig holds Monte Carlo settings.
type SimulateConfig struct {
	Replications int `yaml:"replications,omitempty" validate:"gt=0"`
	Workers      int `yaml:"workers,omitempty" validate:"gt=0,lte=256"`
}

// OutputConfig holds where datasets are written.
type OutputConfig struct {
	Data string `yaml:"data,omitempty" validate:"required"`
}

// ProjectConfig is the top-level configuration loaded from .choicelab.yaml.
type ProjectConfig struct {
	Generate GenerateConfig `yaml:"generate,omitempty"`
	Estimate EstimateConfig `yaml:"estimate,omitempty"`
	Simulate SimulateConfig `yaml:"simulate,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	truth := models.DefaultTrueParams()
	return &ProjectConfig{
		Generate: GenerateConfig{
			Respondents: DefaultRespondents,
			Seed:        int64Ptr(DefaultSeed),
			Truth:       &truth,
			Tasks:       models.DefaultTasks(),
		},
		Estimate: EstimateConfig{
			MaxIterations:     DefaultMaxIterations,
			GradientThreshold: DefaultGradientThreshold,
			Format:            DefaultFormat,
		},
		Simulate: SimulateConfig{
			Replications: DefaultReplications,
			Workers:      DefaultWorkers,
		},
		Output: OutputConfig{
			Data: DefaultDataPath,
		},
	}
}

// SeedValue returns the configured seed, or DefaultSeed when unset.
func (c *ProjectConfig) SeedValue() int64 {
	if c.Generate.Seed == nil {
		return DefaultSeed
	}
	return *c.Generate.Seed
}

// TruthValue returns the configured true parameters, or the defaults when unset.
func (c *ProjectConfig) TruthValue() models.TrueParams {
	if c.Generate.Truth == nil {
		return models.DefaultTrueParams()
	}
	return *c.Generate.Truth
}

// Load finds .choicelab.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. Environment
// overrides are applied last and the result is validated.
// If no config file is found, the defaults (plus env) are returned.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	switch {
	case err == nil:
		var fileCfg ProjectConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		mergeConfig(cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile walks up from dir looking for .choicelab.yaml.
// Returns os.ErrNotExist if no config file is found. Propagates real I/O
// errors (e.g. permission denied) instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Generate
	if src.Generate.Respondents != 0 {
		dst.Generate.Respondents = src.Generate.Respondents
	}
	if src.Generate.Seed != nil {
		dst.Generate.Seed = src.Generate.Seed
	}
	if src.Generate.Truth != nil {
		dst.Generate.Truth = src.Generate.Truth
	}
	if len(src.Generate.Tasks) > 0 {
		dst.Generate.Tasks = src.Generate.Tasks
	}

	// Estimate
	if src.Estimate.MaxIterations != 0 {
		dst.Estimate.MaxIterations = src.Estimate.MaxIterations
	}
	if src.Estimate.GradientThreshold != 0 {
		dst.Estimate.GradientThreshold = src.Estimate.GradientThreshold
	}
	if src.Estimate.Format != "" {
		dst.Estimate.Format = src.Estimate.Format
	}

	// Simulate
	if src.Simulate.Replications != 0 {
		dst.Simulate.Replications = src.Simulate.Replications
	}
	if src.Simulate.Workers != 0 {
		dst.Simulate.Workers = src.Simulate.Workers
	}

	// Output
	if src.Output.Data != "" {
		dst.Output.Data = src.Output.Data
	}
}

// envOverrides are the settings that may be overridden from the environment.
// Keys are the prefix plus the split field name, e.g. CHOICELAB_MAX_ITERATIONS.
type envOverrides struct {
	Respondents       int     `split_words:"true"`
	Seed              *int64  `split_words:"true"`
	MaxIterations     int     `split_words:"true"`
	GradientThreshold float64 `split_words:"true"`
	Format            string  `split_words:"true"`
	Replications      int     `split_words:"true"`
	Workers           int     `split_words:"true"`
	DataPath          string  `split_words:"true"`
}

// ApplyEnv overlays CHOICELAB_* environment variables onto cfg.
func ApplyEnv(cfg *ProjectConfig) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment overrides: %w", err)
	}
	mergeConfig(cfg, &ProjectConfig{
		Generate: GenerateConfig{Respondents: env.Respondents, Seed: env.Seed},
		Estimate: EstimateConfig{
			MaxIterations:     env.MaxIterations,
			GradientThreshold: env.GradientThreshold,
			Format:            env.Format,
		},
		Simulate: SimulateConfig{Replications: env.Replications, Workers: env.Workers},
		Output:   OutputConfig{Data: env.DataPath},
	})
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their YAML keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every configured value and reports all violations at once.
func Validate(cfg *ProjectConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s (got %v)", fieldPath(fe.Namespace()), constraint(fe), fe.Value()))
	}
	return fmt.Errorf("invalid %s: %s", FileName, strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name, e.g. "ProjectConfig.generate.seed" -> "generate.seed".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// Marshal renders cfg as the YAML written to .choicelab.yaml.
func Marshal(cfg *ProjectConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", FileName, err)
	}
	return data, nil
}

// Save writes cfg to dir/.choicelab.yaml, replacing any existing file.
func Save(dir string, cfg *ProjectConfig) (string, error) {
	if err := Validate(cfg); err != nil {
		return "", err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, FileName)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", p, err)
	}
	return p, nil
}

func int64Ptr(v int64) *int64 {
	return &v
}
