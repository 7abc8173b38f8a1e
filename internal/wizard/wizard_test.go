package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choicelab/choicelab/internal/projectconfig"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"200", false},
		{" 15 ", false},
		{"0", true},
		{"-4", true},
		{"ten", true},
		{"", true},
		{"2.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := validatePositive(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSeed(t *testing.T) {
	assert.NoError(t, validateSeed("0"))
	assert.NoError(t, validateSeed("-17"))
	assert.NoError(t, validateSeed("9223372036854775807"))
	assert.Error(t, validateSeed("9223372036854775808"))
	assert.Error(t, validateSeed("seed"))
}

func TestRunInitWizard_ValidInput(t *testing.T) {
	input := "500\n7\n50\n2\nout/choices.csv.gz\n2\n"
	in := strings.NewReader(input)
	out := &bytes.Buffer{}

	base := projectconfig.New()
	cfg, err := RunInitWizard(in, out, base)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Generate.Respondents)
	require.NotNil(t, cfg.Generate.Seed)
	assert.Equal(t, int64(7), *cfg.Generate.Seed)
	assert.Equal(t, 50, cfg.Simulate.Replications)
	assert.Equal(t, 2, cfg.Simulate.Workers)
	assert.Equal(t, "out/choices.csv.gz", cfg.Output.Data)
	assert.Equal(t, "json", cfg.Estimate.Format)

	// Untouched settings carry over and the base is not modified.
	assert.Equal(t, base.Generate.Tasks, cfg.Generate.Tasks)
	assert.Equal(t, base.Estimate.MaxIterations, cfg.Estimate.MaxIterations)
	assert.Equal(t, projectconfig.DefaultRespondents, base.Generate.Respondents)
	assert.Equal(t, int64(projectconfig.DefaultSeed), base.SeedValue())

	assert.NoError(t, projectconfig.Validate(cfg))
}
