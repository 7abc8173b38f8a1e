package reporting

import (
	"strings"
	"testing"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *models.EstimationResult {
	return &models.EstimationResult{
		Model: "with-asc",
		Parameters: []models.ParameterEstimate{
			{Name: "asc1", Value: 0, Fixed: true},
			{Name: "asc2", Value: 0.9812, StdErr: 0.11, RobustStdErr: 0.115, TStat: 8.53, PValue: 0},
			{Name: "b_cost", Value: -0.4123, StdErr: 0.075, RobustStdErr: 0.076, TStat: -5.42, PValue: 0.0000001},
			{Name: "b_time", Value: -0.1011, StdErr: 0.014, RobustStdErr: 0.014, TStat: -7.22, PValue: 0},
		},
		FinalLL:      -574.61,
		NullLL:       -693.147,
		InitLL:       -693.147,
		NumParams:    3,
		SampleSize:   1000,
		RhoSquare:    0.171,
		RhoBarSquare: 0.167,
		AIC:          1155.22,
		BIC:          1169.94,
		Iterations:   6,
		Status:       "GradientThreshold",
	}
}

func TestFormatEstimationTable(t *testing.T) {
	vtt := &models.ValueOfTime{Estimate: 14.71, StdErr: 3.1, Lower: 8.63, Upper: 20.79}
	out := FormatEstimationTable(sampleResult(), vtt)

	assert.Contains(t, out, "Model: with-asc (1,000 observations, 3 free parameters)")
	assert.Contains(t, out, "fixed")
	assert.Contains(t, out, "-0.4123")
	assert.Contains(t, out, "1,155.22")
	assert.Contains(t, out, "6 (GradientThreshold)")
	assert.Contains(t, out, "Modest fit (0.1-0.2)")
	assert.Contains(t, out, "Value of time: 14.71 per hour (std.err 3.10, 95% CI 8.63 to 20.79)")
}

func TestFormatEstimationTable_ColumnsAlign(t *testing.T) {
	out := FormatEstimationTable(sampleResult(), nil)
	assert.NotContains(t, out, "Value of time")

	var widths []int
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Parameter") || strings.HasPrefix(trimmed, "asc2") || strings.HasPrefix(trimmed, "b_") {
			widths = append(widths, runewidth.StringWidth(line))
		}
	}
	require.Len(t, widths, 4)
	for _, w := range widths[1:] {
		assert.Equal(t, widths[0], w)
	}
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "ρ²  ", padRight("ρ²", 4))
	assert.Equal(t, "  ab", padLeft("ab", 4))
	assert.Equal(t, "toolong", padLeft("toolong", 3))
}

func TestFormatSimulationTable(t *testing.T) {
	s := &models.SimulationSummary{
		Replications: 100,
		Respondents:  200,
		Seed:         42,
		TrueVTT:      15,
		Models: []models.ModelSummary{
			{
				Model:        "with-asc",
				Replications: 99,
				Failed:       1,
				MeanFinalLL:  -574.2,
				Parameters: []models.ParameterSummary{
					{Name: "b_cost", True: -0.4, HasTrue: true, Mean: -0.405, Bias: -0.005, StdDev: 0.077, MeanStdErr: 0.076, RMSE: 0.077, Coverage: 0.94},
				},
				VTTMean: 15.3, VTTLower: 9.8, VTTUpper: 22.5, VTTMeanLower: 14.6, VTTMeanUpper: 16.0,
			},
			{Model: "broken", Failed: 100},
		},
	}

	out := FormatSimulationTable(s)
	assert.Contains(t, out, "Monte Carlo study: 100 replications of 200 respondents (seed 42)")
	assert.Contains(t, out, "Model: with-asc (99 converged, 1 failed)")
	assert.Contains(t, out, "94%")
	assert.Contains(t, out, "mean 15.30 (95% CI of mean 14.60 to 16.00)")
	assert.Contains(t, out, "b_cost: Negligible bias (1% of the true value). Intervals are reliable (94% coverage).")
	assert.Contains(t, out, "Model: broken (0 converged, 100 failed)")
}
