package reporting

import (
	"testing"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestInterpretRhoSquare(t *testing.T) {
	tests := []struct {
		name string
		rho2 float64
		want string
	}{
		{"excellent", 0.45, "Excellent fit (>=0.4)"},
		{"excellent boundary", 0.4, "Excellent fit (>=0.4)"},
		{"good high", 0.39, "Good fit (0.2-0.4)"},
		{"good low", 0.2, "Good fit (0.2-0.4)"},
		{"modest", 0.15, "Modest fit (0.1-0.2)"},
		{"weak", 0.05, "Weak fit (<0.1)"},
		{"negative", -0.01, "Weak fit (<0.1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretRhoSquare(tt.rho2))
		})
	}
}

func TestInterpretVTT(t *testing.T) {
	tests := []struct {
		name  string
		vtt   *models.ValueOfTime
		truth float64
		want  string
	}{
		{
			name:  "covers truth",
			vtt:   &models.ValueOfTime{Estimate: 14.2, Lower: 11.0, Upper: 17.4},
			truth: 15,
			want:  "Consistent with the true value 15.00 (95% CI 11.00 to 17.40).",
		},
		{
			name:  "wrong sign",
			vtt:   &models.ValueOfTime{Estimate: -19.9, Lower: -30, Upper: -9.8},
			truth: 15,
			want:  "Wrong sign: -19.90 against a true value of 15.00 (95% CI -30.00 to -9.80).",
		},
		{
			name:  "too high",
			vtt:   &models.ValueOfTime{Estimate: 30, Lower: 25, Upper: 35},
			truth: 15,
			want:  "Off by 100% from the true value 15.00 (95% CI 25.00 to 35.00).",
		},
		{
			name:  "zero truth",
			vtt:   &models.ValueOfTime{Estimate: 3, Lower: 1, Upper: 5},
			truth: 0,
			want:  "Excludes the true value 0.00 (95% CI 1.00 to 5.00).",
		},
		{
			name: "missing",
			want: "Value of time not available.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretVTT(tt.vtt, tt.truth))
		})
	}
}

func TestInterpretBias(t *testing.T) {
	tests := []struct {
		name string
		p    models.ParameterSummary
		want string
	}{
		{"negligible", models.ParameterSummary{HasTrue: true, True: -0.4, Bias: -0.008}, "Negligible bias (2% of the true value)."},
		{"moderate", models.ParameterSummary{HasTrue: true, True: -0.4, Bias: 0.04}, "Moderate bias (10% of the true value)."},
		{"severe", models.ParameterSummary{HasTrue: true, True: -0.4, Bias: 0.46}, "Severe bias (115% of the true value)."},
		{"zero truth", models.ParameterSummary{HasTrue: true, True: 0, Bias: 0.01, StdDev: 0.1}, "Moderate bias (10% of a standard deviation)."},
		{"degenerate", models.ParameterSummary{HasTrue: true}, "Bias 0.0000."},
		{"no truth", models.ParameterSummary{}, "No true value to compare against."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpretBias(tt.p))
		})
	}
}

func TestInterpretCoverage(t *testing.T) {
	assert.Equal(t, "Intervals are reliable (95% coverage).", InterpretCoverage(0.95))
	assert.Equal(t, "Intervals are somewhat too narrow (80% coverage).", InterpretCoverage(0.8))
	assert.Equal(t, "Intervals are misleading (10% coverage).", InterpretCoverage(0.1))
}
