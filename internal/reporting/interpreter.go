package reporting

import (
	"fmt"
	"math"

	"github.com/choicelab/choicelab/internal/models"
)

// InterpretRhoSquare returns a plain-language label for McFadden's
// rho-square. Values between 0.2 and 0.4 already indicate a very good fit
// for discrete choice models.
func InterpretRhoSquare(rho2 float64) string {
	switch {
	case rho2 >= 0.4:
		return "Excellent fit (>=0.4)"
	case rho2 >= 0.2:
		return "Good fit (0.2-0.4)"
	case rho2 >= 0.1:
		return "Modest fit (0.1-0.2)"
	default:
		return "Weak fit (<0.1)"
	}
}

// InterpretVTT compares an implied value of time with the value the data
// was generated from.
func InterpretVTT(vtt *models.ValueOfTime, truth float64) string {
	if vtt == nil {
		return "Value of time not available."
	}
	ci := fmt.Sprintf("95%% CI %.2f to %.2f", vtt.Lower, vtt.Upper)
	switch {
	case vtt.Lower <= truth && truth <= vtt.Upper:
		return fmt.Sprintf("Consistent with the true value %.2f (%s).", truth, ci)
	case truth != 0 && math.Signbit(vtt.Estimate) != math.Signbit(truth):
		return fmt.Sprintf("Wrong sign: %.2f against a true value of %.2f (%s).", vtt.Estimate, truth, ci)
	case truth != 0:
		return fmt.Sprintf("Off by %.0f%% from the true value %.2f (%s).",
			100*math.Abs(vtt.Estimate-truth)/math.Abs(truth), truth, ci)
	default:
		return fmt.Sprintf("Excludes the true value %.2f (%s).", truth, ci)
	}
}

// InterpretBias grades the Monte Carlo bias of a parameter relative to its
// true value, or to its sampling spread when the true value is zero.
func InterpretBias(p models.ParameterSummary) string {
	if !p.HasTrue {
		return "No true value to compare against."
	}
	scale := math.Abs(p.True)
	unit := "of the true value"
	if scale == 0 {
		scale = p.StdDev
		unit = "of a standard deviation"
	}
	if scale == 0 {
		return fmt.Sprintf("Bias %.4f.", p.Bias)
	}
	rel := math.Abs(p.Bias) / scale
	label := "Negligible"
	switch {
	case rel >= 0.2:
		label = "Severe"
	case rel >= 0.05:
		label = "Moderate"
	}
	return fmt.Sprintf("%s bias (%.0f%% %s).", label, 100*rel, unit)
}

// InterpretCoverage explains how often the 95% interval held the truth.
func InterpretCoverage(coverage float64) string {
	pct := coverage * 100
	switch {
	case pct >= 90:
		return fmt.Sprintf("Intervals are reliable (%.0f%% coverage).", pct)
	case pct >= 75:
		return fmt.Sprintf("Intervals are somewhat too narrow (%.0f%% coverage).", pct)
	default:
		return fmt.Sprintf("Intervals are misleading (%.0f%% coverage).", pct)
	}
}
