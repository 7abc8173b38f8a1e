package statistics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MinutesPerHour converts a per-minute time coefficient to an hourly value.
const MinutesPerHour = 60.0

// ZCritical returns the two-sided standard normal critical value for the
// confidence level, e.g. 1.96 for 0.95.
func ZCritical(confidenceLevel float64) float64 {
	return distuv.UnitNormal.Quantile(1 - (1-confidenceLevel)/2)
}

// PValue is the two-sided p-value of a z statistic.
func PValue(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	return 2 * distuv.UnitNormal.Survival(math.Abs(z))
}

// WaldInterval is the normal-approximation interval est ± z·se.
func WaldInterval(est, se, confidenceLevel float64) ConfidenceInterval {
	margin := ZCritical(confidenceLevel) * se
	return ConfidenceInterval{
		Lower:           est - margin,
		Upper:           est + margin,
		Mean:            est,
		ConfidenceLevel: confidenceLevel,
	}
}

// ValueOfTime is the marginal rate of substitution between time (per
// minute) and cost, expressed in currency per hour.
func ValueOfTime(betaTime, betaCost float64) float64 {
	return MinutesPerHour * betaTime / betaCost
}

// ValueOfTimeSE is the delta-method standard error of ValueOfTime given the
// variances of both coefficients and their covariance.
func ValueOfTimeSE(betaTime, betaCost, varTime, varCost, cov float64) float64 {
	dTime := MinutesPerHour / betaCost
	dCost := -MinutesPerHour * betaTime / (betaCost * betaCost)
	v := dTime*dTime*varTime + dCost*dCost*varCost + 2*dTime*dCost*cov
	if v < 0 {
		return math.NaN()
	}
	return math.Sqrt(v)
}

// RhoSquare is McFadden's 1 - LL/LL0.
func RhoSquare(ll, nullLL float64) float64 {
	return 1 - ll/nullLL
}

// RhoBarSquare adjusts RhoSquare for the number of estimated parameters.
func RhoBarSquare(ll, nullLL float64, k int) float64 {
	return 1 - (ll-float64(k))/nullLL
}

// AIC is the Akaike information criterion.
func AIC(ll float64, k int) float64 {
	return 2*float64(k) - 2*ll
}

// BIC is the Bayesian information criterion for n observations.
func BIC(ll float64, k, n int) float64 {
	return float64(k)*math.Log(float64(n)) - 2*ll
}
