package metrics

import "math"

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance computes the population variance of a float64 slice.
// Returns 0 for empty input.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

// StdDev computes the population standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// SampleStdDev computes the standard deviation with Bessel's correction.
// Returns 0 when fewer than 2 values are available.
func SampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return math.Sqrt(Variance(values) * float64(n) / float64(n-1))
}

// RMSE is the root mean squared deviation of values from target.
func RMSE(values []float64, target float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - target
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ConfidenceInterval95 returns the 95% confidence interval (low, high)
// using the normal approximation (z=1.96). Returns (mean, mean) when
// fewer than 2 data points are available.
func ConfidenceInterval95(values []float64) (float64, float64) {
	n := len(values)
	if n < 2 {
		m := Mean(values)
		return m, m
	}
	m := Mean(values)
	margin := 1.96 * SampleStdDev(values) / math.Sqrt(float64(n))
	return m - margin, m + margin
}

// Fraction returns the share of values for which keep is true.
func Fraction(n int, keep func(i int) bool) float64 {
	if n == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < n; i++ {
		if keep(i) {
			hits++
		}
	}
	return float64(hits) / float64(n)
}
