package statistics

import (
	"math"
	"math/rand/v2"
	"sort"
)

// ConfidenceInterval holds an interval estimate around a point value.
type ConfidenceInterval struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	Mean            float64 `json:"mean"`
	ConfidenceLevel float64 `json:"confidence_level"`
	NumBootstraps   int     `json:"num_bootstraps,omitempty"`
}

// DefaultBootstrapIterations is the number of bootstrap resamples.
const DefaultBootstrapIterations = 10000

// BootstrapCI computes a bootstrap confidence interval for the mean of
// values using the percentile method. confidenceLevel should be in (0, 1),
// e.g. 0.95. Returns a degenerate interval when fewer than 2 values exist.
func BootstrapCI(values []float64, confidenceLevel float64) ConfidenceInterval {
	return BootstrapCIWithSeed(values, confidenceLevel, -1)
}

// BootstrapCIWithSeed is like BootstrapCI but accepts a seed for reproducibility.
// A negative seed uses a non-deterministic source.
func BootstrapCIWithSeed(values []float64, confidenceLevel float64, seed int64) ConfidenceInterval {
	n := len(values)
	if n < 2 {
		m := mean(values)
		return ConfidenceInterval{
			Lower:           m,
			Upper:           m,
			Mean:            m,
			ConfidenceLevel: confidenceLevel,
			NumBootstraps:   0,
		}
	}

	var rng *rand.Rand
	if seed >= 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), 0))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := mean(values)
	iters := DefaultBootstrapIterations

	// Resample with replacement, keep the mean of each resample.
	bootMeans := make([]float64, iters)
	sample := make([]float64, n)
	for i := 0; i < iters; i++ {
		for j := 0; j < n; j++ {
			sample[j] = values[rng.IntN(n)]
		}
		bootMeans[i] = mean(sample)
	}

	sort.Float64s(bootMeans)
	lo, hi := percentileBounds(bootMeans, confidenceLevel)

	return ConfidenceInterval{
		Lower:           lo,
		Upper:           hi,
		Mean:            m,
		ConfidenceLevel: confidenceLevel,
		NumBootstraps:   iters,
	}
}

// PercentileInterval returns the equal-tailed interval of the empirical
// distribution of values, e.g. the 2.5th and 97.5th percentiles for 0.95.
func PercentileInterval(values []float64, confidenceLevel float64) ConfidenceInterval {
	m := mean(values)
	if len(values) < 2 {
		return ConfidenceInterval{Lower: m, Upper: m, Mean: m, ConfidenceLevel: confidenceLevel}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	lo, hi := percentileBounds(sorted, confidenceLevel)
	return ConfidenceInterval{Lower: lo, Upper: hi, Mean: m, ConfidenceLevel: confidenceLevel}
}

func percentileBounds(sorted []float64, confidenceLevel float64) (float64, float64) {
	n := len(sorted)
	alpha := 1.0 - confidenceLevel
	loIdx := int(math.Floor(alpha / 2.0 * float64(n)))
	hiIdx := int(math.Floor((1.0 - alpha/2.0) * float64(n)))
	if hiIdx >= n {
		hiIdx = n - 1
	}
	return sorted[loIdx], sorted[hiIdx]
}

// IsSignificant returns true if the confidence interval does not contain zero,
// indicating statistical significance at the given confidence level.
func IsSignificant(ci ConfidenceInterval) bool {
	return ci.Lower > 0 || ci.Upper < 0
}

// Contains reports whether v lies inside the closed interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
