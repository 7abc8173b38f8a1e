package estimation

import (
	"math"

	"github.com/choicelab/choicelab/internal/utility"
)

// bound maps an unconstrained optimizer coordinate theta to a parameter
// value that stays strictly inside its bounds:
//
//	lower only: x = lo + exp(theta)
//	upper only: x = hi - exp(theta)
//	both:       x = lo + (hi-lo) * logistic(theta)
type bound struct {
	lower, upper *float64
}

func boundOf(p utility.Parameter) bound {
	return bound{lower: p.Lower, upper: p.Upper}
}

// natural returns x(theta) with its first and second derivatives.
func (b bound) natural(theta float64) (x, d1, d2 float64) {
	switch {
	case b.lower != nil && b.upper != nil:
		width := *b.upper - *b.lower
		s := logistic(theta)
		ds := s * (1 - s)
		return *b.lower + width*s, width * ds, width * ds * (1 - 2*s)
	case b.lower != nil:
		e := math.Exp(theta)
		return *b.lower + e, e, e
	case b.upper != nil:
		e := math.Exp(theta)
		return *b.upper - e, -e, -e
	default:
		return theta, 1, 0
	}
}

// internal is the inverse of natural.
func (b bound) internal(x float64) float64 {
	switch {
	case b.lower != nil && b.upper != nil:
		u := (x - *b.lower) / (*b.upper - *b.lower)
		return math.Log(u / (1 - u))
	case b.lower != nil:
		return math.Log(x - *b.lower)
	case b.upper != nil:
		return math.Log(*b.upper - x)
	default:
		return x
	}
}

func logistic(t float64) float64 {
	if t >= 0 {
		return 1 / (1 + math.Exp(-t))
	}
	e := math.Exp(t)
	return e / (1 + e)
}
