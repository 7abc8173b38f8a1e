package estimation

import (
	"errors"
	"fmt"

	"github.com/choicelab/choicelab/internal/utility"
)

var (
	// ErrUnresolvedChoice is returned for an observation whose choice is
	// unresolved or is not one of the model's alternatives.
	ErrUnresolvedChoice = errors.New("unresolved choice")

	// ErrNumerical is returned when the log-likelihood is not finite.
	ErrNumerical = errors.New("non-finite log-likelihood")

	// ErrNoObservations is returned when there is nothing to estimate on.
	ErrNoObservations = errors.New("no observations")
)

// SpecificationError is re-exported so callers of Estimate can match it
// without importing the utility package.
type SpecificationError = utility.SpecificationError

// ConvergenceError reports that the optimizer stopped before reaching a
// maximum, or that the point it stopped at is not a maximum.
type ConvergenceError struct {
	Model      string
	Status     string
	Iterations int
	Reason     string
	Err        error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("estimation did not converge after %d iterations", e.Iterations)
	if e.Model != "" {
		msg = fmt.Sprintf("estimation of model %q did not converge after %d iterations", e.Model, e.Iterations)
	}
	if e.Status != "" {
		msg += " (" + e.Status + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *ConvergenceError) Unwrap() error {
	return e.Err
}
