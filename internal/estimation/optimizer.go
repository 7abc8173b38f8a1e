package estimation

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	// DefaultGradientThreshold is the infinity norm of the gradient below
	// which the optimizer declares convergence.
	DefaultGradientThreshold = 1e-6

	// DefaultMaxIterations bounds the number of Newton steps.
	DefaultMaxIterations = 200
)

// Objective is a function to maximize with its analytic derivatives.
// Grad and Hess write into their first argument.
type Objective struct {
	Func func(x []float64) float64
	Grad func(grad, x []float64)
	Hess func(hess *mat.SymDense, x []float64)
}

// Optimum is where an Optimizer stopped.
type Optimum struct {
	X          []float64
	F          float64
	Gradient   []float64
	Iterations int
	Status     string
}

// Optimizer maximizes an objective from a starting point. Implementations
// return a *ConvergenceError when they stop short of a maximum.
//
//go:generate go tool mockgen -source optimizer.go -destination mock_optimizer_test.go -package estimation
type Optimizer interface {
	Maximize(ctx context.Context, obj Objective, start []float64) (*Optimum, error)
}

// NewtonOptimizer maximizes with gonum's Newton method applied to the
// negated objective.
type NewtonOptimizer struct {
	GradientThreshold float64
	MaxIterations     int
	Logger            *slog.Logger
}

// NewNewtonOptimizer returns a NewtonOptimizer with default settings.
func NewNewtonOptimizer(logger *slog.Logger) *NewtonOptimizer {
	return &NewtonOptimizer{
		GradientThreshold: DefaultGradientThreshold,
		MaxIterations:     DefaultMaxIterations,
		Logger:            logger,
	}
}

func (o *NewtonOptimizer) Maximize(ctx context.Context, obj Objective, start []float64) (*Optimum, error) {
	threshold := o.GradientThreshold
	if threshold <= 0 {
		threshold = DefaultGradientThreshold
	}
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return -obj.Func(x)
		},
		Grad: func(grad, x []float64) {
			obj.Grad(grad, x)
			floats.Scale(-1, grad)
		},
		Hess: func(hess *mat.SymDense, x []float64) {
			obj.Hess(hess, x)
			hess.ScaleSym(-1, hess)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: threshold,
		MajorIterations:   maxIter,
		Recorder:          &iterationRecorder{ctx: ctx, logger: logger},
	}

	res, err := optimize.Minimize(problem, start, settings, &optimize.Newton{})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if res == nil {
		return nil, &ConvergenceError{Status: optimize.Failure.String(), Reason: err.Error(), Err: err}
	}

	opt := &Optimum{
		X:          res.X,
		F:          -res.F,
		Iterations: res.MajorIterations,
		Status:     res.Status.String(),
	}
	if len(res.Gradient) > 0 {
		opt.Gradient = make([]float64, len(res.Gradient))
		floats.ScaleTo(opt.Gradient, -1, res.Gradient)
	}

	if err == nil && !res.Status.Early() {
		return opt, nil
	}

	// The line search can run out of representable progress once the
	// function value is flat to machine precision. Accept that point when
	// the gradient is small relative to the objective.
	if opt.Gradient != nil && !math.IsInf(opt.F, 0) &&
		floats.Norm(opt.Gradient, math.Inf(1)) <= threshold*math.Max(1, math.Abs(opt.F)) &&
		res.Status != optimize.IterationLimit {
		logger.Debug("optimizer stopped on a flat objective, accepting point",
			"status", res.Status.String(), "err", err, "iterations", opt.Iterations)
		return opt, nil
	}

	reason := ""
	switch {
	case err != nil:
		reason = err.Error()
	case res.Status.Err() != nil:
		reason = res.Status.Err().Error()
	}
	return opt, &ConvergenceError{
		Status:     res.Status.String(),
		Iterations: res.MajorIterations,
		Reason:     reason,
		Err:        errors.Join(err, res.Status.Err()),
	}
}

// iterationRecorder logs every major iteration at debug level and stops the
// run once the context is done.
type iterationRecorder struct {
	ctx    context.Context
	logger *slog.Logger
}

func (r *iterationRecorder) Init() error {
	return nil
}

func (r *iterationRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if op != optimize.MajorIteration || !r.logger.Enabled(r.ctx, slog.LevelDebug) {
		return nil
	}
	gradNorm := math.NaN()
	if len(loc.Gradient) > 0 {
		gradNorm = floats.Norm(loc.Gradient, math.Inf(1))
	}
	r.logger.Debug("newton iteration",
		"iteration", stats.MajorIterations,
		"logLikelihood", -loc.F,
		"gradientNorm", gradNorm,
		"funcEvaluations", stats.FuncEvaluations,
	)
	return nil
}
