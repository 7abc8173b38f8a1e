// Package estimation fits multinomial logit models by maximum likelihood.
package estimation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/statistics"
	"github.com/choicelab/choicelab/internal/utility"
	"gonum.org/v1/gonum/mat"
)

// DefaultConfidenceLevel is used for the value-of-time interval.
const DefaultConfidenceLevel = 0.95

// Estimator fits a utility specification to observations.
type Estimator struct {
	Optimizer Optimizer
	Logger    *slog.Logger
}

// New returns an Estimator. A nil optimizer selects a NewtonOptimizer with
// default settings.
func New(opt Optimizer, logger *slog.Logger) *Estimator {
	if logger == nil {
		logger = slog.Default()
	}
	if opt == nil {
		opt = NewNewtonOptimizer(logger)
	}
	return &Estimator{Optimizer: opt, Logger: logger}
}

// Estimate maximizes the log-likelihood of obs under spec over the free
// parameters. Fixed parameters keep their start values.
//
// Errors are a *SpecificationError when spec does not fit the data,
// ErrUnresolvedChoice for an observation without a valid choice,
// ErrNumerical for a non-finite log-likelihood, and a *ConvergenceError when
// no maximum is reached.
func (est *Estimator) Estimate(ctx context.Context, spec *utility.Specification, obs []models.Observation) (*models.EstimationResult, error) {
	logger := est.Logger
	if logger == nil {
		logger = slog.Default()
	}
	optimizer := est.Optimizer
	if optimizer == nil {
		optimizer = NewNewtonOptimizer(logger)
	}

	if err := spec.Validate(models.AttributeNames); err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	m := compile(spec)
	if err := m.checkChoices(obs); err != nil {
		return nil, err
	}

	k := len(m.free)
	bounds := make([]bound, k)
	start := make([]float64, k)
	theta0 := make([]float64, k)
	for i, p := range m.free {
		bounds[i] = boundOf(p)
		start[i] = p.Start
		theta0[i] = bounds[i].internal(p.Start)
	}

	initial, err := m.evaluate(obs, start, valueOnly, false)
	if err != nil {
		return nil, fmt.Errorf("at starting values: %w", err)
	}
	logger.Debug("starting estimation",
		"model", spec.Name, "observations", len(obs), "freeParameters", k, "initLL", initial.LL)

	xhat := start
	opt := &Optimum{X: theta0, F: initial.LL, Status: "NoFreeParameters"}
	if k > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		obj := newObjective(m, obs, bounds)
		opt, err = optimizer.Maximize(ctx, obj.objective(), theta0)
		if err != nil {
			var ce *ConvergenceError
			if errors.As(err, &ce) {
				ce.Model = spec.Name
			}
			return nil, err
		}
		xhat = make([]float64, k)
		for i, b := range bounds {
			xhat[i], _, _ = b.natural(opt.X[i])
		}
	}

	final, err := m.evaluate(obs, xhat, withHessian, true)
	if err != nil {
		return nil, fmt.Errorf("at the optimum: %w", err)
	}

	var classical, robust *mat.SymDense
	if k > 0 {
		classical, robust, err = covariances(final.Hess, final.Scores)
		if err != nil {
			return nil, &ConvergenceError{
				Model:      spec.Name,
				Status:     opt.Status,
				Iterations: opt.Iterations,
				Reason:     err.Error(),
				Err:        err,
			}
		}
	}

	n := len(obs)
	nullLL := nullLogLikelihood(n, len(m.alts))
	res := &models.EstimationResult{
		Model:        spec.Name,
		FinalLL:      final.LL,
		NullLL:       nullLL,
		InitLL:       initial.LL,
		NumParams:    k,
		SampleSize:   n,
		RhoSquare:    statistics.RhoSquare(final.LL, nullLL),
		RhoBarSquare: statistics.RhoBarSquare(final.LL, nullLL, k),
		AIC:          statistics.AIC(final.LL, k),
		BIC:          statistics.BIC(final.LL, k, n),
		Iterations:   opt.Iterations,
		Status:       opt.Status,
	}

	free := 0
	for _, p := range spec.Parameters {
		if p.Fixed {
			res.Parameters = append(res.Parameters, models.ParameterEstimate{Name: p.Name, Value: p.Start, Fixed: true})
			continue
		}
		pe := models.ParameterEstimate{
			Name:         p.Name,
			Value:        xhat[free],
			StdErr:       math.Sqrt(classical.At(free, free)),
			RobustStdErr: math.Sqrt(robust.At(free, free)),
		}
		if pe.RobustStdErr > 0 {
			pe.TStat = pe.Value / pe.RobustStdErr
			pe.PValue = statistics.PValue(pe.TStat)
		}
		res.Parameters = append(res.Parameters, pe)
		res.FreeNames = append(res.FreeNames, p.Name)
		free++
	}
	res.RobustCov = make([][]float64, k)
	for i := range res.RobustCov {
		res.RobustCov[i] = make([]float64, k)
		for j := range res.RobustCov[i] {
			res.RobustCov[i][j] = robust.At(i, j)
		}
	}

	logger.Info("estimation finished",
		"model", spec.Name,
		"finalLL", final.LL,
		"rhoSquare", res.RhoSquare,
		"iterations", res.Iterations,
		"status", res.Status,
	)
	return res, nil
}

// VTT derives the value of travel time, 60 * beta_time / beta_cost, from an
// estimation result with a delta-method standard error and a Wald interval
// at DefaultConfidenceLevel. Fixed coefficients contribute no variance.
func VTT(res *models.EstimationResult, timeParam, costParam string) (*models.ValueOfTime, error) {
	bt, ok := res.Parameter(timeParam)
	if !ok {
		return nil, fmt.Errorf("model %q has no parameter %q", res.Model, timeParam)
	}
	bc, ok := res.Parameter(costParam)
	if !ok {
		return nil, fmt.Errorf("model %q has no parameter %q", res.Model, costParam)
	}
	if bc.Value == 0 {
		return nil, fmt.Errorf("value of time is undefined for %s = 0: %w", costParam, ErrNumerical)
	}

	varTime, _ := res.Covariance(timeParam, timeParam)
	varCost, _ := res.Covariance(costParam, costParam)
	cov, _ := res.Covariance(timeParam, costParam)

	vtt := statistics.ValueOfTime(bt.Value, bc.Value)
	se := statistics.ValueOfTimeSE(bt.Value, bc.Value, varTime, varCost, cov)
	if math.IsNaN(se) {
		return nil, fmt.Errorf("value of time standard error: %w", ErrNumerical)
	}
	ci := statistics.WaldInterval(vtt, se, DefaultConfidenceLevel)
	return &models.ValueOfTime{Estimate: vtt, StdErr: se, Lower: ci.Lower, Upper: ci.Upper}, nil
}

// objective evaluates the log-likelihood in the optimizer's unconstrained
// coordinates, caching the last full evaluation.
type objective struct {
	m      *model
	obs    []models.Observation
	bounds []bound

	lastTheta []float64
	last      *evaluation
	d1, d2    []float64
}

func newObjective(m *model, obs []models.Observation, bounds []bound) *objective {
	k := len(bounds)
	return &objective{m: m, obs: obs, bounds: bounds, d1: make([]float64, k), d2: make([]float64, k)}
}

func (o *objective) natural(theta []float64) []float64 {
	x := make([]float64, len(theta))
	for i, b := range o.bounds {
		x[i], o.d1[i], o.d2[i] = b.natural(theta[i])
	}
	return x
}

func (o *objective) full(theta []float64) *evaluation {
	if o.last != nil && slices.Equal(o.lastTheta, theta) {
		return o.last
	}
	ev, err := o.m.evaluate(o.obs, o.natural(theta), withHessian, false)
	if err != nil {
		o.last = nil
		return nil
	}
	o.lastTheta = append(o.lastTheta[:0], theta...)
	o.last = ev
	return ev
}

func (o *objective) objective() Objective {
	return Objective{
		Func: func(theta []float64) float64 {
			ev, err := o.m.evaluate(o.obs, o.natural(theta), valueOnly, false)
			if err != nil {
				return math.Inf(-1)
			}
			return ev.LL
		},
		Grad: func(grad, theta []float64) {
			ev := o.full(theta)
			o.natural(theta)
			for i := range grad {
				if ev == nil {
					grad[i] = math.NaN()
					continue
				}
				grad[i] = ev.Grad[i] * o.d1[i]
			}
		},
		Hess: func(hess *mat.SymDense, theta []float64) {
			ev := o.full(theta)
			o.natural(theta)
			k := len(theta)
			for a := 0; a < k; a++ {
				for b := 0; b <= a; b++ {
					if ev == nil {
						hess.SetSym(a, b, math.NaN())
						continue
					}
					h := o.d1[a] * ev.Hess.At(a, b) * o.d1[b]
					if a == b {
						h += ev.Grad[a] * o.d2[a]
					}
					hess.SetSym(a, b, h)
				}
			}
		},
	}
}
