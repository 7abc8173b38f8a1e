// Package simulation runs Monte Carlo studies: many synthetic datasets from
// one data-generating process, each estimated under several models.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/choicelab/choicelab/internal/estimation"
	"github.com/choicelab/choicelab/internal/generator"
	"github.com/choicelab/choicelab/internal/metrics"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/statistics"
	"github.com/choicelab/choicelab/internal/utility"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is used when Config.Workers is not positive.
const DefaultWorkers = 4

// ErrInvalidConfig is returned for a study that cannot run.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config describes a Monte Carlo study.
type Config struct {
	Replications int
	Respondents  int
	Seed         int64
	Truth        models.TrueParams
	Tasks        []models.Task
	Workers      int
}

// EventType represents the type of progress event
type EventType string

const (
	EventReplicationComplete EventType = "replication_complete"
	EventEstimationFailed    EventType = "estimation_failed"
)

// ProgressEvent reports a finished replication or a failed estimation.
type ProgressEvent struct {
	EventType   EventType
	Replication int
	Completed   int
	Total       int
	Model       string
	Err         error
}

// ProgressListener is a callback for progress updates
type ProgressListener func(event ProgressEvent)

// Runner executes studies with a shared estimator.
type Runner struct {
	estimator *estimation.Estimator
	logger    *slog.Logger

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewRunner returns a Runner. A nil estimator uses estimation defaults.
func NewRunner(est *estimation.Estimator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if est == nil {
		est = estimation.New(nil, logger)
	}
	return &Runner{estimator: est, logger: logger}
}

// OnProgress registers a listener. Listeners may be called from several
// goroutines at once.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run executes a study with a default Runner.
func Run(ctx context.Context, cfg Config, specs ...*utility.Specification) (*models.SimulationSummary, error) {
	return NewRunner(nil, nil).Run(ctx, cfg, specs...)
}

// replication holds one replication's estimates, indexed like the specs.
// A nil entry is an estimation that failed to converge.
type replication struct {
	results []*models.EstimationResult
}

// Run generates cfg.Replications datasets, replication r from seed
// cfg.Seed+r, and estimates every spec on each. Estimations that do not
// converge or hit numerical trouble are counted as failed; any other error
// aborts the study.
func (r *Runner) Run(ctx context.Context, cfg Config, specs ...*utility.Specification) (*models.SimulationSummary, error) {
	if cfg.Replications <= 0 {
		return nil, fmt.Errorf("%w: replications must be positive, got %d", ErrInvalidConfig, cfg.Replications)
	}
	if cfg.Respondents <= 0 {
		return nil, fmt.Errorf("%w: respondents must be positive, got %d", ErrInvalidConfig, cfg.Respondents)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no models", ErrInvalidConfig)
	}
	tasks := cfg.Tasks
	if len(tasks) == 0 {
		tasks = models.DefaultTasks()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	reps := make([]replication, cfg.Replications)
	var completed int
	var completedMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range reps {
		g.Go(func() error {
			obs, err := generator.GenerateWithOptions(tasks, cfg.Respondents, cfg.Truth,
				generator.NewSource(cfg.Seed+int64(i)), generator.Options{Logger: r.logger})
			if err != nil {
				return err
			}

			reps[i].results = make([]*models.EstimationResult, len(specs))
			for s, spec := range specs {
				res, err := r.estimator.Estimate(gctx, spec, obs)
				var ce *estimation.ConvergenceError
				switch {
				case err == nil:
					reps[i].results[s] = res
				case errors.As(err, &ce), errors.Is(err, estimation.ErrNumerical), errors.Is(err, estimation.ErrUnresolvedChoice):
					r.logger.Warn("estimation failed", "replication", i, "model", spec.Name, "err", err)
					r.notifyProgress(ProgressEvent{
						EventType:   EventEstimationFailed,
						Replication: i,
						Total:       cfg.Replications,
						Model:       spec.Name,
						Err:         err,
					})
				default:
					return fmt.Errorf("replication %d, model %q: %w", i, spec.Name, err)
				}
			}

			completedMu.Lock()
			completed++
			done := completed
			completedMu.Unlock()
			r.notifyProgress(ProgressEvent{
				EventType:   EventReplicationComplete,
				Replication: i,
				Completed:   done,
				Total:       cfg.Replications,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &models.SimulationSummary{
		Replications: cfg.Replications,
		Respondents:  cfg.Respondents,
		Seed:         cfg.Seed,
		Truth:        cfg.Truth,
		TrueVTT:      cfg.Truth.ValueOfTime(),
	}
	for s, spec := range specs {
		var results []*models.EstimationResult
		for _, rep := range reps {
			if res := rep.results[s]; res != nil {
				results = append(results, res)
			}
		}
		summary.Models = append(summary.Models, summarize(spec, cfg, results))
	}

	r.logger.Info("simulation finished",
		"replications", cfg.Replications, "respondents", cfg.Respondents, "models", len(specs))
	return summary, nil
}

func summarize(spec *utility.Specification, cfg Config, results []*models.EstimationResult) models.ModelSummary {
	ms := models.ModelSummary{
		Model:        spec.Name,
		Replications: len(results),
		Failed:       cfg.Replications - len(results),
	}
	if len(results) == 0 {
		return ms
	}

	lls := make([]float64, len(results))
	for i, res := range results {
		lls[i] = res.FinalLL
	}
	ms.MeanFinalLL = metrics.Mean(lls)

	z := statistics.ZCritical(0.95)
	for _, p := range spec.FreeParameters() {
		values := make([]float64, len(results))
		ses := make([]float64, len(results))
		for i, res := range results {
			pe, _ := res.Parameter(p.Name)
			values[i] = pe.Value
			ses[i] = pe.RobustStdErr
		}

		ps := models.ParameterSummary{
			Name:       p.Name,
			Mean:       metrics.Mean(values),
			StdDev:     metrics.SampleStdDev(values),
			MeanStdErr: metrics.Mean(ses),
		}
		if truth, ok := cfg.Truth.Lookup(p.Name); ok {
			ps.True = truth
			ps.HasTrue = true
			ps.Bias = ps.Mean - truth
			ps.RMSE = metrics.RMSE(values, truth)
			ps.Coverage = metrics.Fraction(len(values), func(i int) bool {
				return math.Abs(values[i]-truth) <= z*ses[i]
			})
		}
		ms.Parameters = append(ms.Parameters, ps)
	}

	var vtts []float64
	for _, res := range results {
		v, err := estimation.VTT(res, utility.ParamBetaTime, utility.ParamBetaCost)
		if err != nil {
			continue
		}
		vtts = append(vtts, v.Estimate)
	}
	if len(vtts) > 0 {
		spread := statistics.PercentileInterval(vtts, 0.95)
		meanCI := statistics.BootstrapCIWithSeed(vtts, 0.95, cfg.Seed)
		ms.VTTMean = spread.Mean
		ms.VTTLower = spread.Lower
		ms.VTTUpper = spread.Upper
		ms.VTTMeanLower = meanCI.Lower
		ms.VTTMeanUpper = meanCI.Upper
	}
	return ms
}
