// Package generator simulates binary choices from a random-utility
// data-generating process with standard Gumbel errors.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/choicelab/choicelab/internal/models"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidInput is returned for an empty task list or a non-positive
// respondent count.
var ErrInvalidInput = errors.New("invalid generator input")

// NewSource returns the seeded stream used for a reproducible dataset.
func NewSource(seed int64) rand.Source {
	return rand.NewPCG(uint64(seed), uint64(seed))
}

// DeterministicUtilities returns V1 and V2 of a task under truth.
func DeterministicUtilities(t models.Task, truth models.TrueParams) (float64, float64) {
	v1 := truth.ASC1 + truth.BetaCost*t.Cost1 + truth.BetaTime*t.Time1
	v2 := truth.ASC2 + truth.BetaCost*t.Cost2 + truth.BetaTime*t.Time2
	return v1, v2
}

// Options tune Generate.
type Options struct {
	Logger *slog.Logger
}

// Generate simulates numRespondents respondents answering every task in
// order. For each task it draws eps1 then eps2 from src, so a given seed
// always yields the same sequence. Output is respondent-major, task-minor;
// respondent ids start at 1. An exact utility tie leaves the observation
// with models.ChoiceUnresolved.
func Generate(tasks []models.Task, numRespondents int, truth models.TrueParams, src rand.Source) ([]models.Observation, error) {
	return GenerateWithOptions(tasks, numRespondents, truth, src, Options{})
}

// GenerateWithOptions is Generate with a caller-supplied logger.
func GenerateWithOptions(tasks []models.Task, numRespondents int, truth models.TrueParams, src rand.Source, opts Options) ([]models.Observation, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks", ErrInvalidInput)
	}
	if numRespondents <= 0 {
		return nil, fmt.Errorf("%w: respondents must be positive, got %d", ErrInvalidInput, numRespondents)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidInput)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	gumbel := distuv.GumbelRight{Mu: 0, Beta: 1, Src: src}
	out := make([]models.Observation, 0, numRespondents*len(tasks))
	ties := 0

	for r := 1; r <= numRespondents; r++ {
		for ti, task := range tasks {
			v1, v2 := DeterministicUtilities(task, truth)
			eps1 := gumbel.Rand()
			eps2 := gumbel.Rand()
			u1, u2 := v1+eps1, v2+eps2

			choice := models.ChoiceUnresolved
			switch {
			case u1 > u2:
				choice = 1
			case u2 > u1:
				choice = 2
			default:
				ties++
				logger.Warn("tied total utilities, choice left unresolved",
					"respondent", r, "task", ti+1, "utility", u1)
			}

			out = append(out, models.Observation{RespondentID: r, Task: task, Choice: choice})
		}
	}

	logger.Debug("generated choices",
		"respondents", numRespondents, "tasks", len(tasks), "observations", len(out), "unresolved", ties)
	return out, nil
}

// Shares returns the fraction of resolved observations choosing each
// alternative, indexed by label.
func Shares(obs []models.Observation) map[int]float64 {
	counts := map[int]int{}
	total := 0
	for _, o := range obs {
		if !o.Resolved() {
			continue
		}
		counts[o.Choice]++
		total++
	}
	shares := make(map[int]float64, len(counts))
	for alt, c := range counts {
		shares[alt] = float64(c) / float64(total)
	}
	return shares
}
