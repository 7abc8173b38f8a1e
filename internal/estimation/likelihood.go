package estimation

import (
	"fmt"
	"math"

	"github.com/choicelab/choicelab/internal/expr"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/utility"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// env binds parameter values and the attributes of one observation.
type env struct {
	params map[string]float64
	obs    *models.Observation
}

func (e env) Param(name string) (float64, bool) {
	v, ok := e.params[name]
	return v, ok
}

func (e env) Attribute(name string) (float64, bool) {
	return e.obs.Value(name)
}

// model is a specification compiled for repeated likelihood evaluation in
// terms of its free parameters.
type model struct {
	spec  *utility.Specification
	alts  []int
	index map[int]int
	utils []expr.Expr
	free  []utility.Parameter
	fixed map[string]float64

	// dV[j][k] is dV_j/dbeta_k; d2V[j][k][l] is nil where identically zero.
	dV  [][]expr.Expr
	d2V [][][]expr.Expr
}

func compile(spec *utility.Specification) *model {
	m := &model{
		spec:  spec,
		alts:  spec.Alternatives(),
		index: map[int]int{},
		free:  spec.FreeParameters(),
		fixed: map[string]float64{},
	}
	for _, p := range spec.Parameters {
		if p.Fixed {
			m.fixed[p.Name] = p.Start
		}
	}

	k := len(m.free)
	for j, alt := range m.alts {
		m.index[alt] = j
		u := spec.Utilities[alt]
		m.utils = append(m.utils, u)

		first := make([]expr.Expr, k)
		second := make([][]expr.Expr, k)
		for a, pa := range m.free {
			first[a] = expr.Derive(u, pa.Name)
			second[a] = make([]expr.Expr, k)
			for b := 0; b <= a; b++ {
				d := expr.Simplify(expr.Derive(first[a], m.free[b].Name))
				if c, ok := d.(expr.Constant); ok && c.Value == 0 {
					continue
				}
				second[a][b] = d
				second[b][a] = d
			}
		}
		m.dV = append(m.dV, first)
		m.d2V = append(m.d2V, second)
	}
	return m
}

// bind returns every parameter value with the free ones taken from x.
func (m *model) bind(x []float64) map[string]float64 {
	params := make(map[string]float64, len(m.fixed)+len(x))
	for name, v := range m.fixed {
		params[name] = v
	}
	for k, p := range m.free {
		params[p.Name] = x[k]
	}
	return params
}

// checkChoices returns ErrUnresolvedChoice for the first observation whose
// choice is not an alternative of the model.
func (m *model) checkChoices(obs []models.Observation) error {
	for i, o := range obs {
		if _, ok := m.index[o.Choice]; !ok {
			return fmt.Errorf("observation %d (respondent %d): choice %d: %w", i, o.RespondentID, o.Choice, ErrUnresolvedChoice)
		}
	}
	return nil
}

// order selects how much evaluate computes.
type order int

const (
	valueOnly order = iota
	withGradient
	withHessian
)

// evaluation is the log-likelihood at a point with its derivatives.
type evaluation struct {
	LL   float64
	Grad []float64
	Hess *mat.SymDense

	// Scores holds one row of per-observation gradient contributions.
	Scores *mat.Dense
}

func (m *model) evaluate(obs []models.Observation, x []float64, ord order, keepScores bool) (*evaluation, error) {
	k := len(m.free)
	nAlt := len(m.alts)
	e := env{params: m.bind(x)}

	out := &evaluation{}
	if ord >= withGradient {
		out.Grad = make([]float64, k)
		if keepScores && k > 0 {
			out.Scores = mat.NewDense(len(obs), k, nil)
		}
	}
	if ord >= withHessian && k > 0 {
		out.Hess = mat.NewSymDense(k, nil)
	}

	v := make([]float64, nAlt)
	p := make([]float64, nAlt)
	g := make([][]float64, nAlt)
	for j := range g {
		g[j] = make([]float64, k)
	}
	gbar := make([]float64, k)
	score := make([]float64, k)

	for n := range obs {
		e.obs = &obs[n]
		c, ok := m.index[obs[n].Choice]
		if !ok {
			return nil, fmt.Errorf("observation %d: choice %d: %w", n, obs[n].Choice, ErrUnresolvedChoice)
		}
		for j, u := range m.utils {
			val, err := expr.Eval(u, e)
			if err != nil {
				return nil, err
			}
			v[j] = val
		}
		lse := floats.LogSumExp(v)
		for j := range v {
			p[j] = math.Exp(v[j] - lse)
		}
		out.LL += v[c] - lse

		if ord < withGradient {
			continue
		}
		for i := range gbar {
			gbar[i] = 0
		}
		for j := range m.alts {
			for a := 0; a < k; a++ {
				d, err := expr.Eval(m.dV[j][a], e)
				if err != nil {
					return nil, err
				}
				g[j][a] = d
				gbar[a] += p[j] * d
			}
		}
		for a := 0; a < k; a++ {
			score[a] = g[c][a] - gbar[a]
			out.Grad[a] += score[a]
		}
		if out.Scores != nil {
			out.Scores.SetRow(n, score)
		}

		if ord < withHessian {
			continue
		}
		for a := 0; a < k; a++ {
			for b := 0; b <= a; b++ {
				h := gbar[a] * gbar[b]
				for j := range m.alts {
					h -= p[j] * g[j][a] * g[j][b]
					if d2 := m.d2V[j][a][b]; d2 != nil {
						val, err := expr.Eval(d2, e)
						if err != nil {
							return nil, err
						}
						if j == c {
							h += val
						}
						h -= p[j] * val
					}
				}
				out.Hess.SetSym(a, b, out.Hess.At(a, b)+h)
			}
		}
	}

	if math.IsNaN(out.LL) || math.IsInf(out.LL, 0) {
		return nil, fmt.Errorf("log-likelihood is %v: %w", out.LL, ErrNumerical)
	}
	return out, nil
}

// nullLogLikelihood is the log-likelihood of choosing uniformly among the
// alternatives.
func nullLogLikelihood(numObs, numAlts int) float64 {
	return -float64(numObs) * math.Log(float64(numAlts))
}

// ChoiceProbabilities returns the logit probability of every alternative of
// spec for one observation, keyed by alternative label. params must bind
// every parameter the utilities reference.
func ChoiceProbabilities(spec *utility.Specification, params map[string]float64, obs models.Observation) (map[int]float64, error) {
	alts := spec.Alternatives()
	e := env{params: params, obs: &obs}
	v := make([]float64, len(alts))
	for j, alt := range alts {
		val, err := expr.Eval(spec.Utilities[alt], e)
		if err != nil {
			return nil, err
		}
		v[j] = val
	}
	lse := floats.LogSumExp(v)
	out := make(map[int]float64, len(alts))
	for j, alt := range alts {
		out[alt] = math.Exp(v[j] - lse)
	}
	return out, nil
}
