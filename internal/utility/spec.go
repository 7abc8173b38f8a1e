// Package utility describes a logit model: its parameters and the utility
// expression of every alternative.
package utility

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/choicelab/choicelab/internal/expr"
)

// Parameter is a named utility coefficient.
type Parameter struct {
	Name  string   `mapstructure:"name" json:"name"`
	Start float64  `mapstructure:"start" json:"start"`
	Lower *float64 `mapstructure:"lower" json:"lower,omitempty"`
	Upper *float64 `mapstructure:"upper" json:"upper,omitempty"`
	Fixed bool     `mapstructure:"fixed" json:"fixed,omitempty"`
}

// Specification maps alternative labels to utility expressions.
type Specification struct {
	Name       string
	Parameters []Parameter
	Utilities  map[int]expr.Expr
}

// SpecificationError reports a model that cannot be estimated on the data
// as written.
type SpecificationError struct {
	Model   string
	Problem string
}

func (e *SpecificationError) Error() string {
	if e.Model == "" {
		return "specification error: " + e.Problem
	}
	return fmt.Sprintf("specification error in model %q: %s", e.Model, e.Problem)
}

func (s *Specification) fail(format string, args ...any) error {
	return &SpecificationError{Model: s.Name, Problem: fmt.Sprintf(format, args...)}
}

// Alternatives returns the alternative labels in ascending order.
func (s *Specification) Alternatives() []int {
	alts := make([]int, 0, len(s.Utilities))
	for a := range s.Utilities {
		alts = append(alts, a)
	}
	sort.Ints(alts)
	return alts
}

// Parameter looks up a declared parameter by name.
func (s *Specification) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// FreeParameters returns the parameters that are estimated, in declaration order.
func (s *Specification) FreeParameters() []Parameter {
	var out []Parameter
	for _, p := range s.Parameters {
		if !p.Fixed {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the specification against the attribute names available
// in the data. Every failure is a *SpecificationError.
func (s *Specification) Validate(attributes []string) error {
	if len(s.Utilities) < 2 {
		return s.fail("need at least two alternatives, got %d", len(s.Utilities))
	}

	declared := make(map[string]bool, len(s.Parameters))
	for _, p := range s.Parameters {
		if p.Name == "" {
			return s.fail("parameter with empty name")
		}
		if declared[p.Name] {
			return s.fail("parameter %q declared twice", p.Name)
		}
		declared[p.Name] = true

		if p.Lower != nil && p.Upper != nil && *p.Lower >= *p.Upper {
			return s.fail("parameter %q: lower bound %g must be below upper bound %g", p.Name, *p.Lower, *p.Upper)
		}
		if p.Fixed {
			continue
		}
		if p.Lower != nil && p.Start <= *p.Lower {
			return s.fail("parameter %q: start %g must be above lower bound %g", p.Name, p.Start, *p.Lower)
		}
		if p.Upper != nil && p.Start >= *p.Upper {
			return s.fail("parameter %q: start %g must be below upper bound %g", p.Name, p.Start, *p.Upper)
		}
	}

	used := map[string]bool{}
	for _, alt := range s.Alternatives() {
		if alt <= 0 {
			return s.fail("alternative label %d must be positive", alt)
		}
		u := s.Utilities[alt]
		if u == nil {
			return s.fail("alternative %d has no utility", alt)
		}
		for _, name := range expr.Params(u) {
			if !declared[name] {
				return s.fail("utility of alternative %d references undeclared parameter %q", alt, name)
			}
			used[name] = true
		}
		for _, name := range expr.Attributes(u) {
			if !slices.Contains(attributes, name) {
				return s.fail("utility of alternative %d references attribute %q, not in data (have %s)",
					alt, name, strings.Join(attributes, ", "))
			}
		}
	}

	for _, p := range s.FreeParameters() {
		if !used[p.Name] {
			return s.fail("free parameter %q does not appear in any utility", p.Name)
		}
	}
	return nil
}

// String renders the utilities, one alternative per line.
func (s *Specification) String() string {
	var b strings.Builder
	for _, alt := range s.Alternatives() {
		fmt.Fprintf(&b, "V%d = %s\n", alt, expr.String(s.Utilities[alt]))
	}
	return b.String()
}
