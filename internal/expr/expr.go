// Package expr implements the small expression language used to write
// utility functions: constants, named parameters, named attributes, sums
// and products. Expressions are immutable values; evaluation and symbolic
// differentiation walk the tree.
package expr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Expr is a node of a utility expression tree. The set of implementations
// is closed: Constant, Param, Attribute, Sum and Product.
type Expr interface {
	isExpr()
}

// Constant is a literal number.
type Constant struct {
	Value float64
}

// Param references a named model parameter (coefficient).
type Param struct {
	Name string
}

// Attribute references a named variable of an observation.
type Attribute struct {
	Name string
}

// Sum adds its terms. An empty sum is zero.
type Sum struct {
	Terms []Expr
}

// Product multiplies its factors. An empty product is one.
type Product struct {
	Factors []Expr
}

func (Constant) isExpr()  {}
func (Param) isExpr()     {}
func (Attribute) isExpr() {}
func (Sum) isExpr()       {}
func (Product) isExpr()   {}

// Env supplies values for parameters and attributes during evaluation.
type Env interface {
	Param(name string) (float64, bool)
	Attribute(name string) (float64, bool)
}

// UnboundError is returned by Eval when a name has no value in the Env.
type UnboundError struct {
	Kind string
	Name string
}

func (e *UnboundError) Error() string {
	return fmt.Sprintf("unbound %s %q", e.Kind, e.Name)
}

// Eval evaluates e in env.
func Eval(e Expr, env Env) (float64, error) {
	switch n := e.(type) {
	case Constant:
		return n.Value, nil
	case Param:
		v, ok := env.Param(n.Name)
		if !ok {
			return 0, &UnboundError{Kind: "parameter", Name: n.Name}
		}
		return v, nil
	case Attribute:
		v, ok := env.Attribute(n.Name)
		if !ok {
			return 0, &UnboundError{Kind: "attribute", Name: n.Name}
		}
		return v, nil
	case Sum:
		total := 0.0
		for _, t := range n.Terms {
			v, err := Eval(t, env)
			if err != nil {
				return 0, err
			}
			total += v
		}
		return total, nil
	case Product:
		total := 1.0
		for _, f := range n.Factors {
			v, err := Eval(f, env)
			if err != nil {
				return 0, err
			}
			total *= v
		}
		return total, nil
	case nil:
		return 0, fmt.Errorf("nil expression")
	}
	return 0, fmt.Errorf("unknown expression node %T", e)
}

// Params returns the sorted, de-duplicated parameter names referenced by e.
func Params(e Expr) []string {
	seen := map[string]bool{}
	walk(e, func(n Expr) {
		if p, ok := n.(Param); ok {
			seen[p.Name] = true
		}
	})
	return sortedKeys(seen)
}

// Attributes returns the sorted, de-duplicated attribute names referenced by e.
func Attributes(e Expr) []string {
	seen := map[string]bool{}
	walk(e, func(n Expr) {
		if a, ok := n.(Attribute); ok {
			seen[a.Name] = true
		}
	})
	return sortedKeys(seen)
}

func walk(e Expr, visit func(Expr)) {
	visit(e)
	switch n := e.(type) {
	case Sum:
		for _, t := range n.Terms {
			walk(t, visit)
		}
	case Product:
		for _, f := range n.Factors {
			walk(f, visit)
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Derive returns the partial derivative of e with respect to the parameter
// named param. Attributes are treated as constants.
func Derive(e Expr, param string) Expr {
	switch n := e.(type) {
	case Constant, Attribute:
		return Constant{}
	case Param:
		if n.Name == param {
			return Constant{Value: 1}
		}
		return Constant{}
	case Sum:
		terms := make([]Expr, 0, len(n.Terms))
		for _, t := range n.Terms {
			terms = append(terms, Derive(t, param))
		}
		return Simplify(Sum{Terms: terms})
	case Product:
		// d(f1*f2*...*fk) = sum_i (df_i * prod_{j!=i} f_j)
		terms := make([]Expr, 0, len(n.Factors))
		for i, f := range n.Factors {
			df := Simplify(Derive(f, param))
			if isZero(df) {
				continue
			}
			factors := make([]Expr, 0, len(n.Factors))
			for j, g := range n.Factors {
				if j == i {
					factors = append(factors, df)
				} else {
					factors = append(factors, g)
				}
			}
			terms = append(terms, Product{Factors: factors})
		}
		return Simplify(Sum{Terms: terms})
	}
	return Constant{}
}

// Simplify folds constants and removes neutral elements. It never changes
// the value of the expression.
func Simplify(e Expr) Expr {
	switch n := e.(type) {
	case Sum:
		var terms []Expr
		acc := 0.0
		for _, t := range n.Terms {
			s := Simplify(t)
			if inner, ok := s.(Sum); ok {
				for _, it := range inner.Terms {
					if c, ok := it.(Constant); ok {
						acc += c.Value
					} else {
						terms = append(terms, it)
					}
				}
				continue
			}
			if c, ok := s.(Constant); ok {
				acc += c.Value
				continue
			}
			terms = append(terms, s)
		}
		if acc != 0 {
			terms = append(terms, Constant{Value: acc})
		}
		switch len(terms) {
		case 0:
			return Constant{}
		case 1:
			return terms[0]
		}
		return Sum{Terms: terms}
	case Product:
		var factors []Expr
		acc := 1.0
		for _, f := range n.Factors {
			s := Simplify(f)
			if inner, ok := s.(Product); ok {
				for _, it := range inner.Factors {
					if c, ok := it.(Constant); ok {
						acc *= c.Value
					} else {
						factors = append(factors, it)
					}
				}
				continue
			}
			if c, ok := s.(Constant); ok {
				acc *= c.Value
				continue
			}
			factors = append(factors, s)
		}
		if acc == 0 {
			return Constant{}
		}
		if acc != 1 {
			factors = append([]Expr{Constant{Value: acc}}, factors...)
		}
		switch len(factors) {
		case 0:
			return Constant{Value: 1}
		case 1:
			return factors[0]
		}
		return Product{Factors: factors}
	}
	return e
}

func isZero(e Expr) bool {
	c, ok := e.(Constant)
	return ok && c.Value == 0
}

// String renders e in infix notation, e.g. "asc2 + b_cost * cost2".
func String(e Expr) string {
	switch n := e.(type) {
	case Constant:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case Param:
		return n.Name
	case Attribute:
		return n.Name
	case Sum:
		if len(n.Terms) == 0 {
			return "0"
		}
		parts := make([]string, len(n.Terms))
		for i, t := range n.Terms {
			parts[i] = String(t)
		}
		return strings.Join(parts, " + ")
	case Product:
		if len(n.Factors) == 0 {
			return "1"
		}
		parts := make([]string, len(n.Factors))
		for i, f := range n.Factors {
			s := String(f)
			if _, ok := f.(Sum); ok {
				s = "(" + s + ")"
			}
			parts[i] = s
		}
		return strings.Join(parts, " * ")
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("<%T>", e)
}

// Term is a coefficient multiplying an attribute.
type Term struct {
	Param     string
	Attribute string
}

// Linear builds asc + sum(param_i * attribute_i). An empty asc omits the
// constant.
func Linear(asc string, terms ...Term) Expr {
	out := make([]Expr, 0, len(terms)+1)
	if asc != "" {
		out = append(out, Param{Name: asc})
	}
	for _, t := range terms {
		out = append(out, Product{Factors: []Expr{Param{Name: t.Param}, Attribute{Name: t.Attribute}}})
	}
	return Sum{Terms: out}
}
