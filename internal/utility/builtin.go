package utility

import (
	"fmt"

	"github.com/choicelab/choicelab/internal/expr"
	"github.com/choicelab/choicelab/internal/models"
)

// Names of the built-in models.
const (
	ModelWithASC    = "with-asc"
	ModelWithoutASC = "without-asc"
)

// Conventional parameter names used by the built-in models.
const (
	ParamASC1     = "asc1"
	ParamASC2     = "asc2"
	ParamBetaCost = "b_cost"
	ParamBetaTime = "b_time"
)

// WithASC is the correctly specified model: alternative 2 carries a
// constant, alternative 1 is the reference with asc1 fixed at zero.
func WithASC() *Specification {
	return &Specification{
		Name: ModelWithASC,
		Parameters: []Parameter{
			{Name: ParamASC1, Fixed: true},
			{Name: ParamASC2},
			{Name: ParamBetaCost},
			{Name: ParamBetaTime},
		},
		Utilities: map[int]expr.Expr{
			1: expr.Linear(ParamASC1,
				expr.Term{Param: ParamBetaCost, Attribute: models.AttrCost1},
				expr.Term{Param: ParamBetaTime, Attribute: models.AttrTime1}),
			2: expr.Linear(ParamASC2,
				expr.Term{Param: ParamBetaCost, Attribute: models.AttrCost2},
				expr.Term{Param: ParamBetaTime, Attribute: models.AttrTime2}),
		},
	}
}

// WithoutASC omits the alternative-specific constant. On data generated
// with a non-zero asc2 it is misspecified.
func WithoutASC() *Specification {
	return &Specification{
		Name: ModelWithoutASC,
		Parameters: []Parameter{
			{Name: ParamBetaCost},
			{Name: ParamBetaTime},
		},
		Utilities: map[int]expr.Expr{
			1: expr.Linear("",
				expr.Term{Param: ParamBetaCost, Attribute: models.AttrCost1},
				expr.Term{Param: ParamBetaTime, Attribute: models.AttrTime1}),
			2: expr.Linear("",
				expr.Term{Param: ParamBetaCost, Attribute: models.AttrCost2},
				expr.Term{Param: ParamBetaTime, Attribute: models.AttrTime2}),
		},
	}
}

// Builtin returns a built-in model by name.
func Builtin(name string) (*Specification, error) {
	switch name {
	case ModelWithASC:
		return WithASC(), nil
	case ModelWithoutASC:
		return WithoutASC(), nil
	}
	return nil, fmt.Errorf("unknown built-in model %q (want %s or %s)", name, ModelWithASC, ModelWithoutASC)
}

// Resolve returns the built-in model with the given name, or loads the
// model file at that path.
func Resolve(nameOrPath string) (*Specification, error) {
	if nameOrPath == ModelWithASC || nameOrPath == ModelWithoutASC {
		return Builtin(nameOrPath)
	}
	return Load(nameOrPath)
}
