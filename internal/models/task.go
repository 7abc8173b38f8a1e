package models

import "fmt"

// Attribute names an observation exposes to utility expressions.
const (
	AttrCost1 = "cost1"
	AttrTime1 = "time1"
	AttrCost2 = "cost2"
	AttrTime2 = "time2"
)

// Reserved column names that are not attributes.
const (
	ColumnID     = "id"
	ColumnChoice = "choice"
)

// AttributeNames lists the attributes of an Observation in column order.
var AttributeNames = []string{AttrCost1, AttrTime1, AttrCost2, AttrTime2}

// ChoiceUnresolved marks an observation whose two total utilities were equal.
// No alternative is assumed for it.
const ChoiceUnresolved = 0

// Task is one binary choice situation: cost and travel time for each of the
// two alternatives.
type Task struct {
	Cost1 float64 `json:"cost1" yaml:"cost1" validate:"gte=0"`
	Time1 float64 `json:"time1" yaml:"time1" validate:"gte=0"`
	Cost2 float64 `json:"cost2" yaml:"cost2" validate:"gte=0"`
	Time2 float64 `json:"time2" yaml:"time2" validate:"gte=0"`
}

// DefaultTasks returns the five fixed choice tasks every simulated respondent
// answers, in presentation order.
func DefaultTasks() []Task {
	return []Task{
		{Cost1: 4, Time1: 35, Cost2: 8, Time2: 25},
		{Cost1: 3, Time1: 45, Cost2: 9, Time2: 20},
		{Cost1: 7, Time1: 20, Cost2: 4, Time2: 40},
		{Cost1: 2, Time1: 60, Cost2: 6, Time2: 30},
		{Cost1: 8, Time1: 15, Cost2: 3, Time2: 50},
	}
}

// Observation is a single answered task.
type Observation struct {
	RespondentID int `json:"id"`
	Task
	Choice int `json:"choice"`
}

// Value returns the named attribute of the observation.
func (o Observation) Value(name string) (float64, bool) {
	switch name {
	case AttrCost1:
		return o.Cost1, true
	case AttrTime1:
		return o.Time1, true
	case AttrCost2:
		return o.Cost2, true
	case AttrTime2:
		return o.Time2, true
	}
	return 0, false
}

// Resolved reports whether the observation carries a definite choice.
func (o Observation) Resolved() bool {
	return o.Choice != ChoiceUnresolved
}

// TrueParams holds the parameters of the data-generating process.
type TrueParams struct {
	BetaCost float64 `json:"beta_cost" yaml:"beta_cost"`
	BetaTime float64 `json:"beta_time" yaml:"beta_time"`
	ASC1     float64 `json:"asc1" yaml:"asc1"`
	ASC2     float64 `json:"asc2" yaml:"asc2"`
}

// DefaultTrueParams returns the reference DGP: cost -0.4, time -0.1 per
// minute and a unit preference for alternative 2.
func DefaultTrueParams() TrueParams {
	return TrueParams{BetaCost: -0.4, BetaTime: -0.1, ASC1: 0, ASC2: 1}
}

// ValueOfTime is the true value of travel time in currency per hour.
func (p TrueParams) ValueOfTime() float64 {
	return 60 * p.BetaTime / p.BetaCost
}

// Lookup maps the conventional parameter names of the built-in models to
// their true values.
func (p TrueParams) Lookup(name string) (float64, bool) {
	switch name {
	case "b_cost":
		return p.BetaCost, true
	case "b_time":
		return p.BetaTime, true
	case "asc1":
		return p.ASC1, true
	case "asc2":
		return p.ASC2, true
	}
	return 0, false
}

func (p TrueParams) String() string {
	return fmt.Sprintf("b_cost=%g b_time=%g asc1=%g asc2=%g", p.BetaCost, p.BetaTime, p.ASC1, p.ASC2)
}
