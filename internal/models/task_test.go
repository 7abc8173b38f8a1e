package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservationValue(t *testing.T) {
	o := Observation{RespondentID: 1, Task: Task{Cost1: 4, Time1: 35, Cost2: 8, Time2: 25}, Choice: 2}

	for _, tt := range []struct {
		name string
		want float64
	}{
		{AttrCost1, 4},
		{AttrTime1, 35},
		{AttrCost2, 8},
		{AttrTime2, 25},
	} {
		v, ok := o.Value(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.want, v, tt.name)
	}

	_, ok := o.Value(ColumnChoice)
	assert.False(t, ok, "choice is not an attribute")
	_, ok = o.Value("comfort")
	assert.False(t, ok)
}

func TestObservationResolved(t *testing.T) {
	assert.True(t, Observation{Choice: 1}.Resolved())
	assert.True(t, Observation{Choice: 2}.Resolved())
	assert.False(t, Observation{Choice: ChoiceUnresolved}.Resolved())
}

func TestDefaultTasks(t *testing.T) {
	tasks := DefaultTasks()
	require.Len(t, tasks, 5)
	assert.Equal(t, Task{Cost1: 4, Time1: 35, Cost2: 8, Time2: 25}, tasks[0])

	// Callers get their own copy.
	tasks[0].Cost1 = 99
	assert.Equal(t, 4.0, DefaultTasks()[0].Cost1)
}

func TestTrueParams(t *testing.T) {
	p := DefaultTrueParams()
	assert.InDelta(t, 15.0, p.ValueOfTime(), 1e-12)
	assert.Equal(t, "b_cost=-0.4 b_time=-0.1 asc1=0 asc2=1", p.String())

	for name, want := range map[string]float64{"b_cost": -0.4, "b_time": -0.1, "asc1": 0, "asc2": 1} {
		v, ok := p.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}
	_, ok := p.Lookup("scale")
	assert.False(t, ok)
}

func TestEstimationResultAccessors(t *testing.T) {
	res := &EstimationResult{
		Parameters: []ParameterEstimate{
			{Name: "asc1", Fixed: true},
			{Name: "b_cost", Value: -0.38},
			{Name: "b_time", Value: -0.097},
		},
		FreeNames: []string{"b_cost", "b_time"},
		RobustCov: [][]float64{{0.001, 0.0002}, {0.0002, 0.00004}},
	}

	p, ok := res.Parameter("b_time")
	require.True(t, ok)
	assert.Equal(t, -0.097, p.Value)
	_, ok = res.Parameter("asc2")
	assert.False(t, ok)

	c, ok := res.Covariance("b_cost", "b_time")
	require.True(t, ok)
	assert.Equal(t, 0.0002, c)
	v, ok := res.Covariance("b_time", "b_time")
	require.True(t, ok)
	assert.Equal(t, 0.00004, v)

	_, ok = res.Covariance("asc1", "b_cost")
	assert.False(t, ok, "fixed parameters have no covariance entry")
}
