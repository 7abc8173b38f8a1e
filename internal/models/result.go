package models

import "time"

// ParameterEstimate is the estimate of a single utility parameter.
type ParameterEstimate struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	StdErr       float64 `json:"std_err"`
	RobustStdErr float64 `json:"robust_std_err"`
	TStat        float64 `json:"robust_t_stat"`
	PValue       float64 `json:"robust_p_value"`
	Fixed        bool    `json:"fixed,omitempty"`
}

// EstimationResult is the outcome of one maximum-likelihood estimation.
type EstimationResult struct {
	Model        string              `json:"model"`
	Parameters   []ParameterEstimate `json:"parameters"`
	FinalLL      float64             `json:"final_log_likelihood"`
	NullLL       float64             `json:"null_log_likelihood"`
	InitLL       float64             `json:"init_log_likelihood"`
	NumParams    int                 `json:"num_parameters"`
	SampleSize   int                 `json:"sample_size"`
	RhoSquare    float64             `json:"rho_square"`
	RhoBarSquare float64             `json:"rho_bar_square"`
	AIC          float64             `json:"aic"`
	BIC          float64             `json:"bic"`
	Iterations   int                 `json:"iterations"`
	Status       string              `json:"optimizer_status"`

	// FreeNames orders the rows and columns of RobustCov.
	FreeNames []string    `json:"free_parameters"`
	RobustCov [][]float64 `json:"robust_covariance"`
}

// Parameter returns the estimate with the given name.
func (r *EstimationResult) Parameter(name string) (ParameterEstimate, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterEstimate{}, false
}

// Covariance returns the robust covariance between two free parameters.
func (r *EstimationResult) Covariance(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, n := range r.FreeNames {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return r.RobustCov[i][j], true
}

// EstimationReport wraps a result with run metadata for persistence.
type EstimationReport struct {
	RunID     string            `json:"run_id"`
	Timestamp time.Time         `json:"timestamp"`
	DataPath  string            `json:"data,omitempty"`
	Result    *EstimationResult `json:"result"`
	VTT       *ValueOfTime      `json:"value_of_time,omitempty"`
}

// ValueOfTime is an implied value of travel time with its delta-method
// standard error, in currency per hour.
type ValueOfTime struct {
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_err"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// ParameterSummary aggregates one parameter over Monte Carlo replications.
type ParameterSummary struct {
	Name       string  `json:"name"`
	True       float64 `json:"true"`
	HasTrue    bool    `json:"has_true"`
	Mean       float64 `json:"mean"`
	Bias       float64 `json:"bias"`
	StdDev     float64 `json:"std_dev"`
	MeanStdErr float64 `json:"mean_robust_std_err"`
	RMSE       float64 `json:"rmse"`
	Coverage   float64 `json:"coverage_95"`
}

// ModelSummary aggregates one model over Monte Carlo replications.
type ModelSummary struct {
	Model        string             `json:"model"`
	Replications int                `json:"replications"`
	Failed       int                `json:"failed"`
	MeanFinalLL  float64            `json:"mean_final_log_likelihood"`
	Parameters   []ParameterSummary `json:"parameters"`
	VTTMean      float64            `json:"vtt_mean"`
	VTTLower     float64            `json:"vtt_p025"`
	VTTUpper     float64            `json:"vtt_p975"`
	VTTMeanLower float64            `json:"vtt_mean_ci_lower"`
	VTTMeanUpper float64            `json:"vtt_mean_ci_upper"`
}

// SimulationSummary is the output of a Monte Carlo study.
type SimulationSummary struct {
	Replications int            `json:"replications"`
	Respondents  int            `json:"respondents"`
	Seed         int64          `json:"seed"`
	Truth        TrueParams     `json:"truth"`
	TrueVTT      float64        `json:"true_vtt"`
	Models       []ModelSummary `json:"models"`
}
