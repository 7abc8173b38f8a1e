package reporting

import (
	"strings"
	"testing"

	"github.com/choicelab/choicelab/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReports() []*models.EstimationReport {
	without := &models.EstimationResult{
		Model: "without-asc",
		Parameters: []models.ParameterEstimate{
			{Name: "b_cost", Value: 0.0612, RobustStdErr: 0.03},
			{Name: "b_time", Value: -0.0203, RobustStdErr: 0.008},
		},
		FinalLL:    -624.9,
		NullLL:     -693.147,
		NumParams:  2,
		SampleSize: 1000,
	}
	return []*models.EstimationReport{
		{Result: sampleResult(), VTT: &models.ValueOfTime{Estimate: 14.71, StdErr: 3.1, Lower: 8.63, Upper: 20.79}},
		{Result: without, VTT: &models.ValueOfTime{Estimate: -19.9, StdErr: 9, Lower: -37.54, Upper: -2.26}},
	}
}

func TestFormatMarkdown(t *testing.T) {
	truth := models.DefaultTrueParams()
	md := FormatMarkdown("Misspecification demo", &truth, sampleReports()...)

	assert.True(t, strings.HasPrefix(md, "# Misspecification demo\n"))
	assert.Contains(t, md, "| Parameter | True | with-asc | without-asc |")
	assert.Contains(t, md, "| `asc2` | 1.0000 | 0.9812 (0.1150) |  |")
	assert.Contains(t, md, "| `asc1` | 0.0000 | 0.0000 (fixed) |  |")
	assert.Contains(t, md, "| `b_cost` | -0.4000 | -0.4123 (0.0760) | 0.0612 (0.0300) |")
	assert.Contains(t, md, "| Final log-likelihood | -574.610 | -624.900 |")
	assert.Contains(t, md, "| Observations | 1,000 | 1,000 |")
	assert.Contains(t, md, "Consistent with the true value 15.00")
	assert.Contains(t, md, "Wrong sign: -19.90")
}

func TestFormatMarkdown_NoTruth(t *testing.T) {
	reports := sampleReports()[:1]
	reports[0].VTT = nil
	md := FormatMarkdown("Estimation", nil, reports...)

	assert.Contains(t, md, "| Parameter | with-asc |")
	assert.NotContains(t, md, "True")
	assert.NotContains(t, md, "Value of travel time")
}

func TestRenderHTML(t *testing.T) {
	truth := models.DefaultTrueParams()
	html, err := RenderHTML(FormatMarkdown("Misspecification demo", &truth, sampleReports()...))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Misspecification demo</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<th>without-asc</th>")
	assert.Contains(t, html, "<code>b_time</code>")
}
