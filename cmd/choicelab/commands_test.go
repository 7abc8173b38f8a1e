package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/choicelab/choicelab/internal/dataset"
	"github.com/choicelab/choicelab/internal/models"
	"github.com/choicelab/choicelab/internal/projectconfig"
)

const scaledCostModel = `
name: scaled-cost
parameters:
  - name: asc2
  - name: b_cost
    start: -0.1
  - name: b_time
utilities:
  1:
    sum:
      - {param: b_cost, attr: cost1}
      - {param: b_time, attr: time1}
  2:
    sum:
      - param: asc2
      - {param: b_cost, attr: cost2}
      - {param: b_time, attr: time2}
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projectconfig.FileName), []byte(content), 0o644))
}

// generateData writes a dataset of n respondents to dir and returns its path.
func generateData(t *testing.T, dir string, n int, seed, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	_, err := runCLI(t, "--config", dir, "generate", "--respondents", strconv.Itoa(n), "--seed", seed, "--out", p)
	require.NoError(t, err)
	return p
}

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "data", "choices.csv")

	out, err := runCLI(t, "--config", dir, "generate", "--respondents", "50", "--seed", "3", "--out", p)
	require.NoError(t, err)

	assert.Contains(t, out, "Wrote 250 observations (50 respondents x 5 tasks, seed 3)")
	assert.Contains(t, out, "Choice shares: alternative 1")

	obs, err := dataset.Load(p)
	require.NoError(t, err)
	assert.Len(t, obs, 250)
	assert.Equal(t, 1, obs[0].RespondentID)
	assert.Equal(t, 50, obs[len(obs)-1].RespondentID)
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := generateData(t, dir, 40, "11", "a.csv")
	b := generateData(t, dir, 40, "11", "b.csv")
	c := generateData(t, dir, 40, "12", "c.csv")

	da, err := os.ReadFile(a)
	require.NoError(t, err)
	db, err := os.ReadFile(b)
	require.NoError(t, err)
	dc, err := os.ReadFile(c)
	require.NoError(t, err)

	assert.Equal(t, da, db, "same seed must give byte-identical files")
	assert.NotEqual(t, da, dc)
}

func TestGenerateCommand_UsesConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "configured.csv.gz")
	writeConfig(t, dir, "generate:\n  respondents: 20\n  tasks:\n    - {cost1: 4, time1: 35, cost2: 8, time2: 25}\n    - {cost1: 8, time1: 15, cost2: 3, time2: 50}\noutput:\n  data: "+p+"\n")

	out, err := runCLI(t, "--config", dir, "generate")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 40 observations (20 respondents x 2 tasks, seed 42)")

	obs, err := dataset.Load(p)
	require.NoError(t, err)
	assert.Len(t, obs, 40)
}

func TestGenerateCommand_InvalidRespondents(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--config", dir, "generate", "--respondents", "0", "--out", filepath.Join(dir, "x.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "respondents must be positive")
	assert.NoFileExists(t, filepath.Join(dir, "x.csv"))
}

func TestEstimateCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	data := generateData(t, dir, 200, "42", "choices.csv")

	out, err := runCLI(t, "--config", dir, "estimate", "--data", data, "--format", "json")
	require.NoError(t, err)

	var report models.EstimationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err, "run id should be a uuid")
	assert.False(t, report.Timestamp.IsZero())
	assert.Equal(t, data, report.DataPath)
	require.NotNil(t, report.Result)
	assert.Equal(t, "with-asc", report.Result.Model)
	assert.Equal(t, 1000, report.Result.SampleSize)
	assert.Equal(t, 3, report.Result.NumParams)
	require.NotNil(t, report.VTT)
	assert.Greater(t, report.VTT.StdErr, 0.0)
}

func TestEstimateCommand_TableComparesModels(t *testing.T) {
	dir := t.TempDir()
	data := generateData(t, dir, 200, "42", "choices.csv.zst")

	out, err := runCLI(t, "--config", dir, "estimate", "--data", data, "--model", "with-asc", "--model", "without-asc")
	require.NoError(t, err)

	assert.Contains(t, out, "Model: with-asc (1,000 observations, 3 free parameters)")
	assert.Contains(t, out, "Model: without-asc (1,000 observations, 2 free parameters)")
	assert.Equal(t, 2, strings.Count(out, "Run "))
	assert.Contains(t, out, "Value of time:")
}

func TestEstimateCommand_ModelFile(t *testing.T) {
	dir := t.TempDir()
	data := generateData(t, dir, 200, "42", "choices.xlsx")
	model := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(model, []byte(scaledCostModel), 0o644))

	out, err := runCLI(t, "--config", dir, "estimate", "--data", data, "--model", model, "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Estimation results")
	assert.Contains(t, out, "scaled-cost")
}

func TestEstimateCommand_Rows(t *testing.T) {
	dir := t.TempDir()
	data := generateData(t, dir, 200, "42", "choices.csv")

	out, err := runCLI(t, "--config", dir, "estimate", "--data", data, "--rows", "1:500", "--format", "json")
	require.NoError(t, err)

	var report models.EstimationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 500, report.Result.SampleSize)
}

func TestEstimateCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	data := generateData(t, dir, 20, "1", "choices.csv")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unsupported format", []string{"--data", data, "--format", "pdf"}, "unsupported format"},
		{"unknown model", []string{"--data", data, "--model", filepath.Join(dir, "missing.yaml")}, "reading model file"},
		{"missing data", []string{"--data", filepath.Join(dir, "none.csv")}, "none.csv"},
		{"bad rows", []string{"--data", data, "--rows", "10"}, "START:END"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", dir, "estimate"}, tt.args...)
			_, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, ExitError, exitCode(err))
		})
	}
}

func TestParseRowRange(t *testing.T) {
	tests := []struct {
		input     string
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{"1:10", 1, 10, false},
		{" 5 : 6 ", 5, 6, false},
		{"10", 0, 0, true},
		{"a:3", 0, 0, true},
		{"3:b", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			start, end, err := parseRowRange(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestDemoCommand(t *testing.T) {
	dir := t.TempDir()
	saved := filepath.Join(dir, "scenario-a.csv")

	out, err := runCLI(t, "--config", dir, "demo", "--out", saved)
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario A: 1,000 observations from 200 respondents (seed 42)")
	assert.Contains(t, out, "Model: with-asc")
	assert.Contains(t, out, "Model: without-asc")
	assert.Contains(t, out, "Comparison")
	assert.Contains(t, out, "True value of time: 15.00 per hour")
	assert.FileExists(t, saved)

	obs, err := dataset.Load(saved)
	require.NoError(t, err)
	require.Len(t, obs, 1000)
	assert.Equal(t, models.Task{Cost1: 4, Time1: 35, Cost2: 8, Time2: 25}, obs[0].Task)
}

func TestDemoCommand_Formats(t *testing.T) {
	tests := []struct {
		format string
		want   []string
	}{
		{"markdown", []string{"# Misspecification demo", "| Parameter |", "without-asc"}},
		{"html", []string{"<h1>Misspecification demo</h1>", "<table>"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			out, err := runCLI(t, "--config", dir, "demo", "--respondents", "100", "--format", tt.format)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			assert.NotContains(t, out, "Scenario A:")
		})
	}
}

func TestDemoCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "--config", dir, "demo", "--format", "json")
	require.NoError(t, err)

	var reports []models.EstimationReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, "with-asc", reports[0].Result.Model)
	assert.Equal(t, "without-asc", reports[1].Result.Model)
	assert.Less(t, reports[1].Result.FinalLL, reports[0].Result.FinalLL)
	assert.NotEqual(t, reports[0].RunID, reports[1].RunID)
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, "--config", dir, "simulate",
		"--replications", "3", "--respondents", "100", "--workers", "2", "--seed", "5", "--format", "json")
	require.NoError(t, err)

	var summary models.SimulationSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.Replications)
	assert.Equal(t, 100, summary.Respondents)
	assert.Equal(t, int64(5), summary.Seed)
	require.Len(t, summary.Models, 2)
	assert.Equal(t, "with-asc", summary.Models[0].Model)
	assert.Equal(t, "without-asc", summary.Models[1].Model)
}

func TestSimulateCommand_Table(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "simulate:\n  replications: 2\n  workers: 1\ngenerate:\n  respondents: 80\n")

	out, err := runCLI(t, "--config", dir, "simulate", "--model", "with-asc")
	require.NoError(t, err)
	assert.Contains(t, out, "Monte Carlo study: 2 replications of 80 respondents (seed 42)")
	assert.Contains(t, out, "Model: with-asc")
}

func TestSimulateCommand_RejectsMarkdown(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--config", dir, "simulate", "--format", "markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}

	t.Run("valid", func(t *testing.T) {
		out, err := runCLI(t, "validate", write("ok.yaml", scaledCostModel))
		require.NoError(t, err)
		assert.Contains(t, out, `is valid: model "scaled-cost", 2 alternatives, 3 free parameters (asc2, b_cost, b_time)`)
	})

	t.Run("schema violation", func(t *testing.T) {
		out, err := runCLI(t, "validate", write("bad.yaml", "name: broken\nparameters: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "schema violation")
		assert.Contains(t, out, "does not match the model schema")
	})

	t.Run("unknown attribute", func(t *testing.T) {
		content := strings.Replace(scaledCostModel, "attr: time2", "attr: comfort", 1)
		out, err := runCLI(t, "validate", write("attr.yaml", content))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "comfort")
		assert.Contains(t, out, "✗")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runCLI(t, "validate", filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading model file")
	})
}

func TestInitCommand_Yes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, err := runCLI(t, "init", dir, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized project config:")
	assert.FileExists(t, filepath.Join(dir, projectconfig.FileName))

	cfg, err := projectconfig.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, projectconfig.DefaultRespondents, cfg.Generate.Respondents)

	// A second run refuses to overwrite unless forced.
	_, err = runCLI(t, "init", dir, "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCLI(t, "init", dir, "--yes", "--force")
	require.NoError(t, err)
}

func TestInitCommand_Interactive(t *testing.T) {
	dir := t.TempDir()

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	// Accessible mode: respondents, seed, replications, workers, path, format=3 (markdown)
	root.SetIn(strings.NewReader("300\n9\n25\n3\nrun.csv.gz\n3\n"))
	root.SetArgs([]string{"init", dir})
	require.NoError(t, root.Execute())

	cfg, err := projectconfig.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Generate.Respondents)
	assert.Equal(t, int64(9), cfg.SeedValue())
	assert.Equal(t, 25, cfg.Simulate.Replications)
	assert.Equal(t, 3, cfg.Simulate.Workers)
	assert.Equal(t, "run.csv.gz", cfg.Output.Data)
	assert.Equal(t, "markdown", cfg.Estimate.Format)
}
