package output

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/gocarina/gocsv"
	"github.com/rpgo/retirement-planner/internal/calculation"
	"github.com/rpgo/retirement-planner/internal/config"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestReport runs the example plan end to end with a small, seeded simulation.
func buildTestReport(t *testing.T) *Report {
	t.Helper()
	plan := config.NewInputParser().CreateExampleConfiguration()
	require.NoError(t, config.NewInputParser().ValidateConfiguration(plan))

	seed := int64(42)
	sim := domain.SimulationOptions{Trials: 200, Seed: &seed, Workers: 2}
	engine := calculation.NewEngine()

	planReport, err := engine.Plan(context.Background(), plan.Profile, plan.Assumptions, calculation.PlanOptions{
		Simulation:        sim,
		CompareStrategies: plan.Compare,
	})
	require.NoError(t, err)

	sens, err := engine.Sensitivity(context.Background(), plan.Profile, plan.Assumptions, plan.Sensitivity)
	require.NoError(t, err)

	return &Report{Plan: planReport, Sensitivity: sens}
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	content := string(out)
	for _, heading := range []string{
		"RETIREMENT PLANNING REPORT",
		"RETIREMENT NEEDS",
		"READINESS",
		"DETERMINISTIC PROJECTION (FIXED_PERCENTAGE)",
		"MONTE CARLO SIMULATION",
		"WITHDRAWAL STRATEGY COMPARISON",
		"SENSITIVITY ANALYSIS (DETERMINISTIC)",
		"Recommended:",
	} {
		assert.Contains(t, content, heading)
	}
}

func TestConsoleFormatter_CatchUpOptions(t *testing.T) {
	report := buildTestReport(t)
	report.Plan.CatchUp = []domain.CatchUpStrategy{
		{Name: "Work 2 More Years", AdditionalMonthly: decimal.NewFromInt(450), TotalAdditional: decimal.NewFromInt(97200), ExtraYears: 2, Feasibility: "high"},
	}
	out, err := ConsoleFormatter{}.Format(report)
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "CATCH-UP OPTIONS")
	assert.Contains(t, content, "Work 2 More Years")
	assert.Contains(t, content, "$450.00")

	report.Plan.CatchUp = nil
	out, err = ConsoleFormatter{}.Format(report)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "CATCH-UP OPTIONS")
}

func TestConsoleFormatter_ProjectionOnly(t *testing.T) {
	full := buildTestReport(t)
	out, err := ConsoleFormatter{}.Format(&Report{Projection: full.Plan.Projection})
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "DETERMINISTIC PROJECTION")
	assert.NotContains(t, content, "MONTE CARLO SIMULATION")
	assert.NotContains(t, content, "READINESS")
}

func TestConsoleLiteFormatter(t *testing.T) {
	out, err := ConsoleLiteFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "RETIREMENT PLAN SUMMARY"))
	assert.Contains(t, content, "Monte Carlo: success=")
	assert.Contains(t, content, "seed=42")
	assert.Contains(t, content, "Recommended: ")
}

func TestConsoleLiteFormatter_CompactAmounts(t *testing.T) {
	report := &Report{Projection: &domain.ProjectionResult{
		Strategy:          domain.StrategyFixedPercentage,
		RetirementBalance: decimal.NewFromInt(1250000),
		FinalBalance:      decimal.NewFromInt(310000),
	}}
	out, err := ConsoleLiteFormatter{}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Projection (fixed_percentage): retirement=$1.25M final=$310.0K depleted=never")
}

func TestCSVProjectionFormatter(t *testing.T) {
	report := buildTestReport(t)
	out, err := CSVProjectionFormatter{}.Format(report)
	require.NoError(t, err)

	var rows []*projectionRow
	require.NoError(t, gocsv.UnmarshalBytes(out, &rows))
	require.Len(t, rows, 55)
	assert.Equal(t, "0", rows[0].YearIndex)
	assert.Equal(t, "40", rows[0].Age)
	assert.Equal(t, "accumulation", rows[0].Phase)
	assert.Equal(t, "withdrawal", rows[25].Phase)
	assert.Equal(t, "94", rows[54].Age)
}

func TestCSVBandsFormatter(t *testing.T) {
	out, err := CSVBandsFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 56, "header plus one row per year")
	assert.Equal(t, "year_index,age,depleted_rate,p10,p25,p50,p75,p90", lines[0])
}

func TestCSVSummaryFormatter(t *testing.T) {
	out, err := CSVSummaryFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "metric,value,description\n"))
	assert.Contains(t, string(out), "Success Rate,")
	assert.Contains(t, string(out), "Seed,42,")
}

func TestCSVComparisonFormatter_KeepsRequestOrder(t *testing.T) {
	out, err := CSVComparisonFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "fixed_percentage,"))
	assert.True(t, strings.HasPrefix(lines[2], "dynamic,"))
	assert.True(t, strings.HasPrefix(lines[3], "need_based,"))
}

func TestCSVSensitivityFormatter_Ordering(t *testing.T) {
	out, err := CSVSensitivityFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	var rows []*sensitivityRow
	require.NoError(t, gocsv.UnmarshalBytes(out, &rows))
	require.Len(t, rows, 8)
	// variables sort by name, deltas ascending within each
	assert.Equal(t, "inflation_rate", rows[0].Variable)
	assert.Equal(t, "0.01", rows[0].Delta)
	assert.Equal(t, "0.02", rows[1].Delta)
	assert.Equal(t, "retirement_age", rows[2].Variable)
	assert.Equal(t, "-2", rows[2].Delta)
	assert.Equal(t, "return_mean", rows[4].Variable)
	assert.Equal(t, "savings_rate", rows[6].Variable)
	assert.Empty(t, rows[0].SuccessRate, "deterministic mode has no success rate")
}

func TestCSVFormatters_MissingSection(t *testing.T) {
	empty := &Report{}
	for _, f := range []Formatter{CSVProjectionFormatter{}, CSVBandsFormatter{}, CSVSummaryFormatter{}, CSVComparisonFormatter{}, CSVSensitivityFormatter{}} {
		_, err := f.Format(empty)
		assert.True(t, errors.Is(err, ErrMissingSection), "%s should report a missing section", f.Name())
	}
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, gojson.Unmarshal(out, &decoded))
	plan, ok := decoded["plan"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, plan, "projection")
	assert.Contains(t, plan, "simulation")
	assert.Contains(t, decoded, "sensitivity")
	assert.NotContains(t, decoded, "projection", "standalone projection is omitted when unset")
}

func TestFormatterAliasResolution(t *testing.T) {
	f := GetFormatterByName("verbose")
	require.NotNil(t, f)
	assert.Equal(t, "console", f.Name())

	f = GetFormatterByName("  CSV-MonteCarlo ")
	require.NotNil(t, f)
	assert.Equal(t, "csv-bands", f.Name())

	assert.Nil(t, GetFormatterByName("html"))
}

func TestAvailableFormatterNamesSorted(t *testing.T) {
	names := AvailableFormatterNames()
	assert.Equal(t, []string{"console", "console-lite", "csv", "csv-bands", "csv-compare", "csv-sensitivity", "csv-summary", "json"}, names)
}

func TestFormatterFunc(t *testing.T) {
	f := FormatterFunc{ID: "stub", F: func(*Report) ([]byte, error) { return []byte("ok"), nil }}
	out, err := f.Format(&Report{})
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("ok"), out))
	assert.Equal(t, "stub", f.Name())
}
