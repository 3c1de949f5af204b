package calculation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deltas(vs ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(vs))
	for i, v := range vs {
		out[i] = d(v)
	}
	return out
}

func TestSensitivity_Deterministic(t *testing.T) {
	req := domain.SensitivityRequest{
		Variables: []domain.Perturbation{
			{Variable: domain.VarReturnMean, Deltas: deltas(0.01, -0.01)},
			{Variable: domain.VarInflationRate, Deltas: deltas(0.01)},
			{Variable: domain.VarRetirementAge, Deltas: deltas(2, -2)},
			{Variable: domain.VarReturnMean, Deltas: deltas(0.01)},
		},
	}
	result, err := NewEngine().Sensitivity(context.Background(), testProfile(), testAssumptions(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.SensitivityDeterministic, result.Mode)
	assert.Zero(t, result.Trials)
	assert.Nil(t, result.Baseline.SuccessRate)

	require.Len(t, result.Variables, 3)
	assert.Equal(t, domain.VarInflationRate, result.Variables[0].Variable)
	assert.Equal(t, domain.VarRetirementAge, result.Variables[1].Variable)
	assert.Equal(t, domain.VarReturnMean, result.Variables[2].Variable)

	// repeated variables merge and duplicate deltas collapse
	rm := result.Variables[2]
	require.Len(t, rm.Points, 2)
	assert.True(t, rm.Points[0].Delta.Equal(d(-0.01)))
	assert.True(t, rm.Points[1].Delta.Equal(d(0.01)))
	assert.True(t, rm.Baseline.Equal(d(0.07)))
	assert.True(t, rm.Points[1].Value.Equal(d(0.08)))
	assert.True(t, rm.Points[1].RetirementBalanceChange.IsPositive())
	assert.True(t, rm.Points[0].RetirementBalanceChange.IsNegative())

	infl := result.Variables[0].Points[0]
	assert.True(t, infl.RequiredCorpusChange.IsPositive(), "more inflation needs a bigger corpus")

	ra := result.Variables[1]
	assert.True(t, ra.Baseline.Equal(decimal.NewFromInt(65)))
	assert.True(t, ra.Points[0].Value.Equal(decimal.NewFromInt(63)))
	assert.True(t, ra.Points[1].RetirementBalanceChange.IsPositive(), "working longer grows the nest egg")

	for _, v := range result.Variables {
		for _, p := range v.Points {
			assert.True(t, p.RequiredCorpusChange.Equal(p.Metrics.RequiredCorpus.Sub(result.Baseline.RequiredCorpus)))
			assert.Nil(t, p.SuccessRateChange)
		}
	}
}

func TestSensitivity_BaselineMatchesProjection(t *testing.T) {
	engine := NewEngine()
	result, err := engine.Sensitivity(context.Background(), testProfile(), testAssumptions(), domain.SensitivityRequest{
		Variables: []domain.Perturbation{{Variable: domain.VarSavingsRate, Deltas: deltas(0.05)}},
	})
	require.NoError(t, err)

	projection, err := engine.ProjectDeterministic(testProfile(), testAssumptions())
	require.NoError(t, err)
	assert.True(t, result.Baseline.RetirementBalance.Equal(projection.RetirementBalance))
	assert.True(t, result.Baseline.FinalBalance.Equal(projection.FinalBalance))
	assert.True(t, result.Baseline.RequiredCorpus.Equal(projection.RequiredCorpus))
}

func TestSensitivity_Stochastic(t *testing.T) {
	profile := testProfile()
	profile.CurrentAge, profile.RetirementAge, profile.LifeExpectancy = 58, 62, 80

	req := domain.SensitivityRequest{
		Mode:      domain.SensitivityStochastic,
		Variables: []domain.Perturbation{{Variable: domain.VarWithdrawalRate, Deltas: deltas(0.02)}},
		Trials:    200,
		Seed:      seedPtr(17),
		Workers:   3,
	}
	engine := NewEngine()
	first, err := engine.Sensitivity(context.Background(), profile, testAssumptions(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, first.Trials)
	assert.Equal(t, int64(17), first.Seed)
	require.NotNil(t, first.Baseline.SuccessRate)

	point := first.Variables[0].Points[0]
	require.NotNil(t, point.Metrics.SuccessRate)
	require.NotNil(t, point.SuccessRateChange)
	assert.True(t, point.SuccessRateChange.Equal(point.Metrics.SuccessRate.Sub(*first.Baseline.SuccessRate)))
	assert.False(t, point.SuccessRateChange.IsPositive(), "withdrawing more cannot raise the success rate")

	req.Workers = 1
	second, err := engine.Sensitivity(context.Background(), profile, testAssumptions(), req)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second, decimalComparer); diff != "" {
		t.Errorf("stochastic sensitivity is not reproducible:\n%s", diff)
	}
}

func TestSensitivity_StochasticDefaultTrials(t *testing.T) {
	profile := testProfile()
	profile.CurrentAge, profile.RetirementAge, profile.LifeExpectancy = 60, 62, 70

	result, err := NewEngine().Sensitivity(context.Background(), profile, testAssumptions(), domain.SensitivityRequest{
		Mode:      domain.SensitivityStochastic,
		Variables: []domain.Perturbation{{Variable: domain.VarReturnStdDev, Deltas: deltas(0.05)}},
		Seed:      seedPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultSensitivityTrials, result.Trials)
}

func TestSensitivity_AssetClassesShiftTogether(t *testing.T) {
	a := testAssumptions()
	a.AssetClasses = []domain.AssetClass{
		{Name: "stocks", Weight: d(0.6), Mean: d(0.09), StdDev: d(0.18)},
		{Name: "bonds", Weight: d(0.4), Mean: d(0.04), StdDev: d(0.06)},
	}
	result, err := NewEngine().Sensitivity(context.Background(), testProfile(), a, domain.SensitivityRequest{
		Variables: []domain.Perturbation{{Variable: domain.VarReturnMean, Deltas: deltas(0.01)}},
	})
	require.NoError(t, err)

	v := result.Variables[0]
	assert.True(t, v.Baseline.Equal(d(0.07)))
	assert.True(t, v.Points[0].Value.Equal(d(0.08)))
	// the caller's asset classes are untouched
	assert.True(t, a.AssetClasses[0].Mean.Equal(d(0.09)))
}

func TestSensitivity_ValidatesBeforeRunning(t *testing.T) {
	cases := []struct {
		name  string
		req   domain.SensitivityRequest
		field string
	}{
		{
			name:  "fractional age",
			req:   domain.SensitivityRequest{Variables: []domain.Perturbation{{Variable: domain.VarSavingsRate, Deltas: deltas(0.01)}, {Variable: domain.VarRetirementAge, Deltas: deltas(1.5)}}},
			field: "retirement_age",
		},
		{
			name:  "perturbed value out of range",
			req:   domain.SensitivityRequest{Variables: []domain.Perturbation{{Variable: domain.VarSavingsRate, Deltas: deltas(1)}}},
			field: "savings_rate",
		},
		{
			name:  "unknown variable",
			req:   domain.SensitivityRequest{Variables: []domain.Perturbation{{Variable: "hair_color", Deltas: deltas(1)}}},
			field: "sensitivity.variables",
		},
		{
			name:  "no variables",
			req:   domain.SensitivityRequest{},
			field: "sensitivity.variables",
		},
		{
			name:  "unknown mode",
			req:   domain.SensitivityRequest{Mode: "quantum", Variables: []domain.Perturbation{{Variable: domain.VarSavingsRate, Deltas: deltas(0.01)}}},
			field: "sensitivity.mode",
		},
		{
			name:  "negative trials",
			req:   domain.SensitivityRequest{Mode: domain.SensitivityStochastic, Trials: -1, Variables: []domain.Perturbation{{Variable: domain.VarSavingsRate, Deltas: deltas(0.01)}}},
			field: "sensitivity.trials",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log := &recordingLogger{}
			engine := NewEngine()
			engine.SetLogger(log)

			result, err := engine.Sensitivity(context.Background(), testProfile(), testAssumptions(), tc.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, domain.ErrConfiguration))
			assert.True(t, strings.Contains(err.Error(), tc.field), "error %q should name %s", err, tc.field)
			assert.Zero(t, log.count(), "no run may start before validation finishes")
		})
	}
}

func TestGroupPerturbations(t *testing.T) {
	got := groupPerturbations([]domain.Perturbation{
		{Variable: domain.VarSavingsRate, Deltas: deltas(0.02, -0.01, 0.02)},
		{Variable: domain.VarCurrentIncome, Deltas: deltas(5000)},
		{Variable: domain.VarSavingsRate, Deltas: deltas(-0.01, 0.03)},
	})
	want := []domain.Perturbation{
		{Variable: domain.VarCurrentIncome, Deltas: deltas(5000)},
		{Variable: domain.VarSavingsRate, Deltas: deltas(-0.01, 0.02, 0.03)},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("groupPerturbations mismatch (-want +got):\n%s", diff)
	}
}

func TestPerturbCoversEveryVariable(t *testing.T) {
	for _, v := range domain.SensitivityVariables {
		delta := d(0.01)
		if v.IsAge() {
			delta = decimal.NewFromInt(1)
		}
		if v == domain.VarCurrentIncome {
			delta = decimal.NewFromInt(1000)
		}
		p, a, value, err := perturb(testProfile(), testAssumptions(), v, delta)
		require.NoError(t, err, v)
		base := baselineValue(testProfile(), testAssumptions(), v)
		assert.True(t, value.Equal(base.Add(delta)), "%s: %s != %s + %s", v, value, base, delta)
		assert.NoError(t, p.Validate(), v)
		assert.NoError(t, a.WithDefaults().Validate(), v)
	}
}

func TestSensitivity_InflationScenario(t *testing.T) {
	result, err := NewEngine().Sensitivity(context.Background(), scenarioProfile(), scenarioAssumptions(0.15), domain.SensitivityRequest{
		Mode:      domain.SensitivityStochastic,
		Variables: []domain.Perturbation{{Variable: domain.VarInflationRate, Deltas: deltas(0.01, 0.02)}},
		Trials:    2000,
		Seed:      seedPtr(42),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Baseline.SuccessRate)
	require.Len(t, result.Variables, 1)

	points := result.Variables[0].Points
	require.Len(t, points, 2)
	assert.True(t, points[0].Value.Equal(d(0.035)))
	assert.True(t, points[1].Value.Equal(d(0.045)))

	prev := *result.Baseline.SuccessRate
	for _, p := range points {
		require.NotNil(t, p.Metrics.SuccessRate)
		assert.True(t, p.Metrics.SuccessRate.LessThanOrEqual(prev),
			"inflation +%s raised success from %s to %s", p.Delta, prev, *p.Metrics.SuccessRate)
		prev = *p.Metrics.SuccessRate
	}
}
