package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `profile:
  current_age: 40
  retirement_age: 65
  life_expectancy: 95
  current_income: 100000
  savings_rate: 0.15
  balances:
    tax_deferred: 150000
    tax_free: 50000
assumptions:
  return_mean: 0.07
  return_std_dev: 0.15
  inflation_rate: 0.03
  safe_withdrawal_rate: 0.04
simulation:
  trials: 500
  seed: 7
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.yaml", minimalYAML)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 40, plan.Profile.CurrentAge)
	assert.Equal(t, 65, plan.Profile.RetirementAge)
	assert.True(t, plan.Profile.CurrentIncome.Equal(decimal.NewFromInt(100000)))
	assert.True(t, plan.Profile.Balances[domain.TaxDeferred].Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, 500, plan.Simulation.Trials)
	require.NotNil(t, plan.Simulation.Seed)
	assert.Equal(t, int64(7), *plan.Simulation.Seed)

	// defaults are applied during validation
	assert.Equal(t, domain.StrategyFixedPercentage, plan.Assumptions.Withdrawal.Strategy)
	assert.Equal(t, domain.DistributionNormal, plan.Assumptions.Distribution.Kind)
	assert.True(t, plan.Profile.DesiredIncomeRatio.Equal(decimal.NewFromFloat(0.8)))
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	plan, err := NewInputParser().LoadFromFile("nonexistent.yaml")
	assert.Error(t, err)
	assert.Nil(t, plan)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "profile: [unclosed\n")

	plan, err := NewInputParser().LoadFromFile(path)
	assert.Error(t, err)
	assert.Nil(t, plan)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFromFile_InvalidProfile(t *testing.T) {
	bad := `profile:
  current_age: 70
  retirement_age: 65
  life_expectancy: 95
assumptions:
  return_mean: 0.07
  inflation_rate: 0.03
  safe_withdrawal_rate: 0.04
`
	path := writeFile(t, t.TempDir(), "plan.yaml", bad)

	_, err := NewInputParser().LoadFromFile(path)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "profile.retirement_age")
}

func TestLoadFromFile_TOML(t *testing.T) {
	content := `[profile]
current_age = 40
retirement_age = 65
life_expectancy = 95
current_income = "100000"
savings_rate = "0.15"

[profile.balances]
tax_deferred = "150000"

[assumptions]
return_mean = "0.07"
return_std_dev = "0.15"
inflation_rate = "0.03"
safe_withdrawal_rate = "0.04"

[assumptions.withdrawal]
strategy = "dynamic"

[simulation]
trials = 250
`
	path := writeFile(t, t.TempDir(), "plan.toml", content)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyDynamic, plan.Assumptions.Withdrawal.Strategy)
	assert.True(t, plan.Assumptions.ReturnMean.Equal(decimal.NewFromFloat(0.07)))
	assert.Equal(t, 250, plan.Simulation.Trials)
}

func TestLoadFromFile_JSON(t *testing.T) {
	content := `{
  "profile": {
    "current_age": 50, "retirement_age": 60, "life_expectancy": 90,
    "current_income": "80000", "savings_rate": "0.1",
    "balances": {"taxable": "200000"}
  },
  "assumptions": {
    "return_mean": "0.06", "return_std_dev": "0.12",
    "inflation_rate": "0.025", "safe_withdrawal_rate": "0.04"
  },
  "compare": ["fixed_percentage", "need_based"]
}`
	path := writeFile(t, t.TempDir(), "plan.json", content)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, plan.Profile.CurrentAge)
	assert.Equal(t, []domain.StrategyID{domain.StrategyFixedPercentage, domain.StrategyNeedBased}, plan.Compare)
}

func TestLoadFromFile_HistoricalReturnsResolvedRelativeToPlan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "returns.csv", "year,return\n2001,-0.12\n2002,-0.22\n2003,0.28\n2004,0.11\n")
	content := `profile:
  current_age: 40
  retirement_age: 65
  life_expectancy: 95
  current_income: 100000
  savings_rate: 0.15
assumptions:
  return_mean: 0.07
  inflation_rate: 0.03
  safe_withdrawal_rate: 0.04
  distribution:
    kind: bootstrap
    historical_file: returns.csv
`
	path := writeFile(t, dir, "plan.yaml", content)

	plan, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	require.Len(t, plan.Assumptions.Distribution.Historical, 4)
	assert.True(t, plan.Assumptions.Distribution.Historical[2].Equal(decimal.NewFromFloat(0.28)))
}

func TestLoadFromFile_MissingHistoricalFile(t *testing.T) {
	content := `profile:
  current_age: 40
  retirement_age: 65
  life_expectancy: 95
assumptions:
  return_mean: 0.07
  inflation_rate: 0.03
  safe_withdrawal_rate: 0.04
  distribution:
    kind: bootstrap
    historical_file: missing.csv
`
	path := writeFile(t, t.TempDir(), "plan.yaml", content)

	_, err := NewInputParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load historical returns")
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := NewInputParser().Parse([]byte("x"), "ini")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported plan format")
}

func TestValidateConfiguration_Success(t *testing.T) {
	parser := NewInputParser()
	plan := parser.CreateExampleConfiguration()
	assert.NoError(t, parser.ValidateConfiguration(plan))
}

func TestValidateConfiguration_UnknownCompareStrategy(t *testing.T) {
	parser := NewInputParser()
	plan := parser.CreateExampleConfiguration()
	plan.Compare = append(plan.Compare, "guardrails")

	err := parser.ValidateConfiguration(plan)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "guardrails")
}

func TestValidateConfiguration_Sensitivity(t *testing.T) {
	parser := NewInputParser()

	t.Run("unknown variable", func(t *testing.T) {
		plan := parser.CreateExampleConfiguration()
		plan.Sensitivity.Variables = append(plan.Sensitivity.Variables, domain.Perturbation{Variable: "tax_rate", Deltas: []decimal.Decimal{decimal.NewFromFloat(0.01)}})
		err := parser.ValidateConfiguration(plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tax_rate")
	})

	t.Run("no deltas", func(t *testing.T) {
		plan := parser.CreateExampleConfiguration()
		plan.Sensitivity.Variables = []domain.Perturbation{{Variable: domain.VarSavingsRate}}
		err := parser.ValidateConfiguration(plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one delta")
	})

	t.Run("unknown mode", func(t *testing.T) {
		plan := parser.CreateExampleConfiguration()
		plan.Sensitivity.Mode = "random"
		err := parser.ValidateConfiguration(plan)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sensitivity.mode")
	})
}

func TestValidateConfiguration_NegativeTrials(t *testing.T) {
	parser := NewInputParser()
	plan := parser.CreateExampleConfiguration()
	plan.Simulation.Trials = -1

	err := parser.ValidateConfiguration(plan)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation.trials")
}

func TestCreateExampleConfiguration(t *testing.T) {
	plan := NewInputParser().CreateExampleConfiguration()

	assert.Equal(t, 40, plan.Profile.CurrentAge)
	assert.Equal(t, 65, plan.Profile.RetirementAge)
	assert.Equal(t, 95, plan.Profile.LifeExpectancy)
	assert.Equal(t, 55, plan.Profile.HorizonYears())
	assert.NotEmpty(t, plan.Assumptions.Tax.Brackets)
	assert.NotEmpty(t, plan.Sensitivity.Variables)
	assert.Len(t, plan.Compare, 3)
}

func TestDefaultTaxBrackets(t *testing.T) {
	brackets := DefaultTaxBrackets()
	require.NotEmpty(t, brackets)
	assert.True(t, brackets[len(brackets)-1].Max.IsZero(), "top bracket is unbounded")
	for i := 1; i < len(brackets); i++ {
		assert.True(t, brackets[i].Min.Equal(brackets[i-1].Max), "brackets are contiguous at %d", i)
	}
}

func TestSaveConfiguration_RoundTrip(t *testing.T) {
	parser := NewInputParser()
	original := parser.CreateExampleConfiguration()
	require.NoError(t, parser.ValidateConfiguration(original))

	for _, name := range []string{"plan.yaml", "plan.toml", "plan.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, parser.SaveConfiguration(original, path))

			loaded, err := parser.LoadFromFile(path)
			require.NoError(t, err)
			if diff := cmp.Diff(original.Profile, loaded.Profile); diff != "" {
				t.Errorf("profile mismatch (-want +got):\n%s", diff)
			}
			assert.True(t, original.Assumptions.ReturnMean.Equal(loaded.Assumptions.ReturnMean))
			assert.Equal(t, original.Assumptions.Withdrawal.Strategy, loaded.Assumptions.Withdrawal.Strategy)
			assert.Equal(t, len(original.Assumptions.Tax.Brackets), len(loaded.Assumptions.Tax.Brackets))
			assert.Equal(t, original.Compare, loaded.Compare)
		})
	}
}

func TestSaveConfiguration_InvalidPath(t *testing.T) {
	parser := NewInputParser()
	err := parser.SaveConfiguration(parser.CreateExampleConfiguration(), filepath.Join(t.TempDir(), "missing", "plan.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write file")
}
