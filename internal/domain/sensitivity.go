package domain

import (
	"github.com/shopspring/decimal"
)

// SensitivityVariable names an input that sensitivity analysis can perturb.
type SensitivityVariable string

const (
	VarReturnMean     SensitivityVariable = "return_mean"
	VarReturnStdDev   SensitivityVariable = "return_stddev"
	VarInflationRate  SensitivityVariable = "inflation_rate"
	VarRetirementAge  SensitivityVariable = "retirement_age"
	VarSavingsRate    SensitivityVariable = "savings_rate"
	VarCurrentIncome  SensitivityVariable = "current_income"
	VarLifeExpectancy SensitivityVariable = "life_expectancy"
	VarWithdrawalRate SensitivityVariable = "withdrawal_rate"
)

// SensitivityVariables lists every supported variable.
var SensitivityVariables = []SensitivityVariable{
	VarReturnMean, VarReturnStdDev, VarInflationRate, VarRetirementAge,
	VarSavingsRate, VarCurrentIncome, VarLifeExpectancy, VarWithdrawalRate,
}

// IsValid reports whether the variable is supported.
func (v SensitivityVariable) IsValid() bool {
	for _, known := range SensitivityVariables {
		if v == known {
			return true
		}
	}
	return false
}

// IsAge reports whether deltas for the variable are whole years.
func (v SensitivityVariable) IsAge() bool {
	return v == VarRetirementAge || v == VarLifeExpectancy
}

// SensitivityMode selects how each perturbed point is evaluated.
type SensitivityMode string

const (
	SensitivityDeterministic SensitivityMode = "deterministic"
	SensitivityStochastic    SensitivityMode = "stochastic"
)

// Perturbation lists additive deltas for one variable. Rates are absolute
// (0.01 is one percentage point), ages are years, income is currency.
type Perturbation struct {
	Variable SensitivityVariable `yaml:"name" json:"name" toml:"name"`
	Deltas   []decimal.Decimal   `yaml:"deltas" json:"deltas" toml:"deltas"`
}

// SensitivityRequest configures a sensitivity run.
type SensitivityRequest struct {
	Mode      SensitivityMode `yaml:"mode" json:"mode" toml:"mode"`
	Variables []Perturbation  `yaml:"variables" json:"variables" toml:"variables"`
	// Trials and Seed apply to stochastic mode only.
	Trials  int    `yaml:"trials,omitempty" json:"trials,omitempty" toml:"trials,omitempty"`
	Seed    *int64 `yaml:"seed,omitempty" json:"seed,omitempty" toml:"seed,omitempty"`
	Workers int    `yaml:"workers,omitempty" json:"workers,omitempty" toml:"workers,omitempty"`
}

// SensitivityMetrics are the outcome measures recorded per point.
type SensitivityMetrics struct {
	RequiredCorpus    decimal.Decimal `json:"required_corpus"`
	RetirementBalance decimal.Decimal `json:"retirement_balance"`
	FinalBalance      decimal.Decimal `json:"final_balance"`
	Depleted          bool            `json:"depleted"`
	// SuccessRate is only set in stochastic mode.
	SuccessRate *decimal.Decimal `json:"success_rate,omitempty"`
}

// SensitivityPoint is the outcome of one perturbed run.
type SensitivityPoint struct {
	Delta                   decimal.Decimal    `json:"delta"`
	Value                   decimal.Decimal    `json:"value"`
	Metrics                 SensitivityMetrics `json:"metrics"`
	RequiredCorpusChange    decimal.Decimal    `json:"required_corpus_change"`
	RetirementBalanceChange decimal.Decimal    `json:"retirement_balance_change"`
	SuccessRateChange       *decimal.Decimal   `json:"success_rate_change,omitempty"`
}

// VariableSensitivity holds the points for one variable ordered by delta.
type VariableSensitivity struct {
	Variable SensitivityVariable `json:"variable"`
	Baseline decimal.Decimal     `json:"baseline"`
	Points   []SensitivityPoint  `json:"points"`
}

// SensitivityResult is ordered by variable name.
type SensitivityResult struct {
	Mode      SensitivityMode       `json:"mode"`
	Trials    int                   `json:"trials,omitempty"`
	Seed      int64                 `json:"seed,omitempty"`
	Baseline  SensitivityMetrics    `json:"baseline"`
	Variables []VariableSensitivity `json:"variables"`
}
