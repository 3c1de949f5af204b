package domain

import (
	"github.com/shopspring/decimal"
)

// StrategyID selects a withdrawal strategy.
type StrategyID string

const (
	StrategyFixedPercentage StrategyID = "fixed_percentage"
	StrategyDynamic         StrategyID = "dynamic"
	StrategyBondLadder      StrategyID = "bond_ladder"
	StrategyNeedBased       StrategyID = "need_based"
)

// Strategies lists every known withdrawal strategy.
var Strategies = []StrategyID{StrategyFixedPercentage, StrategyDynamic, StrategyBondLadder, StrategyNeedBased}

// IsValid reports whether the strategy is known.
func (s StrategyID) IsValid() bool {
	switch s {
	case StrategyFixedPercentage, StrategyDynamic, StrategyBondLadder, StrategyNeedBased:
		return true
	}
	return false
}

// DistributionID selects how annual returns are sampled.
type DistributionID string

const (
	DistributionNormal    DistributionID = "normal"
	DistributionStudentT  DistributionID = "student_t"
	DistributionBootstrap DistributionID = "bootstrap"
)

// IsValid reports whether the distribution is known.
func (d DistributionID) IsValid() bool {
	switch d {
	case DistributionNormal, DistributionStudentT, DistributionBootstrap:
		return true
	}
	return false
}

// TaxBracket is one progressive bracket; Max of zero means unbounded.
type TaxBracket struct {
	Min  decimal.Decimal `yaml:"min" json:"min" toml:"min"`
	Max  decimal.Decimal `yaml:"max" json:"max" toml:"max"`
	Rate decimal.Decimal `yaml:"rate" json:"rate" toml:"rate"`
}

// TaxRules is the simplified tax model applied per account type.
type TaxRules struct {
	// TaxDeferredRate is the effective rate on tax-deferred withdrawals when no brackets are set.
	TaxDeferredRate decimal.Decimal `yaml:"tax_deferred_rate" json:"tax_deferred_rate" toml:"tax_deferred_rate"`
	// ContributionRate is the marginal rate used for contribution deductions when no brackets are set.
	ContributionRate decimal.Decimal `yaml:"contribution_rate" json:"contribution_rate" toml:"contribution_rate"`
	CapitalGainsRate decimal.Decimal `yaml:"capital_gains_rate" json:"capital_gains_rate" toml:"capital_gains_rate"`
	// GainsFraction approximates the share of a taxable withdrawal that is gain.
	GainsFraction     decimal.Decimal `yaml:"gains_fraction" json:"gains_fraction" toml:"gains_fraction"`
	StandardDeduction decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction" toml:"standard_deduction"`
	Brackets          []TaxBracket    `yaml:"brackets,omitempty" json:"brackets,omitempty" toml:"brackets,omitempty"`
}

// WithdrawalParams configures the withdrawal strategy.
type WithdrawalParams struct {
	Strategy StrategyID      `yaml:"strategy" json:"strategy" toml:"strategy"`
	Rate     decimal.Decimal `yaml:"rate" json:"rate" toml:"rate"`

	// dynamic
	FloorRate       decimal.Decimal `yaml:"floor_rate" json:"floor_rate" toml:"floor_rate"`
	CeilingRate     decimal.Decimal `yaml:"ceiling_rate" json:"ceiling_rate" toml:"ceiling_rate"`
	AdjustmentStep  decimal.Decimal `yaml:"adjustment_step" json:"adjustment_step" toml:"adjustment_step"`
	PerformanceBand decimal.Decimal `yaml:"performance_band" json:"performance_band" toml:"performance_band"`

	// bond_ladder
	LadderAmounts         []decimal.Decimal `yaml:"ladder_amounts,omitempty" json:"ladder_amounts,omitempty" toml:"ladder_amounts,omitempty"`
	LadderInflationLinked bool              `yaml:"ladder_inflation_linked" json:"ladder_inflation_linked" toml:"ladder_inflation_linked"`
	Fallback              StrategyID        `yaml:"fallback,omitempty" json:"fallback,omitempty" toml:"fallback,omitempty"`

	// need_based
	AnnualNeed decimal.Decimal `yaml:"annual_need" json:"annual_need" toml:"annual_need"`
}

// AssetClass is one sleeve of a multi-asset portfolio.
type AssetClass struct {
	Name   string          `yaml:"name" json:"name" toml:"name"`
	Weight decimal.Decimal `yaml:"weight" json:"weight" toml:"weight"`
	Mean   decimal.Decimal `yaml:"mean" json:"mean" toml:"mean"`
	StdDev decimal.Decimal `yaml:"std_dev" json:"std_dev" toml:"std_dev"`
}

// DistributionParams configures return sampling for simulations.
type DistributionParams struct {
	Kind             DistributionID    `yaml:"kind" json:"kind" toml:"kind"`
	DegreesOfFreedom int               `yaml:"degrees_of_freedom,omitempty" json:"degrees_of_freedom,omitempty" toml:"degrees_of_freedom,omitempty"`
	HistoricalFile   string            `yaml:"historical_file,omitempty" json:"historical_file,omitempty" toml:"historical_file,omitempty"`
	Historical       []decimal.Decimal `yaml:"historical,omitempty" json:"historical,omitempty" toml:"historical,omitempty"`
}

// AssumptionSet holds the market, tax, and withdrawal assumptions for a run.
// Engines treat it as immutable.
type AssumptionSet struct {
	ReturnMean         decimal.Decimal    `yaml:"return_mean" json:"return_mean" toml:"return_mean"`
	ReturnStdDev       decimal.Decimal    `yaml:"return_std_dev" json:"return_std_dev" toml:"return_std_dev"`
	AssetClasses       []AssetClass       `yaml:"asset_classes,omitempty" json:"asset_classes,omitempty" toml:"asset_classes,omitempty"`
	InflationRate      decimal.Decimal    `yaml:"inflation_rate" json:"inflation_rate" toml:"inflation_rate"`
	SafeWithdrawalRate decimal.Decimal    `yaml:"safe_withdrawal_rate" json:"safe_withdrawal_rate" toml:"safe_withdrawal_rate"`
	Tax                TaxRules           `yaml:"tax" json:"tax" toml:"tax"`
	Withdrawal         WithdrawalParams   `yaml:"withdrawal" json:"withdrawal" toml:"withdrawal"`
	Distribution       DistributionParams `yaml:"distribution" json:"distribution" toml:"distribution"`
	WithdrawalOrder    []AccountType      `yaml:"withdrawal_order,omitempty" json:"withdrawal_order,omitempty" toml:"withdrawal_order,omitempty"`
}

// PlanReturn is the expected annual return, weighting asset classes when present.
func (a AssumptionSet) PlanReturn() decimal.Decimal {
	if len(a.AssetClasses) == 0 {
		return a.ReturnMean
	}
	mean := decimal.Zero
	for _, ac := range a.AssetClasses {
		mean = mean.Add(ac.Weight.Mul(ac.Mean))
	}
	return mean
}

// Order returns the account drain order, defaulting when unset.
func (a AssumptionSet) Order() []AccountType {
	if len(a.WithdrawalOrder) == 0 {
		return DefaultWithdrawalOrder
	}
	return a.WithdrawalOrder
}

// Clone returns a deep copy so a perturbed set never aliases the caller's slices.
func (a AssumptionSet) Clone() AssumptionSet {
	out := a
	out.AssetClasses = append([]AssetClass(nil), a.AssetClasses...)
	out.Tax.Brackets = append([]TaxBracket(nil), a.Tax.Brackets...)
	out.Withdrawal.LadderAmounts = append([]decimal.Decimal(nil), a.Withdrawal.LadderAmounts...)
	out.Distribution.Historical = append([]decimal.Decimal(nil), a.Distribution.Historical...)
	out.WithdrawalOrder = append([]AccountType(nil), a.WithdrawalOrder...)
	return out
}

var (
	one          = decimal.NewFromInt(1)
	minusOne     = decimal.NewFromInt(-1)
	maxInflation = decimal.NewFromFloat(0.5)
)

// Validate checks the assumption set. Defaults must already be applied.
func (a AssumptionSet) Validate() error {
	if a.ReturnMean.LessThanOrEqual(minusOne) {
		return NewConfigurationError("assumptions.return_mean", "must be greater than -100%%")
	}
	if a.ReturnStdDev.IsNegative() {
		return NewConfigurationError("assumptions.return_std_dev", "must not be negative")
	}
	if len(a.AssetClasses) > 0 {
		weights := decimal.Zero
		for i, ac := range a.AssetClasses {
			if ac.Weight.IsNegative() {
				return NewConfigurationError("assumptions.asset_classes", "class %d (%s) has negative weight", i, ac.Name)
			}
			if ac.StdDev.IsNegative() {
				return NewConfigurationError("assumptions.asset_classes", "class %d (%s) has negative std_dev", i, ac.Name)
			}
			weights = weights.Add(ac.Weight)
		}
		if !weights.Equal(one) {
			return NewConfigurationError("assumptions.asset_classes", "weights must sum to 1, got %s", weights)
		}
	}
	if a.InflationRate.LessThanOrEqual(minusOne) || a.InflationRate.GreaterThan(maxInflation) {
		return NewConfigurationError("assumptions.inflation_rate", "must be between -100%% and 50%%, got %s", a.InflationRate)
	}
	if !a.SafeWithdrawalRate.IsPositive() || a.SafeWithdrawalRate.GreaterThan(one) {
		return NewConfigurationError("assumptions.safe_withdrawal_rate", "must be in (0, 1], got %s", a.SafeWithdrawalRate)
	}
	if err := a.Tax.validate(); err != nil {
		return err
	}
	if err := a.Withdrawal.validate(); err != nil {
		return err
	}
	if !a.Distribution.Kind.IsValid() {
		return NewConfigurationError("assumptions.distribution.kind", "unknown distribution %q", a.Distribution.Kind)
	}
	if a.Distribution.Kind == DistributionStudentT && a.Distribution.DegreesOfFreedom < 3 {
		return NewConfigurationError("assumptions.distribution.degrees_of_freedom", "must be at least 3 for a finite variance, got %d", a.Distribution.DegreesOfFreedom)
	}
	if a.Distribution.Kind == DistributionBootstrap && len(a.Distribution.Historical) == 0 {
		return NewConfigurationError("assumptions.distribution.historical", "bootstrap sampling needs at least one historical return")
	}
	seen := make(map[AccountType]bool, len(a.WithdrawalOrder))
	for _, acct := range a.WithdrawalOrder {
		if !acct.IsValid() {
			return NewConfigurationError("assumptions.withdrawal_order", "unknown account type %q", acct)
		}
		if seen[acct] {
			return NewConfigurationError("assumptions.withdrawal_order", "account type %q listed twice", acct)
		}
		seen[acct] = true
	}
	return nil
}

func (t TaxRules) validate() error {
	rates := []struct {
		field string
		v     decimal.Decimal
	}{
		{"assumptions.tax.tax_deferred_rate", t.TaxDeferredRate},
		{"assumptions.tax.contribution_rate", t.ContributionRate},
		{"assumptions.tax.capital_gains_rate", t.CapitalGainsRate},
		{"assumptions.tax.gains_fraction", t.GainsFraction},
	}
	for _, r := range rates {
		if r.v.IsNegative() || r.v.GreaterThan(one) {
			return NewConfigurationError(r.field, "must be between 0 and 1, got %s", r.v)
		}
	}
	if t.StandardDeduction.IsNegative() {
		return NewConfigurationError("assumptions.tax.standard_deduction", "must not be negative")
	}
	prevMax := decimal.Zero
	for i, b := range t.Brackets {
		if b.Rate.IsNegative() || b.Rate.GreaterThan(one) {
			return NewConfigurationError("assumptions.tax.brackets", "bracket %d rate must be between 0 and 1", i)
		}
		if b.Min.LessThan(prevMax) {
			return NewConfigurationError("assumptions.tax.brackets", "bracket %d overlaps the previous bracket", i)
		}
		if !b.Max.IsZero() && b.Max.LessThanOrEqual(b.Min) {
			return NewConfigurationError("assumptions.tax.brackets", "bracket %d max must exceed min", i)
		}
		if b.Max.IsZero() && i != len(t.Brackets)-1 {
			return NewConfigurationError("assumptions.tax.brackets", "only the last bracket may be unbounded")
		}
		prevMax = b.Max
	}
	return nil
}

func (w WithdrawalParams) validate() error {
	if !w.Strategy.IsValid() {
		return NewConfigurationError("assumptions.withdrawal.strategy", "unknown withdrawal strategy %q", w.Strategy)
	}
	if w.Rate.IsNegative() || w.Rate.GreaterThan(one) {
		return NewConfigurationError("assumptions.withdrawal.rate", "must be between 0 and 1, got %s", w.Rate)
	}
	dynamic := w.Strategy == StrategyDynamic || (w.Strategy == StrategyBondLadder && w.Fallback == StrategyDynamic)
	if dynamic {
		if w.FloorRate.IsNegative() || w.CeilingRate.GreaterThan(one) || w.FloorRate.GreaterThan(w.CeilingRate) {
			return NewConfigurationError("assumptions.withdrawal.floor_rate", "floor and ceiling must satisfy 0 <= floor <= ceiling <= 1")
		}
		if w.AdjustmentStep.IsNegative() {
			return NewConfigurationError("assumptions.withdrawal.adjustment_step", "must not be negative")
		}
		if w.PerformanceBand.IsNegative() {
			return NewConfigurationError("assumptions.withdrawal.performance_band", "must not be negative")
		}
	}
	if w.Strategy == StrategyBondLadder {
		if len(w.LadderAmounts) == 0 {
			return NewConfigurationError("assumptions.withdrawal.ladder_amounts", "bond ladder needs at least one rung")
		}
		for i, amt := range w.LadderAmounts {
			if amt.IsNegative() {
				return NewConfigurationError("assumptions.withdrawal.ladder_amounts", "rung %d must not be negative", i)
			}
		}
		if w.Fallback != StrategyFixedPercentage && w.Fallback != StrategyDynamic {
			return NewConfigurationError("assumptions.withdrawal.fallback", "must be %q or %q, got %q", StrategyFixedPercentage, StrategyDynamic, w.Fallback)
		}
	}
	if w.AnnualNeed.IsNegative() {
		return NewConfigurationError("assumptions.withdrawal.annual_need", "must not be negative")
	}
	return nil
}
