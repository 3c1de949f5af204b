package domain

import (
	"github.com/shopspring/decimal"
)

// Default assumption values applied to zero fields.
var (
	DefaultSafeWithdrawalRate = decimal.NewFromFloat(0.04)
	DefaultWithdrawalRate     = decimal.NewFromFloat(0.04)
	DefaultFloorRate          = decimal.NewFromFloat(0.03)
	DefaultCeilingRate        = decimal.NewFromFloat(0.05)
	DefaultAdjustmentStep     = decimal.NewFromFloat(0.005)
	DefaultPerformanceBand    = decimal.NewFromFloat(0.05)
	DefaultDesiredIncomeRatio = decimal.NewFromFloat(0.80)
	DefaultStudentTDoF        = 5
)

// WithDefaults fills unset planning inputs.
func (p Profile) WithDefaults() Profile {
	out := p.Clone()
	if out.DesiredIncomeRatio.IsZero() {
		out.DesiredIncomeRatio = DefaultDesiredIncomeRatio
	}
	if out.Balances == nil {
		out.Balances = Balances{}
	}
	return out
}

// WithDefaults fills unset withdrawal, distribution, and rate settings.
func (a AssumptionSet) WithDefaults() AssumptionSet {
	out := a.Clone()
	if out.SafeWithdrawalRate.IsZero() {
		out.SafeWithdrawalRate = DefaultSafeWithdrawalRate
	}
	w := &out.Withdrawal
	if w.Strategy == "" {
		w.Strategy = StrategyFixedPercentage
	}
	if w.Rate.IsZero() {
		w.Rate = DefaultWithdrawalRate
	}
	if w.FloorRate.IsZero() && w.CeilingRate.IsZero() {
		w.FloorRate = DefaultFloorRate
		w.CeilingRate = DefaultCeilingRate
	}
	if w.AdjustmentStep.IsZero() {
		w.AdjustmentStep = DefaultAdjustmentStep
	}
	if w.PerformanceBand.IsZero() {
		w.PerformanceBand = DefaultPerformanceBand
	}
	if w.Strategy == StrategyBondLadder && w.Fallback == "" {
		w.Fallback = StrategyFixedPercentage
	}
	if out.Distribution.Kind == "" {
		out.Distribution.Kind = DistributionNormal
	}
	if out.Distribution.Kind == DistributionStudentT && out.Distribution.DegreesOfFreedom == 0 {
		out.Distribution.DegreesOfFreedom = DefaultStudentTDoF
	}
	return out
}
