package domain

import (
	"github.com/shopspring/decimal"
)

// RiskLevel buckets a success rate for reporting.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

var (
	riskLowThreshold    = decimal.NewFromFloat(0.90)
	riskMediumThreshold = decimal.NewFromFloat(0.75)
	riskHighThreshold   = decimal.NewFromFloat(0.60)
)

// RiskLevelFor maps a success rate in [0,1] to a risk level.
func RiskLevelFor(successRate decimal.Decimal) RiskLevel {
	switch {
	case successRate.GreaterThanOrEqual(riskLowThreshold):
		return RiskLow
	case successRate.GreaterThanOrEqual(riskMediumThreshold):
		return RiskMedium
	case successRate.GreaterThanOrEqual(riskHighThreshold):
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// PercentileBands holds nearest-rank percentiles of a balance across trials.
type PercentileBands struct {
	P10 decimal.Decimal `json:"p10"`
	P25 decimal.Decimal `json:"p25"`
	P50 decimal.Decimal `json:"p50"`
	P75 decimal.Decimal `json:"p75"`
	P90 decimal.Decimal `json:"p90"`
}

// YearBand is the ending-balance distribution for one projected year.
type YearBand struct {
	YearIndex int `json:"year_index"`
	Age       int `json:"age"`
	// DepletedRate is the share of trials depleted by the end of this year.
	DepletedRate decimal.Decimal `json:"depleted_rate"`
	PercentileBands
}

// SimulationResult aggregates a Monte Carlo run.
type SimulationResult struct {
	Strategy          StrategyID      `json:"strategy"`
	Distribution      DistributionID  `json:"distribution"`
	Trials            int             `json:"trials"`
	Seed              int64           `json:"seed"`
	HorizonYears      int             `json:"horizon_years"`
	SuccessRate       decimal.Decimal `json:"success_rate"`
	CorpusMetRate     decimal.Decimal `json:"corpus_met_rate"`
	RequiredCorpus    decimal.Decimal `json:"required_corpus"`
	RetirementBalance PercentileBands `json:"retirement_balance"`
	FinalBalance      PercentileBands `json:"final_balance"`
	MeanFinalBalance  decimal.Decimal `json:"mean_final_balance"`
	YearlyBands       []YearBand      `json:"yearly_bands"`
	// MedianDepletionAge is taken over depleted trials only; nil when none depleted.
	MedianDepletionAge *int      `json:"median_depletion_age,omitempty"`
	RiskLevel          RiskLevel `json:"risk_level"`
}

// SimulationOptions controls a Monte Carlo run.
type SimulationOptions struct {
	Trials int `yaml:"trials" json:"trials" toml:"trials"`
	// Seed makes the run reproducible; nil draws one and records it in the result.
	Seed    *int64 `yaml:"seed,omitempty" json:"seed,omitempty" toml:"seed,omitempty"`
	Workers int    `yaml:"workers,omitempty" json:"workers,omitempty" toml:"workers,omitempty"`
}

// StrategyComparison pairs one strategy's deterministic and stochastic results.
type StrategyComparison struct {
	Strategy   StrategyID        `json:"strategy"`
	Projection *ProjectionResult `json:"projection"`
	Simulation *SimulationResult `json:"simulation"`
}
