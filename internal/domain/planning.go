package domain

import (
	"github.com/shopspring/decimal"
)

// RetirementNeeds estimates the income and corpus required at retirement.
type RetirementNeeds struct {
	DesiredIncomeToday decimal.Decimal `json:"desired_income_today"`
	NetIncomeNeeded    decimal.Decimal `json:"net_income_needed"`
	AnnualNeedToday    decimal.Decimal `json:"annual_need_today"`
	FutureAnnualNeed   decimal.Decimal `json:"future_annual_need"`
	InflationFactor    decimal.Decimal `json:"inflation_factor"`
	YearsToRetirement  int             `json:"years_to_retirement"`
	RetirementYears    int             `json:"retirement_years"`
	// CorpusBySWR divides the future need by the safe withdrawal rate.
	CorpusBySWR decimal.Decimal `json:"corpus_by_swr"`
	// CorpusByAnnuity discounts the retirement-years need at the real return.
	CorpusByAnnuity decimal.Decimal `json:"corpus_by_annuity"`
}

// SavingsOutlook compares projected savings at retirement with the required corpus.
type SavingsOutlook struct {
	CurrentSavingsFutureValue decimal.Decimal `json:"current_savings_future_value"`
	ContributionsFutureValue  decimal.Decimal `json:"contributions_future_value"`
	TotalProjected            decimal.Decimal `json:"total_projected"`
	CorpusNeeded              decimal.Decimal `json:"corpus_needed"`
	Shortfall                 decimal.Decimal `json:"shortfall"`
	Surplus                   decimal.Decimal `json:"surplus"`
	AdditionalMonthlyNeeded   decimal.Decimal `json:"additional_monthly_needed"`
	EffectiveAnnualSaving     decimal.Decimal `json:"effective_annual_saving"`
	EffectiveSavingsRate      decimal.Decimal `json:"effective_savings_rate"`
}

// ScoreComponent is one weighted part of the readiness score.
type ScoreComponent struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Max   int    `json:"max"`
}

// ReadinessScore grades overall retirement readiness out of 100.
type ReadinessScore struct {
	Total           int              `json:"total"`
	Max             int              `json:"max"`
	Grade           string           `json:"grade"`
	Assessment      string           `json:"assessment"`
	Components      []ScoreComponent `json:"components"`
	Recommendations []string         `json:"recommendations"`
}

// Milestone is a salary-multiple savings target at an age.
type Milestone struct {
	Age         int             `json:"age"`
	Multiple    decimal.Decimal `json:"multiple"`
	Target      decimal.Decimal `json:"target"`
	YearsAway   int             `json:"years_away"`
	Priority    string          `json:"priority"`
	Description string          `json:"description"`
}

// CatchUpStrategy is one way to close a savings shortfall.
type CatchUpStrategy struct {
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	AdditionalMonthly decimal.Decimal `json:"additional_monthly"`
	TotalAdditional   decimal.Decimal `json:"total_additional"`
	ExtraYears        int             `json:"extra_years,omitempty"`
	ExpenseReduction  decimal.Decimal `json:"expense_reduction"`
	// Feasibility is high, medium, or low.
	Feasibility string `json:"feasibility"`
}

// TaxOutlook summarizes the tax picture before and during retirement.
type TaxOutlook struct {
	CurrentMarginalRate      decimal.Decimal `json:"current_marginal_rate"`
	RetirementMarginalRate   decimal.Decimal `json:"retirement_marginal_rate"`
	RateDifference           decimal.Decimal `json:"rate_difference"`
	AnnualContributionSaving decimal.Decimal `json:"annual_contribution_saving"`
	AnnualRetirementTax      decimal.Decimal `json:"annual_retirement_tax"`
	// DiversificationScore is 0-100; higher means balances spread across tax treatments.
	DiversificationScore int      `json:"diversification_score"`
	Recommendations      []string `json:"recommendations"`
}

// PlanReport bundles every analysis for one profile and assumption set.
type PlanReport struct {
	Profile     Profile              `json:"profile"`
	Assumptions AssumptionSet        `json:"assumptions"`
	Needs       RetirementNeeds      `json:"needs"`
	Outlook     SavingsOutlook       `json:"outlook"`
	Projection  *ProjectionResult    `json:"projection"`
	Simulation  *SimulationResult    `json:"simulation,omitempty"`
	Readiness   ReadinessScore       `json:"readiness"`
	Milestones  []Milestone          `json:"milestones"`
	CatchUp     []CatchUpStrategy    `json:"catch_up,omitempty"`
	Tax         TaxOutlook           `json:"tax"`
	Comparisons []StrategyComparison `json:"comparisons,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
}
