package domain

import (
	"github.com/shopspring/decimal"
)

// Phase marks whether a projected year is saving or spending.
type Phase string

const (
	PhaseAccumulation Phase = "accumulation"
	PhaseWithdrawal   Phase = "withdrawal"
)

// YearProjection is one year of a projection. Flows happen during the year;
// balances are as of the start and end of the year.
type YearProjection struct {
	YearIndex int   `json:"year_index"`
	Year      int   `json:"year,omitempty"`
	Age       int   `json:"age"`
	Phase     Phase `json:"phase"`

	StartingBalances Balances        `json:"starting_balances"`
	StartingBalance  decimal.Decimal `json:"starting_balance"`

	Contribution          decimal.Decimal `json:"contribution"`
	EmployerMatch         decimal.Decimal `json:"employer_match"`
	ContributionTaxSaving decimal.Decimal `json:"contribution_tax_saving"`

	Return           float64         `json:"return"`
	InvestmentGrowth decimal.Decimal `json:"investment_growth"`

	GrossWithdrawal decimal.Decimal `json:"gross_withdrawal"`
	WithdrawalTax   decimal.Decimal `json:"withdrawal_tax"`
	NetWithdrawal   decimal.Decimal `json:"net_withdrawal"`

	EndingBalances    Balances        `json:"ending_balances"`
	EndingBalance     decimal.Decimal `json:"ending_balance"`
	RealEndingBalance decimal.Decimal `json:"real_ending_balance"`
	Depleted          bool            `json:"depleted"`
}

// ProjectionResult is a full deterministic projection. Years always has one
// entry per horizon year, in order.
type ProjectionResult struct {
	Strategy          StrategyID       `json:"strategy"`
	Years             []YearProjection `json:"years"`
	RequiredCorpus    decimal.Decimal  `json:"required_corpus"`
	RetirementBalance decimal.Decimal  `json:"retirement_balance"`
	FinalBalance      decimal.Decimal  `json:"final_balance"`
	TotalContributed  decimal.Decimal  `json:"total_contributed"`
	TotalWithdrawn    decimal.Decimal  `json:"total_withdrawn"`
	TotalTaxes        decimal.Decimal  `json:"total_taxes"`
	DepletionYear     *int             `json:"depletion_year,omitempty"`
	DepletionAge      *int             `json:"depletion_age,omitempty"`
}

// Depleted reports whether the money ran out before the horizon ended.
func (r *ProjectionResult) Depleted() bool {
	return r.DepletionYear != nil
}

// CorpusMet reports whether the balance at retirement covered the required corpus.
func (r *ProjectionResult) CorpusMet() bool {
	return r.RetirementBalance.GreaterThanOrEqual(r.RequiredCorpus)
}
