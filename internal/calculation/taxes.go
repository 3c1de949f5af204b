package calculation

import (
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// TAX MODEL ASSUMPTIONS:
//
// 1. Tax-deferred withdrawals are ordinary income. With brackets configured the
//    tax is progressive over (withdrawal - standard deduction) for the year;
//    otherwise a flat effective rate applies.
// 2. Tax-free (Roth) withdrawals are untaxed.
// 3. Taxable-account withdrawals pay capital gains on the gains fraction only.
// 4. Contributions to tax-deferred accounts save tax at the marginal rate on
//    current income. Other contributions save nothing.
//
// No state, local, payroll, or social security taxation is modelled.

// TaxedAmount splits a withdrawal into tax and spendable money.
type TaxedAmount struct {
	Gross decimal.Decimal
	Tax   decimal.Decimal
	Net   decimal.Decimal
}

// TaxEngine applies TaxRules to withdrawals and contributions.
type TaxEngine struct {
	rules domain.TaxRules
}

// NewTaxEngine creates a tax engine for the given rules.
func NewTaxEngine(rules domain.TaxRules) *TaxEngine {
	return &TaxEngine{rules: rules}
}

// Withdrawal taxes a gross withdrawal from one account type.
func (te *TaxEngine) Withdrawal(amount decimal.Decimal, account domain.AccountType) TaxedAmount {
	if !amount.IsPositive() {
		return TaxedAmount{Gross: decimal.Zero, Tax: decimal.Zero, Net: decimal.Zero}
	}

	var tax decimal.Decimal
	switch account {
	case domain.TaxDeferred:
		if len(te.rules.Brackets) > 0 {
			tax = te.progressiveTax(amount.Sub(te.rules.StandardDeduction))
		} else {
			tax = amount.Mul(te.rules.TaxDeferredRate)
		}
	case domain.Taxable:
		tax = amount.Mul(te.rules.GainsFraction).Mul(te.rules.CapitalGainsRate)
	default:
		tax = decimal.Zero
	}
	if tax.GreaterThan(amount) {
		tax = amount
	}

	return TaxedAmount{Gross: amount, Tax: tax, Net: amount.Sub(tax)}
}

// ContributionDeduction is the tax saved by contributing amount to account
// while earning income.
func (te *TaxEngine) ContributionDeduction(amount decimal.Decimal, account domain.AccountType, income decimal.Decimal) decimal.Decimal {
	if account != domain.TaxDeferred || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(te.MarginalRate(income))
}

// MarginalRate is the rate on the last dollar of income. Without brackets it
// falls back to the configured contribution rate.
func (te *TaxEngine) MarginalRate(income decimal.Decimal) decimal.Decimal {
	if len(te.rules.Brackets) == 0 {
		return te.rules.ContributionRate
	}
	taxable := income.Sub(te.rules.StandardDeduction)
	if !taxable.IsPositive() {
		return decimal.Zero
	}
	rate := decimal.Zero
	for _, bracket := range te.rules.Brackets {
		if taxable.LessThanOrEqual(bracket.Min) {
			break
		}
		rate = bracket.Rate
	}
	return rate
}

// IncomeTax is the progressive tax on ordinary income after the standard deduction.
func (te *TaxEngine) IncomeTax(income decimal.Decimal) decimal.Decimal {
	if len(te.rules.Brackets) == 0 {
		return decimal.Max(income, decimal.Zero).Mul(te.rules.TaxDeferredRate)
	}
	return te.progressiveTax(income.Sub(te.rules.StandardDeduction))
}

func (te *TaxEngine) progressiveTax(taxableIncome decimal.Decimal) decimal.Decimal {
	if taxableIncome.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	totalTax := decimal.Zero
	for _, bracket := range te.rules.Brackets {
		if taxableIncome.LessThanOrEqual(bracket.Min) {
			break
		}
		upper := taxableIncome
		if !bracket.Max.IsZero() {
			upper = decimal.Min(taxableIncome, bracket.Max)
		}
		incomeInBracket := upper.Sub(bracket.Min)
		if incomeInBracket.GreaterThan(decimal.Zero) {
			totalTax = totalTax.Add(incomeInBracket.Mul(bracket.Rate))
		}
	}

	return totalTax
}
