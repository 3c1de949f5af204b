package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountType determines the tax treatment of contributions and withdrawals.
type AccountType string

const (
	// TaxDeferred covers traditional 401(k)/IRA style accounts.
	TaxDeferred AccountType = "tax_deferred"
	// TaxFree covers Roth accounts.
	TaxFree AccountType = "tax_free"
	// Taxable covers ordinary brokerage accounts.
	Taxable AccountType = "taxable"
)

// AccountTypes lists every account type in canonical order.
var AccountTypes = []AccountType{TaxDeferred, TaxFree, Taxable}

// DefaultWithdrawalOrder drains taxable money first and Roth money last.
var DefaultWithdrawalOrder = []AccountType{Taxable, TaxDeferred, TaxFree}

// IsValid reports whether the account type is one of the closed set.
func (a AccountType) IsValid() bool {
	switch a {
	case TaxDeferred, TaxFree, Taxable:
		return true
	}
	return false
}

// Balances maps account types to amounts.
type Balances map[AccountType]decimal.Decimal

// Total sums every account.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, acct := range AccountTypes {
		total = total.Add(b[acct])
	}
	return total
}

// Clone returns an independent copy holding every canonical account type.
func (b Balances) Clone() Balances {
	out := make(Balances, len(AccountTypes))
	for _, acct := range AccountTypes {
		out[acct] = b[acct]
	}
	return out
}

// EmployerMatch describes match terms: the employer contributes Rate times the
// employee savings rate, counting at most Limit of income.
type EmployerMatch struct {
	Rate  decimal.Decimal `yaml:"rate" json:"rate" toml:"rate"`
	Limit decimal.Decimal `yaml:"limit" json:"limit" toml:"limit"`
}

// Profile is a user's financial situation. Engines treat it as read-only.
type Profile struct {
	CurrentAge     int             `yaml:"current_age" json:"current_age" toml:"current_age"`
	RetirementAge  int             `yaml:"retirement_age" json:"retirement_age" toml:"retirement_age"`
	LifeExpectancy int             `yaml:"life_expectancy" json:"life_expectancy" toml:"life_expectancy"`
	CurrentIncome  decimal.Decimal `yaml:"current_income" json:"current_income" toml:"current_income"`
	SavingsRate    decimal.Decimal `yaml:"savings_rate" json:"savings_rate" toml:"savings_rate"`
	Balances       Balances        `yaml:"balances" json:"balances" toml:"balances"`

	// ContributionSplit routes employee contributions across accounts. Empty
	// means everything goes to TaxDeferred.
	ContributionSplit Balances      `yaml:"contribution_split,omitempty" json:"contribution_split,omitempty" toml:"contribution_split,omitempty"`
	EmployerMatch     EmployerMatch `yaml:"employer_match" json:"employer_match" toml:"employer_match"`

	// Planning inputs used for the retirement needs estimate
	DesiredIncomeRatio      decimal.Decimal `yaml:"desired_income_ratio" json:"desired_income_ratio" toml:"desired_income_ratio"`
	EstimatedSocialSecurity decimal.Decimal `yaml:"estimated_social_security" json:"estimated_social_security" toml:"estimated_social_security"`
	EstimatedPension        decimal.Decimal `yaml:"estimated_pension" json:"estimated_pension" toml:"estimated_pension"`
	EstimatedHealthcare     decimal.Decimal `yaml:"estimated_healthcare" json:"estimated_healthcare" toml:"estimated_healthcare"`

	// StartYear is the calendar year of year index 0; zero leaves calendar years unset.
	StartYear int `yaml:"start_year,omitempty" json:"start_year,omitempty" toml:"start_year,omitempty"`
}

// HorizonYears is the number of projected years.
func (p Profile) HorizonYears() int {
	if p.LifeExpectancy <= p.CurrentAge {
		return 0
	}
	return p.LifeExpectancy - p.CurrentAge
}

// YearsToRetirement is the length of the accumulation phase.
func (p Profile) YearsToRetirement() int {
	if p.RetirementAge <= p.CurrentAge {
		return 0
	}
	return p.RetirementAge - p.CurrentAge
}

// RetirementYears is the length of the withdrawal phase.
func (p Profile) RetirementYears() int {
	start := p.RetirementAge
	if start < p.CurrentAge {
		start = p.CurrentAge
	}
	if p.LifeExpectancy <= start {
		return 0
	}
	return p.LifeExpectancy - start
}

// AnnualContribution is the employee contribution at today's income.
func (p Profile) AnnualContribution() decimal.Decimal {
	return p.CurrentIncome.Mul(p.SavingsRate)
}

// AnnualEmployerMatch is the employer match at today's income.
func (p Profile) AnnualEmployerMatch() decimal.Decimal {
	matched := decimal.Min(p.SavingsRate, p.EmployerMatch.Limit)
	if matched.IsNegative() {
		return decimal.Zero
	}
	return p.CurrentIncome.Mul(matched).Mul(p.EmployerMatch.Rate)
}

// Split returns the contribution split, defaulting to all TaxDeferred.
func (p Profile) Split() Balances {
	if len(p.ContributionSplit) == 0 {
		return Balances{TaxDeferred: decimal.NewFromInt(1)}
	}
	return p.ContributionSplit
}

// Clone returns a deep copy so callers can perturb a profile without aliasing maps.
func (p Profile) Clone() Profile {
	out := p
	out.Balances = p.Balances.Clone()
	if p.ContributionSplit != nil {
		out.ContributionSplit = make(Balances, len(p.ContributionSplit))
		for k, v := range p.ContributionSplit {
			out.ContributionSplit[k] = v
		}
	}
	return out
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.CurrentAge < 0 {
		return NewConfigurationError("profile.current_age", "must not be negative, got %d", p.CurrentAge)
	}
	if p.RetirementAge < p.CurrentAge {
		return NewConfigurationError("profile.retirement_age", "must not be before current age (%d < %d)", p.RetirementAge, p.CurrentAge)
	}
	emptyHorizon := p.LifeExpectancy == p.CurrentAge && p.RetirementAge == p.CurrentAge
	if p.LifeExpectancy <= p.RetirementAge && !emptyHorizon {
		return NewConfigurationError("profile.life_expectancy", "must be greater than retirement age (%d <= %d)", p.LifeExpectancy, p.RetirementAge)
	}
	if p.CurrentIncome.IsNegative() {
		return NewConfigurationError("profile.current_income", "must not be negative")
	}
	if p.SavingsRate.IsNegative() || p.SavingsRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewConfigurationError("profile.savings_rate", "must be between 0 and 1, got %s", p.SavingsRate)
	}
	for _, acct := range sortedAccounts(p.Balances) {
		if !acct.IsValid() {
			return NewConfigurationError("profile.balances", "unknown account type %q", acct)
		}
		if p.Balances[acct].IsNegative() {
			return NewConfigurationError("profile.balances."+string(acct), "must not be negative")
		}
	}
	if len(p.ContributionSplit) > 0 {
		sum := decimal.Zero
		for _, acct := range sortedAccounts(p.ContributionSplit) {
			if !acct.IsValid() {
				return NewConfigurationError("profile.contribution_split", "unknown account type %q", acct)
			}
			share := p.ContributionSplit[acct]
			if share.IsNegative() {
				return NewConfigurationError("profile.contribution_split."+string(acct), "must not be negative")
			}
			sum = sum.Add(share)
		}
		if !sum.Equal(decimal.NewFromInt(1)) {
			return NewConfigurationError("profile.contribution_split", "shares must sum to 1, got %s", sum)
		}
	}
	if p.EmployerMatch.Rate.IsNegative() {
		return NewConfigurationError("profile.employer_match.rate", "must not be negative")
	}
	if p.EmployerMatch.Limit.IsNegative() {
		return NewConfigurationError("profile.employer_match.limit", "must not be negative")
	}
	if p.DesiredIncomeRatio.IsNegative() {
		return NewConfigurationError("profile.desired_income_ratio", "must not be negative")
	}
	if p.EstimatedSocialSecurity.IsNegative() {
		return NewConfigurationError("profile.estimated_social_security", "must not be negative")
	}
	if p.EstimatedPension.IsNegative() {
		return NewConfigurationError("profile.estimated_pension", "must not be negative")
	}
	if p.EstimatedHealthcare.IsNegative() {
		return NewConfigurationError("profile.estimated_healthcare", "must not be negative")
	}
	return nil
}

func sortedAccounts(b Balances) []AccountType {
	keys := make([]AccountType, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
