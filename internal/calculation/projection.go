package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// balancePrecision bounds decimal growth across long horizons.
const balancePrecision = 6

func roundBalance(d decimal.Decimal) decimal.Decimal {
	return d.Round(balancePrecision)
}

// projector holds everything about a run that does not depend on the return
// path, so Monte Carlo trials can share it.
type projector struct {
	profile           domain.Profile
	assumptions       domain.AssumptionSet
	tax               *TaxEngine
	needs             domain.RetirementNeeds
	planReturn        float64
	order             []domain.AccountType
	split             domain.Balances
	horizon           int
	yearsToRetirement int
	inflationFactors  []decimal.Decimal
	withdrawal        domain.WithdrawalParams
}

// newProjector validates inputs that already carry defaults.
func newProjector(profile domain.Profile, assumptions domain.AssumptionSet) (*projector, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	if err := assumptions.Validate(); err != nil {
		return nil, err
	}

	p := &projector{
		profile:           profile,
		assumptions:       assumptions,
		tax:               NewTaxEngine(assumptions.Tax),
		planReturn:        assumptions.PlanReturn().InexactFloat64(),
		order:             completeOrder(assumptions.Order()),
		split:             profile.Split(),
		horizon:           profile.HorizonYears(),
		yearsToRetirement: profile.YearsToRetirement(),
		withdrawal:        assumptions.Withdrawal,
	}
	p.needs = CalculateRetirementNeeds(profile, assumptions)

	// (1+π)^i for i in [0, horizon]
	p.inflationFactors = make([]decimal.Decimal, p.horizon+1)
	growth := decimal.NewFromInt(1).Add(assumptions.InflationRate)
	p.inflationFactors[0] = decimal.NewFromInt(1)
	for i := 1; i <= p.horizon; i++ {
		p.inflationFactors[i] = p.inflationFactors[i-1].Mul(growth).Round(12)
	}

	if p.withdrawal.Strategy == domain.StrategyNeedBased && p.withdrawal.AnnualNeed.IsZero() {
		p.withdrawal.AnnualNeed = p.needs.FutureAnnualNeed
	}
	return p, nil
}

// completeOrder appends any account type the configured order left out so no
// money is stranded.
func completeOrder(order []domain.AccountType) []domain.AccountType {
	out := append([]domain.AccountType(nil), order...)
	for _, acct := range domain.DefaultWithdrawalOrder {
		found := false
		for _, o := range out {
			if o == acct {
				found = true
				break
			}
		}
		if !found {
			out = append(out, acct)
		}
	}
	return out
}

// requiredCorpus is the future annual need divided by the safe withdrawal rate.
func (p *projector) requiredCorpus() decimal.Decimal {
	return p.needs.CorpusBySWR
}

// run projects one return path. trial is -1 for deterministic runs and only
// labels errors.
func (p *projector) run(returns []float64, trial int) (*domain.ProjectionResult, error) {
	if len(returns) < p.horizon {
		return nil, domain.NewConfigurationError("returns", "need %d annual returns, got %d", p.horizon, len(returns))
	}

	strategy, err := NewWithdrawalStrategy(p.withdrawal, p.assumptions.InflationRate, p.planReturn)
	if err != nil {
		return nil, err
	}

	result := &domain.ProjectionResult{
		Strategy:         strategy.Name(),
		Years:            make([]domain.YearProjection, p.horizon),
		RequiredCorpus:   p.requiredCorpus(),
		TotalContributed: decimal.Zero,
		TotalWithdrawn:   decimal.Zero,
		TotalTaxes:       decimal.Zero,
	}

	balances := p.profile.Balances.Clone()
	for _, acct := range domain.AccountTypes {
		balances[acct] = roundBalance(balances[acct])
	}
	result.RetirementBalance = balances.Total()
	result.FinalBalance = balances.Total()

	depleted := false
	prevReturn := 0.0
	matchShare := decimal.Min(p.profile.SavingsRate, p.profile.EmployerMatch.Limit)
	if matchShare.IsNegative() {
		matchShare = decimal.Zero
	}

	for i := 0; i < p.horizon; i++ {
		r := returns[i]
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, &domain.DegeneracyError{Quantity: "return", YearIndex: i, Trial: trial}
		}
		if r < -1 {
			r = -1
		}
		rate := decimal.NewFromFloat(r)

		age := p.profile.CurrentAge + i
		year := domain.YearProjection{
			YearIndex:        i,
			Age:              age,
			Return:           r,
			StartingBalances: balances.Clone(),
			StartingBalance:  balances.Total(),
		}
		if p.profile.StartYear > 0 {
			year.Year = p.profile.StartYear + i
		}
		if i == p.yearsToRetirement {
			result.RetirementBalance = year.StartingBalance
		}

		growth := decimal.Zero
		if age < p.profile.RetirementAge {
			year.Phase = domain.PhaseAccumulation
			for _, acct := range domain.AccountTypes {
				g := balances[acct].Mul(rate)
				growth = growth.Add(g)
				balances[acct] = balances[acct].Add(g)
			}

			income := p.profile.CurrentIncome.Mul(p.inflationFactors[i])
			contribution := income.Mul(p.profile.SavingsRate)
			for _, acct := range domain.AccountTypes {
				share := contribution.Mul(p.split[acct])
				if share.IsZero() {
					continue
				}
				balances[acct] = balances[acct].Add(share)
				year.ContributionTaxSaving = year.ContributionTaxSaving.Add(p.tax.ContributionDeduction(share, acct, income))
			}
			match := income.Mul(p.profile.EmployerMatch.Rate).Mul(matchShare)
			balances[domain.TaxDeferred] = balances[domain.TaxDeferred].Add(match)

			year.Contribution = roundBalance(contribution)
			year.EmployerMatch = roundBalance(match)
			year.ContributionTaxSaving = roundBalance(year.ContributionTaxSaving)
			result.TotalContributed = result.TotalContributed.Add(year.Contribution).Add(year.EmployerMatch)
		} else {
			year.Phase = domain.PhaseWithdrawal
			gross := strategy.Withdrawal(WithdrawalState{
				RetirementYear: i - p.yearsToRetirement,
				YearsRemaining: p.horizon - i,
				Balance:        year.StartingBalance,
				PriorReturn:    prevReturn,
			})
			year.GrossWithdrawal, year.WithdrawalTax = p.debit(balances, gross)
			year.NetWithdrawal = year.GrossWithdrawal.Sub(year.WithdrawalTax)

			for _, acct := range domain.AccountTypes {
				g := balances[acct].Mul(rate)
				growth = growth.Add(g)
				balances[acct] = balances[acct].Add(g)
			}
			result.TotalWithdrawn = result.TotalWithdrawn.Add(year.GrossWithdrawal)
			result.TotalTaxes = result.TotalTaxes.Add(year.WithdrawalTax)
		}

		for _, acct := range domain.AccountTypes {
			b := roundBalance(balances[acct])
			if b.IsNegative() {
				b = decimal.Zero
			}
			balances[acct] = b
		}
		year.InvestmentGrowth = roundBalance(growth)
		year.EndingBalances = balances.Clone()
		year.EndingBalance = balances.Total()
		year.RealEndingBalance = roundBalance(year.EndingBalance.Div(p.inflationFactors[i+1]))

		if year.Phase == domain.PhaseWithdrawal && !year.EndingBalance.IsPositive() && !depleted {
			depleted = true
			idx, depletionAge := i, age
			result.DepletionYear = &idx
			result.DepletionAge = &depletionAge
		}
		year.Depleted = depleted

		result.Years[i] = year
		prevReturn = r
	}

	if p.horizon > 0 {
		result.FinalBalance = result.Years[p.horizon-1].EndingBalance
		if p.yearsToRetirement >= p.horizon {
			result.RetirementBalance = result.FinalBalance
		}
	}
	return result, nil
}

// debit drains gross from accounts in withdrawal order and returns the amount
// actually taken and the tax on it.
func (p *projector) debit(balances domain.Balances, gross decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	remaining := gross
	taken := decimal.Zero
	tax := decimal.Zero
	for _, acct := range p.order {
		if !remaining.IsPositive() {
			break
		}
		amount := decimal.Min(remaining, balances[acct])
		if !amount.IsPositive() {
			continue
		}
		balances[acct] = balances[acct].Sub(amount)
		taxed := p.tax.Withdrawal(amount, acct)
		tax = tax.Add(taxed.Tax)
		taken = taken.Add(amount)
		remaining = remaining.Sub(amount)
	}
	return roundBalance(taken), roundBalance(tax)
}

// Project runs a deterministic projection over the given annual returns, one
// per horizon year. Profile and assumptions are not modified.
func (e *Engine) Project(profile domain.Profile, assumptions domain.AssumptionSet, returns []float64) (*domain.ProjectionResult, error) {
	p, err := newProjector(profile.WithDefaults(), assumptions.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("invalid projection inputs: %w", err)
	}
	return e.project(p, returns)
}

// ProjectDeterministic projects with the plan return in every year.
func (e *Engine) ProjectDeterministic(profile domain.Profile, assumptions domain.AssumptionSet) (*domain.ProjectionResult, error) {
	p, err := newProjector(profile.WithDefaults(), assumptions.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("invalid projection inputs: %w", err)
	}
	return e.project(p, constantReturns(p.planReturn, p.horizon))
}

func (e *Engine) project(p *projector, returns []float64) (*domain.ProjectionResult, error) {
	result, err := p.run(returns, -1)
	if err != nil {
		return nil, err
	}
	if result.DepletionAge != nil {
		e.log().Debugf("projection depleted at age %d (year %d)", *result.DepletionAge, *result.DepletionYear)
	}
	e.log().Debugf("projection: %d years, retirement balance %s, final balance %s",
		len(result.Years), result.RetirementBalance.StringFixed(2), result.FinalBalance.StringFixed(2))
	return result, nil
}

func constantReturns(r float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = r
	}
	return out
}
