package calculation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// compound returns (1+rate)^n for n >= 0, rounded at each step.
func compound(rate decimal.Decimal, n int) decimal.Decimal {
	factor := decimal.NewFromInt(1)
	growth := decimal.NewFromInt(1).Add(rate)
	for i := 0; i < n; i++ {
		factor = factor.Mul(growth).Round(12)
	}
	return factor
}

// CalculateRetirementNeeds estimates the annual need at retirement and the
// corpus that funds it.
func CalculateRetirementNeeds(profile domain.Profile, assumptions domain.AssumptionSet) domain.RetirementNeeds {
	yearsToRetirement := profile.YearsToRetirement()
	retirementYears := profile.RetirementYears()

	desired := profile.CurrentIncome.Mul(profile.DesiredIncomeRatio)
	netNeeded := desired.Sub(profile.EstimatedSocialSecurity).Sub(profile.EstimatedPension)
	if netNeeded.IsNegative() {
		netNeeded = decimal.Zero
	}
	annualNeed := netNeeded.Add(profile.EstimatedHealthcare)

	inflationFactor := compound(assumptions.InflationRate, yearsToRetirement)
	futureNeed := roundMoney(annualNeed.Mul(inflationFactor))

	needs := domain.RetirementNeeds{
		DesiredIncomeToday: roundMoney(desired),
		NetIncomeNeeded:    roundMoney(netNeeded),
		AnnualNeedToday:    roundMoney(annualNeed),
		FutureAnnualNeed:   futureNeed,
		InflationFactor:    inflationFactor,
		YearsToRetirement:  yearsToRetirement,
		RetirementYears:    retirementYears,
		CorpusBySWR:        decimal.Zero,
	}
	if assumptions.SafeWithdrawalRate.IsPositive() {
		needs.CorpusBySWR = roundMoney(futureNeed.Div(assumptions.SafeWithdrawalRate))
	}

	realReturn := assumptions.PlanReturn().Sub(assumptions.InflationRate)
	if !realReturn.IsPositive() {
		needs.CorpusByAnnuity = roundMoney(futureNeed.Mul(decimal.NewFromInt(int64(retirementYears))))
	} else {
		discount := decimal.NewFromInt(1).Div(compound(realReturn, retirementYears))
		pvFactor := decimal.NewFromInt(1).Sub(discount).Div(realReturn)
		needs.CorpusByAnnuity = roundMoney(futureNeed.Mul(pvFactor))
	}
	return needs
}

// CalculateSavingsOutlook projects current savings and today's contributions
// to retirement at the plan return and compares them with the required corpus.
func CalculateSavingsOutlook(profile domain.Profile, assumptions domain.AssumptionSet) domain.SavingsOutlook {
	n := profile.YearsToRetirement()
	r := assumptions.PlanReturn()
	needs := CalculateRetirementNeeds(profile, assumptions)

	currentFV := profile.Balances.Total().Mul(compound(r, n))
	annual := profile.AnnualContribution().Add(profile.AnnualEmployerMatch())

	var contributionsFV decimal.Decimal
	if r.IsZero() {
		contributionsFV = annual.Mul(decimal.NewFromInt(int64(n)))
	} else {
		contributionsFV = annual.Mul(compound(r, n).Sub(decimal.NewFromInt(1)).Div(r))
	}

	total := currentFV.Add(contributionsFV)
	gap := needs.CorpusBySWR.Sub(total)

	outlook := domain.SavingsOutlook{
		CurrentSavingsFutureValue: roundMoney(currentFV),
		ContributionsFutureValue:  roundMoney(contributionsFV),
		TotalProjected:            roundMoney(total),
		CorpusNeeded:              needs.CorpusBySWR,
		Shortfall:                 roundMoney(decimal.Max(gap, decimal.Zero)),
		Surplus:                   roundMoney(decimal.Max(gap.Neg(), decimal.Zero)),
		AdditionalMonthlyNeeded:   decimal.Zero,
		EffectiveAnnualSaving:     roundMoney(annual),
		EffectiveSavingsRate:      decimal.Zero,
	}
	if profile.CurrentIncome.IsPositive() {
		outlook.EffectiveSavingsRate = annual.Div(profile.CurrentIncome).Round(4)
	}

	if gap.IsPositive() && n > 0 {
		months := n * 12
		if r.IsZero() {
			outlook.AdditionalMonthlyNeeded = roundMoney(gap.Div(decimal.NewFromInt(int64(months))))
		} else {
			monthlyRate := r.Div(decimal.NewFromInt(12))
			denominator := compound(monthlyRate, months).Sub(decimal.NewFromInt(1))
			if !denominator.IsZero() {
				outlook.AdditionalMonthlyNeeded = roundMoney(gap.Mul(monthlyRate).Div(denominator))
			}
		}
	}
	return outlook
}

// milestoneMultiples are salary multiples to have saved by each age.
var milestoneMultiples = []struct {
	age      int
	multiple float64
}{
	{25, 0.5}, {30, 1}, {35, 2}, {40, 3}, {45, 4}, {50, 6}, {55, 7}, {60, 8},
}

var retirementMultiple = decimal.NewFromInt(10)

// GenerateMilestones lists salary-multiple targets between now and retirement.
func GenerateMilestones(profile domain.Profile) []domain.Milestone {
	milestones := []domain.Milestone{}
	add := func(age int, multiple decimal.Decimal) {
		years := age - profile.CurrentAge
		priority := "medium"
		if years <= 5 {
			priority = "high"
		}
		milestones = append(milestones, domain.Milestone{
			Age:         age,
			Multiple:    multiple,
			Target:      roundMoney(profile.CurrentIncome.Mul(multiple)),
			YearsAway:   years,
			Priority:    priority,
			Description: fmt.Sprintf("Have %sx annual salary by age %d", multiple.String(), age),
		})
	}

	for _, m := range milestoneMultiples {
		if profile.CurrentAge < m.age && m.age < profile.RetirementAge {
			add(m.age, decimal.NewFromFloat(m.multiple))
		}
	}
	if profile.CurrentAge < profile.RetirementAge {
		add(profile.RetirementAge, retirementMultiple)
	}
	sort.SliceStable(milestones, func(i, j int) bool { return milestones[i].Age < milestones[j].Age })
	return milestones
}

var expenseReductions = []float64{0.10, 0.15, 0.20}

// catchUpMonthly spreads amount over the remaining months, discounted by half
// the remaining years of growth at the plan return.
func catchUpMonthly(amount decimal.Decimal, years int, planReturn float64) decimal.Decimal {
	months := decimal.NewFromInt(int64(years * 12))
	discount := decimal.NewFromFloat(math.Pow(1+planReturn, float64(years)/2))
	return roundMoney(amount.Div(months).Div(discount))
}

// CatchUpStrategies lists ways to close a savings shortfall: save more now,
// work one to three more years, or spend less in retirement. It returns nil
// when there is no shortfall.
func CatchUpStrategies(outlook domain.SavingsOutlook, profile domain.Profile, assumptions domain.AssumptionSet) []domain.CatchUpStrategy {
	shortfall := outlook.Shortfall
	if !shortfall.IsPositive() {
		return nil
	}
	years := profile.YearsToRetirement()
	r := assumptions.PlanReturn().InexactFloat64()
	currentMonthly := outlook.EffectiveAnnualSaving.Div(decimal.NewFromInt(12))

	var strategies []domain.CatchUpStrategy
	var baseline decimal.Decimal
	if years > 0 {
		baseline = catchUpMonthly(shortfall, years, r)
		feasibility := "medium"
		if baseline.LessThan(currentMonthly.Mul(decimal.NewFromFloat(0.5))) {
			feasibility = "high"
		}
		strategies = append(strategies, domain.CatchUpStrategy{
			Name:              "Increase Monthly Savings",
			Description:       "Raise monthly contributions until retirement",
			AdditionalMonthly: baseline,
			TotalAdditional:   roundMoney(baseline.Mul(decimal.NewFromInt(int64(years * 12)))),
			Feasibility:       feasibility,
		})
	}

	for extra := 1; extra <= 3; extra++ {
		span := years + extra
		monthly := catchUpMonthly(shortfall, span, r)
		feasibility := "medium"
		if years > 0 && monthly.LessThan(baseline.Mul(decimal.NewFromFloat(0.7))) {
			feasibility = "high"
		}
		plural := ""
		if extra > 1 {
			plural = "s"
		}
		strategies = append(strategies, domain.CatchUpStrategy{
			Name:              fmt.Sprintf("Work %d More Year%s", extra, plural),
			Description:       fmt.Sprintf("Delay retirement by %d year%s and save the difference", extra, plural),
			AdditionalMonthly: monthly,
			TotalAdditional:   roundMoney(monthly.Mul(decimal.NewFromInt(int64(span * 12)))),
			ExtraYears:        extra,
			Feasibility:       feasibility,
		})
	}

	// spending cuts only shrink the gap; with no years left there is nothing to save toward
	if years == 0 {
		return strategies
	}
	for _, cut := range expenseReductions {
		reduction := decimal.NewFromFloat(cut)
		monthly := catchUpMonthly(shortfall.Mul(decimal.NewFromInt(1).Sub(reduction)), years, r)
		feasibility := "low"
		if cut <= 0.15 {
			feasibility = "medium"
		}
		strategies = append(strategies, domain.CatchUpStrategy{
			Name:              fmt.Sprintf("Reduce Retirement Expenses by %s%%", reduction.Mul(decimal.NewFromInt(100)).StringFixed(0)),
			Description:       "Lower retirement spending and save the smaller difference",
			AdditionalMonthly: monthly,
			TotalAdditional:   roundMoney(monthly.Mul(decimal.NewFromInt(int64(years * 12)))),
			ExpenseReduction:  reduction,
			Feasibility:       feasibility,
		})
	}
	return strategies
}

var taxableSocialSecurityShare = decimal.NewFromFloat(0.85)

// AnalyzeTaxOutlook compares tax rates now and in retirement and scores how
// well balances are spread across tax treatments.
func AnalyzeTaxOutlook(profile domain.Profile, assumptions domain.AssumptionSet) domain.TaxOutlook {
	te := NewTaxEngine(assumptions.Tax)
	income := profile.CurrentIncome
	retirementIncome := income.Mul(profile.DesiredIncomeRatio)

	currentRate := te.MarginalRate(income)
	retirementRate := te.MarginalRate(retirementIncome)

	deferredContribution := profile.AnnualContribution().Mul(profile.Split()[domain.TaxDeferred])
	taxableRetirement := retirementIncome.Sub(profile.EstimatedSocialSecurity.Mul(taxableSocialSecurityShare))
	if taxableRetirement.IsNegative() {
		taxableRetirement = decimal.Zero
	}

	outlook := domain.TaxOutlook{
		CurrentMarginalRate:      currentRate,
		RetirementMarginalRate:   retirementRate,
		RateDifference:           retirementRate.Sub(currentRate),
		AnnualContributionSaving: roundMoney(te.ContributionDeduction(deferredContribution, domain.TaxDeferred, income)),
		AnnualRetirementTax:      roundMoney(te.IncomeTax(taxableRetirement)),
		DiversificationScore:     taxDiversificationScore(profile.Balances),
	}
	outlook.Recommendations = taxRecommendations(currentRate, retirementRate, outlook.DiversificationScore)
	return outlook
}

// taxDiversificationScore is a normalized Herfindahl index over account
// types: 0 when everything sits in one treatment, 100 when evenly split.
func taxDiversificationScore(balances domain.Balances) int {
	total := balances.Total()
	if !total.IsPositive() {
		return 0
	}
	concentration := decimal.Zero
	for _, acct := range domain.AccountTypes {
		share := balances[acct].Div(total)
		concentration = concentration.Add(share.Mul(share))
	}
	types := decimal.NewFromInt(int64(len(domain.AccountTypes)))
	minConcentration := decimal.NewFromInt(1).Div(types)
	score := decimal.NewFromInt(1).Sub(concentration).
		Div(decimal.NewFromInt(1).Sub(minConcentration)).
		Mul(decimal.NewFromInt(100)).
		Round(0)
	return int(score.IntPart())
}

func taxRecommendations(currentRate, retirementRate decimal.Decimal, diversification int) []string {
	var recs []string
	switch {
	case currentRate.GreaterThan(retirementRate):
		recs = append(recs,
			"Consider maximizing traditional 401(k) contributions to reduce current taxes",
			"Traditional IRA contributions may provide tax deductions",
			"Consider tax-deferred investment strategies",
		)
	case retirementRate.GreaterThan(currentRate):
		recs = append(recs,
			"Consider Roth 401(k) contributions to pay taxes now at lower rate",
			"Roth IRA conversions may be beneficial",
			"Mix of traditional and Roth accounts provides tax flexibility",
		)
	default:
		recs = append(recs,
			"Consider a balanced approach with both traditional and Roth accounts",
			"Tax diversification provides flexibility in retirement",
		)
	}
	if diversification < 40 {
		recs = append(recs, "Savings are concentrated in one tax treatment; spread new contributions across account types")
	}
	return append(recs,
		"Maximize employer matching contributions",
		"Consider HSA contributions for triple tax advantage",
		"Review tax-loss harvesting opportunities in taxable accounts",
	)
}

// ValidateInputs returns non-fatal warnings about implausible inputs.
func ValidateInputs(profile domain.Profile, assumptions domain.AssumptionSet) []string {
	var warnings []string
	f := func(d decimal.Decimal) float64 { return d.InexactFloat64() }

	if years := profile.RetirementAge - profile.CurrentAge; years > 0 && years < 5 {
		warnings = append(warnings, "Very short time to retirement - consider if goals are realistic")
	}
	if years := profile.LifeExpectancy - profile.RetirementAge; years > 0 && years < 10 {
		warnings = append(warnings, "Short retirement period - consider increasing life expectancy assumption")
	}
	if r := f(assumptions.PlanReturn()); r < 0 || r > 0.15 {
		warnings = append(warnings, "Expected return seems unrealistic (typically 4-12%)")
	}
	if sd := f(assumptions.ReturnStdDev); sd > 0.35 {
		warnings = append(warnings, "Return volatility above 35% is far outside historical norms")
	}
	if inf := f(assumptions.InflationRate); inf < 0 || inf > 0.08 {
		warnings = append(warnings, "Inflation rate seems unrealistic (typically 2-4%)")
	}
	if sr := f(profile.SavingsRate); sr > 0.5 {
		warnings = append(warnings, "Savings rate over 50% may not be sustainable")
	} else if sr > 0 && sr < 0.1 {
		warnings = append(warnings, "Savings rate below 10% may be insufficient for retirement")
	}
	if f(profile.EmployerMatch.Rate) > 1 {
		warnings = append(warnings, "Employer match rate over 100% seems unrealistic")
	}
	if f(profile.EmployerMatch.Limit) > 0.15 {
		warnings = append(warnings, "Employer match limit over 15% of salary seems unrealistic")
	}
	return warnings
}
