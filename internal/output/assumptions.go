package output

import (
	"fmt"
	"strings"

	"github.com/rpgo/retirement-planner/internal/domain"
)

// GenerateAssumptions lists the key modeling assumptions behind a run.
func GenerateAssumptions(a domain.AssumptionSet) []string {
	out := []string{
		fmt.Sprintf("Expected return: %s annually (volatility %s)", FormatRate(a.PlanReturn()), FormatRate(a.ReturnStdDev)),
		fmt.Sprintf("Inflation: %s annually", FormatRate(a.InflationRate)),
		fmt.Sprintf("Safe withdrawal rate for the required corpus: %s", FormatRate(a.SafeWithdrawalRate)),
		"Withdrawal strategy: " + describeStrategy(a.Withdrawal),
	}
	if len(a.AssetClasses) > 0 {
		parts := make([]string, 0, len(a.AssetClasses))
		for _, ac := range a.AssetClasses {
			parts = append(parts, fmt.Sprintf("%s %s", ac.Name, FormatRate(ac.Weight)))
		}
		out = append(out, "Portfolio: "+strings.Join(parts, ", "))
	}
	if len(a.Tax.Brackets) > 0 {
		out = append(out, fmt.Sprintf("Tax-deferred withdrawals taxed on %d progressive brackets after a %s deduction",
			len(a.Tax.Brackets), FormatWholeCurrency(a.Tax.StandardDeduction)))
	} else {
		out = append(out, fmt.Sprintf("Tax-deferred withdrawals taxed at a flat %s", FormatRate(a.Tax.TaxDeferredRate)))
	}
	out = append(out,
		fmt.Sprintf("Taxable withdrawals: %s of each withdrawal treated as gains at %s", FormatRate(a.Tax.GainsFraction), FormatRate(a.Tax.CapitalGainsRate)),
		"Tax-free withdrawals are untaxed",
	)
	order := make([]string, 0, len(a.Order()))
	for _, acct := range a.Order() {
		order = append(order, string(acct))
	}
	out = append(out, "Withdrawal order: "+strings.Join(order, " → "))
	return out
}

func describeStrategy(w domain.WithdrawalParams) string {
	switch w.Strategy {
	case domain.StrategyFixedPercentage:
		return fmt.Sprintf("fixed percentage, %s of the retirement balance then inflation-adjusted", FormatRate(w.Rate))
	case domain.StrategyDynamic:
		return fmt.Sprintf("dynamic, starting at %s within %s to %s", FormatRate(w.Rate), FormatRate(w.FloorRate), FormatRate(w.CeilingRate))
	case domain.StrategyBondLadder:
		return fmt.Sprintf("bond ladder, %d rungs then %s", len(w.LadderAmounts), w.Fallback)
	case domain.StrategyNeedBased:
		return "need based, the inflation-adjusted annual need"
	}
	return string(w.Strategy)
}
