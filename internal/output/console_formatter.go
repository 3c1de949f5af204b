package output

import (
	"bytes"
	"fmt"
)

// ConsoleLiteFormatter provides a concise plain-text summary via the formatter interface.
type ConsoleLiteFormatter struct{}

func (c ConsoleLiteFormatter) Name() string { return "console-lite" }

func (c ConsoleLiteFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "RETIREMENT PLAN SUMMARY")
	fmt.Fprintln(&buf, "================================")

	if plan := report.Plan; plan != nil {
		fmt.Fprintf(&buf, "Readiness: %d/%d (%s)\n", plan.Readiness.Total, plan.Readiness.Max, plan.Readiness.Grade)
		fmt.Fprintf(&buf, "Corpus needed: %s  Projected: %s\n", FormatCompactCurrency(plan.Outlook.CorpusNeeded), FormatCompactCurrency(plan.Outlook.TotalProjected))
	}
	if proj := report.ProjectionResult(); proj != nil {
		depletion := "never"
		if proj.DepletionAge != nil {
			depletion = fmt.Sprintf("age %d", *proj.DepletionAge)
		}
		fmt.Fprintf(&buf, "Projection (%s): retirement=%s final=%s depleted=%s\n",
			proj.Strategy, FormatCompactCurrency(proj.RetirementBalance), FormatCompactCurrency(proj.FinalBalance), depletion)
	}
	if sim := report.SimulationResult(); sim != nil {
		fmt.Fprintf(&buf, "Monte Carlo: success=%s corpus_met=%s risk=%s trials=%d seed=%d\n",
			FormatRate(sim.SuccessRate), FormatRate(sim.CorpusMetRate), sim.RiskLevel, sim.Trials, sim.Seed)
		fmt.Fprintf(&buf, "  Final balance P10=%s P50=%s P90=%s\n",
			FormatCompactCurrency(sim.FinalBalance.P10), FormatCompactCurrency(sim.FinalBalance.P50), FormatCompactCurrency(sim.FinalBalance.P90))
	}
	if comparisons := report.StrategyComparisons(); len(comparisons) > 0 {
		for _, sc := range comparisons {
			line := fmt.Sprintf("%s: final=%s", sc.Strategy, FormatWholeCurrency(sc.Projection.FinalBalance))
			if sc.Simulation != nil {
				line += " success=" + FormatRate(sc.Simulation.SuccessRate)
			}
			fmt.Fprintln(&buf, line)
		}
		if rec := RecommendStrategy(comparisons); rec.Strategy != "" {
			fmt.Fprintf(&buf, "Recommended: %s\n", rec.Strategy)
		}
	}
	if res := report.Sensitivity; res != nil {
		for _, v := range res.Variables {
			for _, p := range v.Points {
				fmt.Fprintf(&buf, "%s %s: retirement balance %s\n", v.Variable, signed(p.Delta, -1), signedCurrency(p.RetirementBalanceChange))
			}
		}
	}
	return buf.Bytes(), nil
}
