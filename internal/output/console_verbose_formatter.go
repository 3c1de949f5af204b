package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	colorBorder = lipgloss.Color("#575653")
	colorAccent = lipgloss.Color("#3AA99F")
	colorText   = lipgloss.Color("#FFFCF0")
	colorMuted  = lipgloss.Color("#6F6E69")
	colorGreen  = lipgloss.Color("#879A39")
	colorYellow = lipgloss.Color("#D0A215")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorText).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Width(30)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(colorOrange)
)

// ConsoleFormatter renders the full terminal report for every section the
// report carries.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, titleStyle.Render("RETIREMENT PLANNING REPORT"))
	fmt.Fprintln(&buf)

	if report.Plan != nil {
		writePlan(&buf, report.Plan)
	}
	if proj := report.ProjectionResult(); proj != nil {
		writeProjection(&buf, proj)
	}
	if sim := report.SimulationResult(); sim != nil {
		writeSimulation(&buf, sim)
	}
	if comparisons := report.StrategyComparisons(); len(comparisons) > 0 {
		writeComparisons(&buf, comparisons)
	}
	if report.Sensitivity != nil {
		writeSensitivity(&buf, report.Sensitivity)
	}
	return buf.Bytes(), nil
}

func section(buf *bytes.Buffer, title string) {
	fmt.Fprintln(buf, sectionStyle.Render(title))
	fmt.Fprintln(buf, sectionStyle.Render(strings.Repeat("─", lipgloss.Width(title))))
}

func keyValue(buf *bytes.Buffer, label, value string) {
	fmt.Fprintf(buf, "%s %s\n", labelStyle.Render(label+":"), value)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	return t.Render()
}

func riskStyle(level domain.RiskLevel) lipgloss.Style {
	switch level {
	case domain.RiskLow:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case domain.RiskMedium:
		return lipgloss.NewStyle().Foreground(colorYellow)
	case domain.RiskHigh:
		return lipgloss.NewStyle().Foreground(colorOrange)
	default:
		return lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	}
}

func writePlan(buf *bytes.Buffer, plan *domain.PlanReport) {
	p := plan.Profile
	section(buf, "PROFILE")
	keyValue(buf, "Ages", fmt.Sprintf("%d now, retiring at %d, planning to %d", p.CurrentAge, p.RetirementAge, p.LifeExpectancy))
	keyValue(buf, "Current income", FormatCurrency(p.CurrentIncome))
	keyValue(buf, "Savings rate", FormatRate(p.SavingsRate))
	for _, acct := range domain.AccountTypes {
		keyValue(buf, "Balance "+string(acct), FormatCurrency(p.Balances[acct]))
	}
	keyValue(buf, "Total savings", FormatCurrency(p.Balances.Total()))
	fmt.Fprintln(buf)

	section(buf, "KEY ASSUMPTIONS")
	for _, a := range GenerateAssumptions(plan.Assumptions) {
		fmt.Fprintf(buf, "• %s\n", a)
	}
	fmt.Fprintln(buf)

	n := plan.Needs
	section(buf, "RETIREMENT NEEDS")
	keyValue(buf, "Desired income (today)", FormatCurrency(n.DesiredIncomeToday))
	keyValue(buf, "Annual need (today)", FormatCurrency(n.AnnualNeedToday))
	keyValue(buf, "Annual need at retirement", FormatCurrency(n.FutureAnnualNeed))
	keyValue(buf, "Corpus (safe withdrawal)", FormatCurrency(n.CorpusBySWR))
	keyValue(buf, "Corpus (annuity)", FormatCurrency(n.CorpusByAnnuity))
	fmt.Fprintln(buf)

	o := plan.Outlook
	section(buf, "SAVINGS OUTLOOK")
	keyValue(buf, "Projected at retirement", FormatCurrency(o.TotalProjected))
	keyValue(buf, "Corpus needed", FormatCurrency(o.CorpusNeeded))
	if o.Shortfall.IsPositive() {
		keyValue(buf, "Shortfall", warnStyle.Render(FormatCurrency(o.Shortfall)))
		keyValue(buf, "Additional monthly saving", FormatCurrency(o.AdditionalMonthlyNeeded))
	} else {
		keyValue(buf, "Surplus", FormatCurrency(o.Surplus))
	}
	keyValue(buf, "Effective savings rate", FormatRate(o.EffectiveSavingsRate))
	fmt.Fprintln(buf)

	r := plan.Readiness
	section(buf, "READINESS")
	keyValue(buf, "Score", fmt.Sprintf("%d/%d (%s) %s", r.Total, r.Max, r.Grade, r.Assessment))
	rows := make([][]string, 0, len(r.Components))
	for _, c := range r.Components {
		rows = append(rows, []string{c.Name, fmt.Sprintf("%d/%d", c.Score, c.Max)})
	}
	fmt.Fprintln(buf, renderTable([]string{"Component", "Score"}, rows))
	for _, rec := range r.Recommendations {
		fmt.Fprintf(buf, "• %s\n", rec)
	}
	fmt.Fprintln(buf)

	if len(plan.Milestones) > 0 {
		section(buf, "MILESTONES")
		rows = rows[:0]
		for _, m := range plan.Milestones {
			rows = append(rows, []string{intToString(m.Age), m.Multiple.String() + "x", FormatWholeCurrency(m.Target), intToString(m.YearsAway), m.Priority})
		}
		fmt.Fprintln(buf, renderTable([]string{"Age", "Multiple", "Target", "Years Away", "Priority"}, rows))
		fmt.Fprintln(buf)
	}

	if len(plan.CatchUp) > 0 {
		section(buf, "CATCH-UP OPTIONS")
		rows = rows[:0]
		for _, c := range plan.CatchUp {
			rows = append(rows, []string{c.Name, FormatCurrency(c.AdditionalMonthly), FormatWholeCurrency(c.TotalAdditional), c.Feasibility})
		}
		fmt.Fprintln(buf, renderTable([]string{"Option", "Extra Monthly", "Total", "Feasibility"}, rows))
		fmt.Fprintln(buf)
	}

	t := plan.Tax
	section(buf, "TAX OUTLOOK")
	keyValue(buf, "Marginal rate now", FormatRate(t.CurrentMarginalRate))
	keyValue(buf, "Marginal rate in retirement", FormatRate(t.RetirementMarginalRate))
	keyValue(buf, "Annual contribution saving", FormatCurrency(t.AnnualContributionSaving))
	keyValue(buf, "Annual retirement tax", FormatCurrency(t.AnnualRetirementTax))
	keyValue(buf, "Tax diversification", fmt.Sprintf("%d/100", t.DiversificationScore))
	for _, rec := range t.Recommendations {
		fmt.Fprintf(buf, "• %s\n", rec)
	}
	fmt.Fprintln(buf)

	if len(plan.Warnings) > 0 {
		section(buf, "WARNINGS")
		for _, w := range plan.Warnings {
			fmt.Fprintln(buf, warnStyle.Render("! "+w))
		}
		fmt.Fprintln(buf)
	}
}

// milestoneYears picks every fifth year plus the retirement and final years.
func milestoneYears(proj *domain.ProjectionResult) []domain.YearProjection {
	var out []domain.YearProjection
	last := len(proj.Years) - 1
	for i, y := range proj.Years {
		firstWithdrawal := y.Phase == domain.PhaseWithdrawal && (i == 0 || proj.Years[i-1].Phase != domain.PhaseWithdrawal)
		if i%5 == 0 || i == last || firstWithdrawal {
			out = append(out, y)
		}
	}
	return out
}

func writeProjection(buf *bytes.Buffer, proj *domain.ProjectionResult) {
	section(buf, "DETERMINISTIC PROJECTION ("+strings.ToUpper(string(proj.Strategy))+")")
	keyValue(buf, "Balance at retirement", FormatCurrency(proj.RetirementBalance))
	keyValue(buf, "Required corpus", FormatCurrency(proj.RequiredCorpus))
	keyValue(buf, "Final balance", FormatCurrency(proj.FinalBalance))
	keyValue(buf, "Total contributed", FormatCurrency(proj.TotalContributed))
	keyValue(buf, "Total withdrawn", FormatCurrency(proj.TotalWithdrawn))
	keyValue(buf, "Total withdrawal taxes", FormatCurrency(proj.TotalTaxes))
	if proj.DepletionAge != nil {
		keyValue(buf, "Depleted at age", warnStyle.Render(intToString(*proj.DepletionAge)))
	} else {
		keyValue(buf, "Depleted", "never")
	}

	rows := [][]string{}
	for _, y := range milestoneYears(proj) {
		flow := FormatWholeCurrency(y.Contribution.Add(y.EmployerMatch))
		if y.Phase == domain.PhaseWithdrawal {
			flow = "-" + FormatWholeCurrency(y.GrossWithdrawal)
		}
		rows = append(rows, []string{
			intToString(y.Age),
			string(y.Phase),
			FormatWholeCurrency(y.StartingBalance),
			flow,
			FormatWholeCurrency(y.InvestmentGrowth),
			FormatWholeCurrency(y.EndingBalance),
			FormatWholeCurrency(y.RealEndingBalance),
		})
	}
	fmt.Fprintln(buf, renderTable([]string{"Age", "Phase", "Start", "Flow", "Growth", "End", "End (real)"}, rows))
	fmt.Fprintln(buf)
}

func writeSimulation(buf *bytes.Buffer, sim *domain.SimulationResult) {
	section(buf, "MONTE CARLO SIMULATION")
	for _, r := range MonteCarloSummaryRows(sim) {
		value := r[1]
		if r[0] == "Risk Level" {
			value = riskStyle(sim.RiskLevel).Render(value)
		}
		keyValue(buf, r[0], value)
	}

	if len(sim.YearlyBands) > 0 {
		rows := [][]string{}
		last := len(sim.YearlyBands) - 1
		for i, b := range sim.YearlyBands {
			if i%5 != 0 && i != last {
				continue
			}
			rows = append(rows, []string{
				intToString(b.Age),
				FormatWholeCurrency(b.P10),
				FormatWholeCurrency(b.P25),
				FormatWholeCurrency(b.P50),
				FormatWholeCurrency(b.P75),
				FormatWholeCurrency(b.P90),
				FormatRate(b.DepletedRate),
			})
		}
		fmt.Fprintln(buf, renderTable([]string{"Age", "P10", "P25", "P50", "P75", "P90", "Depleted"}, rows))
	}
	fmt.Fprintln(buf)
}

func writeComparisons(buf *bytes.Buffer, comparisons []domain.StrategyComparison) {
	section(buf, "WITHDRAWAL STRATEGY COMPARISON")
	rows := make([][]string, 0, len(comparisons))
	for _, sc := range comparisons {
		depletion := "never"
		if sc.Projection.DepletionAge != nil {
			depletion = intToString(*sc.Projection.DepletionAge)
		}
		success, median, risk := "-", "-", "-"
		if sc.Simulation != nil {
			success = FormatRate(sc.Simulation.SuccessRate)
			median = FormatWholeCurrency(sc.Simulation.FinalBalance.P50)
			risk = riskStyle(sc.Simulation.RiskLevel).Render(string(sc.Simulation.RiskLevel))
		}
		rows = append(rows, []string{
			string(sc.Strategy),
			FormatWholeCurrency(sc.Projection.FinalBalance),
			FormatWholeCurrency(sc.Projection.TotalWithdrawn),
			depletion,
			success,
			median,
			risk,
		})
	}
	fmt.Fprintln(buf, renderTable([]string{"Strategy", "Final", "Withdrawn", "Depleted", "Success", "Median Final", "Risk"}, rows))

	rec := RecommendStrategy(comparisons)
	if rec.Strategy != "" {
		if rec.Simulated {
			fmt.Fprintf(buf, "Recommended: %s (success %s, median final %s)\n", rec.Strategy, FormatRate(rec.SuccessRate), FormatWholeCurrency(rec.FinalBalance))
		} else {
			fmt.Fprintf(buf, "Recommended: %s (final balance %s)\n", rec.Strategy, FormatWholeCurrency(rec.FinalBalance))
		}
	}
	fmt.Fprintln(buf)
}

func writeSensitivity(buf *bytes.Buffer, res *domain.SensitivityResult) {
	title := "SENSITIVITY ANALYSIS (" + strings.ToUpper(string(res.Mode)) + ")"
	section(buf, title)
	keyValue(buf, "Baseline required corpus", FormatCurrency(res.Baseline.RequiredCorpus))
	keyValue(buf, "Baseline retirement balance", FormatCurrency(res.Baseline.RetirementBalance))
	if res.Baseline.SuccessRate != nil {
		keyValue(buf, "Baseline success rate", FormatRate(*res.Baseline.SuccessRate))
		keyValue(buf, "Trials per point", fmt.Sprintf("%d (seed %d)", res.Trials, res.Seed))
	}

	for _, v := range res.Variables {
		fmt.Fprintf(buf, "\n%s (baseline %s)\n", sectionStyle.Render(string(v.Variable)), v.Baseline.String())
		rows := make([][]string, 0, len(v.Points))
		for _, p := range v.Points {
			success := "-"
			if p.SuccessRateChange != nil {
				success = signed(p.SuccessRateChange.Mul(decimal.NewFromInt(100)), 1) + " pts"
			}
			rows = append(rows, []string{
				signed(p.Delta, -1),
				p.Value.String(),
				FormatWholeCurrency(p.Metrics.RetirementBalance),
				signedCurrency(p.RetirementBalanceChange),
				signedCurrency(p.RequiredCorpusChange),
				success,
			})
		}
		fmt.Fprintln(buf, renderTable([]string{"Delta", "Value", "Retirement Balance", "Change", "Corpus Change", "Success Change"}, rows))
	}
	fmt.Fprintln(buf)
}

// signed prefixes non-negative values with "+"; places < 0 keeps the exact value.
func signed(d decimal.Decimal, places int32) string {
	s := d.String()
	if places >= 0 {
		s = d.StringFixed(places)
	}
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}

func signedCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatWholeCurrency(d)
	}
	return "+" + FormatWholeCurrency(d)
}
