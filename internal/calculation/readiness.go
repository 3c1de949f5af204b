package calculation

import (
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// threshold maps a value to points: the first floor the value reaches wins.
type threshold struct {
	floor  float64
	points int
}

func scoreAgainst(value float64, thresholds []threshold) int {
	for _, t := range thresholds {
		if value >= t.floor {
			return t.points
		}
	}
	return 0
}

var (
	timeThresholds     = []threshold{{30, 20}, {20, 15}, {10, 10}, {5, 5}}
	rateThresholds     = []threshold{{0.15, 25}, {0.12, 20}, {0.10, 15}, {0.08, 10}, {0.05, 5}}
	progressThresholds = []threshold{{1.2, 25}, {1.0, 20}, {0.8, 15}, {0.6, 10}, {0.4, 5}}
	successThresholds  = []threshold{{0.90, 20}, {0.75, 15}, {0.60, 10}, {0.50, 5}}
)

// CalculateReadinessScore grades retirement readiness out of 100. The plan
// feasibility component uses the simulation success rate when sim is not nil
// and the savings shortfall otherwise.
func CalculateReadinessScore(profile domain.Profile, outlook domain.SavingsOutlook, sim *domain.SimulationResult) domain.ReadinessScore {
	timeScore := scoreAgainst(float64(profile.YearsToRetirement()), timeThresholds)
	savingsScore := scoreAgainst(profile.SavingsRate.InexactFloat64(), rateThresholds)

	// Benchmark: half a year's salary saved per year of age past 25.
	progressScore := 0
	balance := profile.Balances.Total()
	expectedMultiple := float64(profile.CurrentAge-25) * 0.5
	expected := profile.CurrentIncome.Mul(decimal.NewFromFloat(expectedMultiple))
	if expectedMultiple > 0 && expected.IsPositive() {
		progressScore = scoreAgainst(balance.Div(expected).InexactFloat64(), progressThresholds)
	} else if balance.IsPositive() {
		progressScore = 10
	}

	var feasibilityScore int
	switch {
	case sim != nil:
		feasibilityScore = scoreAgainst(sim.SuccessRate.InexactFloat64(), successThresholds)
	case !outlook.Shortfall.IsPositive() || !outlook.CorpusNeeded.IsPositive():
		feasibilityScore = 20
	default:
		ratio := outlook.Shortfall.Div(outlook.CorpusNeeded).InexactFloat64()
		switch {
		case ratio <= 0.1:
			feasibilityScore = 15
		case ratio <= 0.2:
			feasibilityScore = 10
		case ratio <= 0.4:
			feasibilityScore = 5
		}
	}

	diversificationScore := 5
	if profile.EmployerMatch.Rate.IsPositive() {
		diversificationScore += 3
	}
	funded := 0
	for _, acct := range domain.AccountTypes {
		if profile.Balances[acct].IsPositive() {
			funded++
		}
	}
	if funded > 1 {
		diversificationScore += 2
	}

	components := []domain.ScoreComponent{
		{Name: "time_factor", Score: timeScore, Max: 20},
		{Name: "savings_rate", Score: savingsScore, Max: 25},
		{Name: "current_progress", Score: progressScore, Max: 25},
		{Name: "plan_feasibility", Score: feasibilityScore, Max: 20},
		{Name: "diversification", Score: diversificationScore, Max: 10},
	}
	total := 0
	for _, c := range components {
		total += c.Score
	}

	grade, assessment := gradeFor(total)
	return domain.ReadinessScore{
		Total:           total,
		Max:             100,
		Grade:           grade,
		Assessment:      assessment,
		Components:      components,
		Recommendations: readinessRecommendations(timeScore, savingsScore, progressScore, feasibilityScore, diversificationScore),
	}
}

func gradeFor(score int) (string, string) {
	switch {
	case score >= 90:
		return "A", "Excellent"
	case score >= 80:
		return "B", "Good"
	case score >= 70:
		return "C", "Fair"
	case score >= 60:
		return "D", "Needs Improvement"
	default:
		return "F", "Critical"
	}
}

func readinessRecommendations(timeScore, savingsScore, progressScore, feasibilityScore, diversificationScore int) []string {
	recs := []string{}
	if timeScore < 10 {
		recs = append(recs,
			"Consider aggressive savings strategies due to limited time horizon",
			"Evaluate if working a few extra years is feasible")
	}
	if savingsScore < 15 {
		recs = append(recs,
			"Increase monthly retirement contributions",
			"Review budget for potential expense reductions",
			"Consider automatic contribution increases")
	}
	if progressScore < 15 {
		recs = append(recs,
			"Focus on building retirement savings foundation",
			"Consider catch-up contributions if eligible")
	}
	if feasibilityScore < 15 {
		recs = append(recs,
			"Revise retirement goals or timeline",
			"Consider part-time work in early retirement",
			"Explore ways to reduce retirement expenses")
	}
	if diversificationScore < 8 {
		recs = append(recs,
			"Maximize employer 401(k) matching",
			"Consider diversifying across account types (traditional, Roth)",
			"Review investment allocation for age-appropriate risk")
	}
	return recs
}
