package output

import (
	"sort"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Recommendation encapsulates the selection result of the best strategy.
type Recommendation struct {
	Strategy     domain.StrategyID
	SuccessRate  decimal.Decimal
	FinalBalance decimal.Decimal
	// Simulated is false when the ranking used deterministic projections only.
	Simulated bool
}

// RecommendStrategy ranks compared strategies by simulated success rate, then
// by median final balance. Without simulations it prefers strategies that
// never deplete, then the larger final balance. Ties keep request order.
func RecommendStrategy(comparisons []domain.StrategyComparison) Recommendation {
	if len(comparisons) == 0 {
		return Recommendation{}
	}
	ranked := append([]domain.StrategyComparison(nil), comparisons...)
	simulated := true
	for _, c := range ranked {
		if c.Simulation == nil {
			simulated = false
			break
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if simulated {
			if !a.Simulation.SuccessRate.Equal(b.Simulation.SuccessRate) {
				return a.Simulation.SuccessRate.GreaterThan(b.Simulation.SuccessRate)
			}
			return a.Simulation.FinalBalance.P50.GreaterThan(b.Simulation.FinalBalance.P50)
		}
		if a.Projection.Depleted() != b.Projection.Depleted() {
			return !a.Projection.Depleted()
		}
		return a.Projection.FinalBalance.GreaterThan(b.Projection.FinalBalance)
	})

	best := ranked[0]
	rec := Recommendation{Strategy: best.Strategy, Simulated: simulated, FinalBalance: best.Projection.FinalBalance}
	if simulated {
		rec.SuccessRate = best.Simulation.SuccessRate
		rec.FinalBalance = best.Simulation.FinalBalance.P50
	}
	return rec
}
