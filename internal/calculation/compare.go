package calculation

import (
	"context"
	"fmt"

	"github.com/rpgo/retirement-planner/internal/domain"
)

// CompareStrategies evaluates each withdrawal strategy against the same
// profile, assumptions, and seed. Results follow the request order. With zero
// trials only the deterministic projections are produced.
func (e *Engine) CompareStrategies(ctx context.Context, profile domain.Profile, assumptions domain.AssumptionSet, strategies []domain.StrategyID, opts domain.SimulationOptions) ([]domain.StrategyComparison, error) {
	if len(strategies) == 0 {
		return nil, domain.NewConfigurationError("compare.strategies", "at least one strategy is required")
	}
	if opts.Trials < 0 {
		return nil, domain.NewConfigurationError("simulation.trials", "must not be negative, got %d", opts.Trials)
	}

	profile = profile.WithDefaults()
	projectors := make([]*projector, len(strategies))
	for i, id := range strategies {
		if !id.IsValid() {
			return nil, domain.NewConfigurationError("compare.strategies", "unknown withdrawal strategy %q", id)
		}
		a := assumptions.Clone()
		a.Withdrawal.Strategy = id
		p, err := newProjector(profile, a.WithDefaults())
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", id, err)
		}
		projectors[i] = p
	}

	if opts.Trials > 0 && opts.Seed == nil {
		seed := seedFunc()
		opts.Seed = &seed
	}

	comparisons := make([]domain.StrategyComparison, len(strategies))
	for i, p := range projectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cmp := domain.StrategyComparison{Strategy: strategies[i]}
		var err error
		cmp.Projection, err = e.project(p, constantReturns(p.planReturn, p.horizon))
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", strategies[i], err)
		}
		if opts.Trials > 0 {
			cmp.Simulation, err = e.simulate(ctx, p, opts)
			if err != nil {
				return nil, fmt.Errorf("strategy %s: %w", strategies[i], err)
			}
		}
		e.log().Infof("strategy %s: final balance %s", strategies[i], cmp.Projection.FinalBalance.StringFixed(2))
		comparisons[i] = cmp
	}
	return comparisons, nil
}
