package calculation

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/montanaflynn/stats"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// MonteCarloSimulator runs many projections over sampled return paths.
type MonteCarloSimulator struct {
	Distribution ReturnDistribution
	Trials       int
	Seed         int64
	Workers      int
	Logger       Logger

	projector *projector
}

// trialOutcome is the slice of a trial's projection the aggregation needs.
type trialOutcome struct {
	depleted     bool
	depletionAge int
	corpusMet    bool
	retirement   float64
	final        float64
	yearly       []float64
	depletedBy   int // first depleted year index, or horizon
}

// NewMonteCarloSimulator creates a simulator for validated inputs.
func NewMonteCarloSimulator(p *projector, dist ReturnDistribution, opts domain.SimulationOptions, logger Logger) *MonteCarloSimulator {
	seed := seedFunc()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	return &MonteCarloSimulator{
		Distribution: dist,
		Trials:       opts.Trials,
		Seed:         seed,
		Workers:      opts.Workers,
		Logger:       orNop(logger),
		projector:    p,
	}
}

// RunSimulation executes every trial and aggregates the outcomes. A cancelled
// context aborts the run without a partial result.
func (mcs *MonteCarloSimulator) RunSimulation(ctx context.Context) (*domain.SimulationResult, error) {
	p := mcs.projector
	started := nowFunc()
	mcs.Logger.Infof("monte carlo: %d trials, seed %d, distribution %s, horizon %d years",
		mcs.Trials, mcs.Seed, mcs.Distribution.Name(), p.horizon)

	result := &domain.SimulationResult{
		Strategy:       p.withdrawal.Strategy,
		Distribution:   mcs.Distribution.Name(),
		Trials:         mcs.Trials,
		Seed:           mcs.Seed,
		HorizonYears:   p.horizon,
		RequiredCorpus: p.requiredCorpus(),
		YearlyBands:    []domain.YearBand{},
	}

	if p.horizon == 0 {
		// Nothing can deplete over an empty horizon.
		balance := roundMoney(p.profile.Balances.Total())
		result.SuccessRate = decimal.NewFromInt(1)
		result.CorpusMetRate = decimal.Zero
		if balance.GreaterThanOrEqual(result.RequiredCorpus) {
			result.CorpusMetRate = decimal.NewFromInt(1)
		}
		result.RetirementBalance = flatBands(balance)
		result.FinalBalance = flatBands(balance)
		result.MeanFinalBalance = balance
		result.RiskLevel = domain.RiskLevelFor(result.SuccessRate)
		return result, nil
	}

	outcomes := make([]trialOutcome, mcs.Trials)
	err := runIndexed(ctx, mcs.Trials, mcs.Workers, func(i int) error {
		outcome, err := mcs.runSingleSimulation(i)
		if err != nil {
			return err
		}
		outcomes[i] = outcome
		return nil
	})
	if err != nil {
		return nil, err
	}

	mcs.aggregate(result, outcomes)
	mcs.Logger.Debugf("monte carlo finished in %s: success %s, corpus met %s",
		nowFunc().Sub(started), result.SuccessRate.StringFixed(4), result.CorpusMetRate.StringFixed(4))
	return result, nil
}

// runSingleSimulation runs trial i on its own generator.
func (mcs *MonteCarloSimulator) runSingleSimulation(i int) (trialOutcome, error) {
	p := mcs.projector
	rng := rand.New(rand.NewSource(trialSeed(mcs.Seed, i)))
	returns := make([]float64, p.horizon)
	mcs.Distribution.Fill(rng, returns)

	proj, err := p.run(returns, i)
	if err != nil {
		return trialOutcome{}, fmt.Errorf("trial %d: %w", i, err)
	}

	outcome := trialOutcome{
		depleted:   proj.Depleted(),
		corpusMet:  proj.CorpusMet(),
		retirement: proj.RetirementBalance.InexactFloat64(),
		final:      proj.FinalBalance.InexactFloat64(),
		yearly:     make([]float64, p.horizon),
		depletedBy: p.horizon,
	}
	if proj.DepletionYear != nil {
		outcome.depletionAge = *proj.DepletionAge
		outcome.depletedBy = *proj.DepletionYear
	}
	for y, yp := range proj.Years {
		outcome.yearly[y] = yp.EndingBalance.InexactFloat64()
	}
	return outcome, nil
}

func (mcs *MonteCarloSimulator) aggregate(result *domain.SimulationResult, outcomes []trialOutcome) {
	p := mcs.projector
	n := len(outcomes)

	successes, corpusMet := 0, 0
	retirement := make([]float64, n)
	final := make([]float64, n)
	var depletionAges []float64
	for i, o := range outcomes {
		if !o.depleted {
			successes++
		} else {
			depletionAges = append(depletionAges, float64(o.depletionAge))
		}
		if o.corpusMet {
			corpusMet++
		}
		retirement[i] = o.retirement
		final[i] = o.final
	}

	result.SuccessRate = ratio(successes, n)
	result.CorpusMetRate = ratio(corpusMet, n)
	result.RetirementBalance = percentileBands(retirement)
	result.FinalBalance = percentileBands(final)
	if mean, err := stats.Mean(final); err == nil {
		result.MeanFinalBalance = roundMoney(decimal.NewFromFloat(mean))
	}
	if len(depletionAges) > 0 {
		if median, err := stats.PercentileNearestRank(depletionAges, 50); err == nil {
			age := int(median)
			result.MedianDepletionAge = &age
		}
	}
	result.RiskLevel = domain.RiskLevelFor(result.SuccessRate)

	result.YearlyBands = make([]domain.YearBand, p.horizon)
	column := make([]float64, n)
	for y := 0; y < p.horizon; y++ {
		depleted := 0
		for i, o := range outcomes {
			column[i] = o.yearly[y]
			if o.depletedBy <= y {
				depleted++
			}
		}
		result.YearlyBands[y] = domain.YearBand{
			YearIndex:       y,
			Age:             p.profile.CurrentAge + y,
			DepletedRate:    ratio(depleted, n),
			PercentileBands: percentileBands(column),
		}
	}
}

func ratio(count, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(count)).Div(decimal.NewFromInt(int64(total))).Round(6)
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentileBands uses the nearest-rank method so every band is an observed value.
func percentileBands(values []float64) domain.PercentileBands {
	pick := func(pct float64) decimal.Decimal {
		v, err := stats.PercentileNearestRank(values, pct)
		if err != nil {
			return decimal.Zero
		}
		return roundMoney(decimal.NewFromFloat(v))
	}
	return domain.PercentileBands{
		P10: pick(10),
		P25: pick(25),
		P50: pick(50),
		P75: pick(75),
		P90: pick(90),
	}
}

func flatBands(v decimal.Decimal) domain.PercentileBands {
	return domain.PercentileBands{P10: v, P25: v, P50: v, P75: v, P90: v}
}

// Simulate runs a Monte Carlo simulation. The same seed, inputs, and trial
// count always produce the same result regardless of worker count.
func (e *Engine) Simulate(ctx context.Context, profile domain.Profile, assumptions domain.AssumptionSet, opts domain.SimulationOptions) (*domain.SimulationResult, error) {
	if opts.Trials <= 0 {
		return nil, domain.NewConfigurationError("simulation.trials", "must be positive, got %d", opts.Trials)
	}
	p, err := newProjector(profile.WithDefaults(), assumptions.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("invalid simulation inputs: %w", err)
	}
	return e.simulate(ctx, p, opts)
}

func (e *Engine) simulate(ctx context.Context, p *projector, opts domain.SimulationOptions) (*domain.SimulationResult, error) {
	dist, err := NewReturnDistribution(p.assumptions)
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = e.Workers
	}
	return NewMonteCarloSimulator(p, dist, opts, e.log()).RunSimulation(ctx)
}
