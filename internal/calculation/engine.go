package calculation

import (
	"context"
	"fmt"

	"github.com/rpgo/retirement-planner/internal/domain"
)

// Engine orchestrates projections, simulations, strategy comparisons, and
// sensitivity analysis. It holds no per-run state and is safe for concurrent use.
type Engine struct {
	// Workers bounds parallel trials and sensitivity points; zero uses GOMAXPROCS.
	Workers int
	Logger  Logger
}

// NewEngine creates a new calculation engine
func NewEngine() *Engine {
	return &Engine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (e *Engine) SetLogger(l Logger) {
	e.Logger = orNop(l)
}

func (e *Engine) log() Logger {
	return orNop(e.Logger)
}

// PlanOptions selects the optional parts of a plan report.
type PlanOptions struct {
	// Simulation is skipped when Trials is zero.
	Simulation domain.SimulationOptions
	// CompareStrategies lists extra strategies to compare against the configured one.
	CompareStrategies []domain.StrategyID
}

// Plan produces the full planning report: needs, savings outlook, the
// deterministic projection, an optional simulation and comparison, readiness,
// milestones, catch-up options, and the tax outlook.
func (e *Engine) Plan(ctx context.Context, profile domain.Profile, assumptions domain.AssumptionSet, opts PlanOptions) (*domain.PlanReport, error) {
	profile = profile.WithDefaults()
	assumptions = assumptions.WithDefaults()

	p, err := newProjector(profile, assumptions)
	if err != nil {
		return nil, fmt.Errorf("invalid plan inputs: %w", err)
	}
	if opts.Simulation.Trials < 0 {
		return nil, domain.NewConfigurationError("simulation.trials", "must not be negative, got %d", opts.Simulation.Trials)
	}

	report := &domain.PlanReport{
		Profile:     profile,
		Assumptions: assumptions,
		Needs:       p.needs,
		Outlook:     CalculateSavingsOutlook(profile, assumptions),
		Milestones:  GenerateMilestones(profile),
		Tax:         AnalyzeTaxOutlook(profile, assumptions),
		Warnings:    ValidateInputs(profile, assumptions),
	}
	report.CatchUp = CatchUpStrategies(report.Outlook, profile, assumptions)
	for _, w := range report.Warnings {
		e.log().Warnf("input warning: %s", w)
	}

	report.Projection, err = e.project(p, constantReturns(p.planReturn, p.horizon))
	if err != nil {
		return nil, fmt.Errorf("projection failed: %w", err)
	}

	if opts.Simulation.Trials > 0 {
		report.Simulation, err = e.simulate(ctx, p, opts.Simulation)
		if err != nil {
			return nil, fmt.Errorf("simulation failed: %w", err)
		}
	}

	if len(opts.CompareStrategies) > 0 {
		report.Comparisons, err = e.CompareStrategies(ctx, profile, assumptions, opts.CompareStrategies, opts.Simulation)
		if err != nil {
			return nil, fmt.Errorf("strategy comparison failed: %w", err)
		}
	}

	report.Readiness = CalculateReadinessScore(profile, report.Outlook, report.Simulation)
	return report, nil
}
