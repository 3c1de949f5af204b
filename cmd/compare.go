package cmd

import (
	"fmt"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/spf13/cobra"
)

func newCompareCmd(opts *options) *cobra.Command {
	var strategies []string

	c := &cobra.Command{
		Use:   "compare",
		Short: "Compare withdrawal strategies on the same plan",
		Long: `Runs the deterministic projection for each strategy and, when trials are
configured, a Monte Carlo simulation sharing one seed so the strategies face
identical market paths.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runCompare(c, opts, strategies)
		},
	}
	c.Flags().StringSliceVar(&strategies, "strategies", nil, "Strategies to compare (defaults to the plan's compare list, then all strategies)")
	return c
}

func runCompare(c *cobra.Command, opts *options, names []string) error {
	rt, err := setup(c, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	plan, err := rt.loadPlan(opts)
	if err != nil {
		return err
	}
	rt.applySimulationOverrides(c, opts, plan)

	strategies := plan.Compare
	if len(names) > 0 {
		strategies = make([]domain.StrategyID, 0, len(names))
		for _, n := range names {
			id := domain.StrategyID(n)
			if !id.IsValid() {
				return fmt.Errorf("unknown withdrawal strategy %q", n)
			}
			strategies = append(strategies, id)
		}
	}
	if len(strategies) == 0 {
		strategies = domain.Strategies
	}

	comparisons, err := rt.engine.CompareStrategies(c.Context(), plan.Profile, plan.Assumptions, strategies, plan.Simulation)
	if err != nil {
		return err
	}
	rec := output.RecommendStrategy(comparisons)
	rt.log.Infow("comparison complete", "strategies", len(comparisons), "recommended", rec.Strategy)
	return rt.emit(&output.Report{Comparisons: comparisons}, "console")
}
