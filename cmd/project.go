package cmd

import (
	"fmt"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/spf13/cobra"
)

func newProjectCmd(opts *options) *cobra.Command {
	var strategy string

	c := &cobra.Command{
		Use:   "project",
		Short: "Deterministic year-by-year projection at the expected return",
		RunE: func(c *cobra.Command, _ []string) error {
			return runProject(c, opts, strategy)
		},
	}
	c.Flags().StringVarP(&strategy, "strategy", "s", "", "Override the withdrawal strategy (fixed_percentage, dynamic, bond_ladder, need_based)")
	return c
}

func runProject(c *cobra.Command, opts *options, strategy string) error {
	rt, err := setup(c, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	plan, err := rt.loadPlan(opts)
	if err != nil {
		return err
	}
	if strategy != "" {
		id := domain.StrategyID(strategy)
		if !id.IsValid() {
			return fmt.Errorf("unknown withdrawal strategy %q", strategy)
		}
		plan.Assumptions.Withdrawal.Strategy = id
	}

	result, err := rt.engine.ProjectDeterministic(plan.Profile, plan.Assumptions)
	if err != nil {
		return err
	}
	if result.Depleted() {
		rt.log.Warnw("portfolio depleted", "age", *result.DepletionAge)
	}
	return rt.emit(&output.Report{Projection: result}, "console")
}
