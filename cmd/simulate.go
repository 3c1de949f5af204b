package cmd

import (
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/spf13/cobra"
)

func newSimulateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Monte Carlo simulation of the configured withdrawal strategy",
		Long: `Runs the configured number of randomized trials and reports the success rate,
percentile bands per year, and the distribution of final balances. Passing
--seed makes the run reproducible regardless of --workers.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runSimulate(c, opts)
		},
	}
}

func runSimulate(c *cobra.Command, opts *options) error {
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

	result, err := rt.engine.Simulate(c.Context(), plan.Profile, plan.Assumptions, plan.Simulation)
	if err != nil {
		return err
	}
	rt.log.Infow("simulation complete",
		"trials", result.Trials,
		"success_rate", result.SuccessRate.String(),
		"risk", result.RiskLevel)
	return rt.emit(&output.Report{Simulation: result}, "console")
}
