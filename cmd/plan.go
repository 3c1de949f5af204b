package cmd

import (
	"github.com/rpgo/retirement-planner/internal/calculation"
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/spf13/cobra"
)

func newPlanCmd(opts *options) *cobra.Command {
	var skipSensitivity bool

	c := &cobra.Command{
		Use:   "plan",
		Short: "Full planning report: needs, projection, simulation, comparison, readiness",
		Long: `Runs every analysis configured in the plan file and renders a single report.
The Monte Carlo simulation runs when the plan or --trials asks for trials, the
strategy comparison runs when the plan lists strategies under compare, and the
sensitivity analysis runs when the plan has a sensitivity section.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runPlan(c, opts, skipSensitivity)
		},
	}
	c.Flags().BoolVar(&skipSensitivity, "skip-sensitivity", false, "Skip the sensitivity analysis even when the plan configures one")
	return c
}

func runPlan(c *cobra.Command, opts *options, skipSensitivity bool) error {
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

	report, err := rt.engine.Plan(c.Context(), plan.Profile, plan.Assumptions, calculation.PlanOptions{
		Simulation:        plan.Simulation,
		CompareStrategies: plan.Compare,
	})
	if err != nil {
		return err
	}

	out := &output.Report{Plan: report}
	if !skipSensitivity && len(plan.Sensitivity.Variables) > 0 {
		req := plan.Sensitivity
		if req.Seed == nil {
			req.Seed = plan.Simulation.Seed
		}
		if req.Workers == 0 {
			req.Workers = rt.settings.Workers
		}
		out.Sensitivity, err = rt.engine.Sensitivity(c.Context(), plan.Profile, plan.Assumptions, req)
		if err != nil {
			return err
		}
	}
	return rt.emit(out, "console")
}
