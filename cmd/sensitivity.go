package cmd

import (
	"fmt"
	"strings"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newSensitivityCmd(opts *options) *cobra.Command {
	var (
		mode string
		vars []string
	)

	c := &cobra.Command{
		Use:   "sensitivity",
		Short: "Measure how outcomes move when one input changes",
		Long: `Perturbs one variable at a time by each delta and reports the change in
required corpus, retirement balance, and (in stochastic mode) success rate.

Variables come from the plan's sensitivity section, or from --var flags:

  rpgo sensitivity -c plan.yaml --var return_mean=-0.01,0.01 --var retirement_age=-2,2`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runSensitivity(c, opts, mode, vars)
		},
	}
	c.Flags().StringVar(&mode, "mode", "", "deterministic or stochastic (defaults to the plan's mode)")
	c.Flags().StringArrayVar(&vars, "var", nil, "Variable and comma-separated deltas, e.g. inflation_rate=0.01,0.02")
	return c
}

// parsePerturbation reads "name=d1,d2,...".
func parsePerturbation(s string) (domain.Perturbation, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(list) == "" {
		return domain.Perturbation{}, fmt.Errorf("invalid --var %q: expected name=delta[,delta...]", s)
	}
	p := domain.Perturbation{Variable: domain.SensitivityVariable(strings.TrimSpace(name))}
	if !p.Variable.IsValid() {
		return domain.Perturbation{}, fmt.Errorf("invalid --var %q: unknown variable %q", s, p.Variable)
	}
	for _, raw := range strings.Split(list, ",") {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return domain.Perturbation{}, fmt.Errorf("invalid --var %q: bad delta %q: %w", s, raw, err)
		}
		p.Deltas = append(p.Deltas, d)
	}
	return p, nil
}

func runSensitivity(c *cobra.Command, opts *options, mode string, vars []string) error {
	rt, err := setup(c, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	plan, err := rt.loadPlan(opts)
	if err != nil {
		return err
	}

	req := plan.Sensitivity
	if len(vars) > 0 {
		req.Variables = nil
		for _, v := range vars {
			p, err := parsePerturbation(v)
			if err != nil {
				return err
			}
			req.Variables = append(req.Variables, p)
		}
	}
	if len(req.Variables) == 0 {
		return fmt.Errorf("no sensitivity variables: add a sensitivity section to the plan or pass --var")
	}
	if mode != "" {
		req.Mode = domain.SensitivityMode(mode)
	}
	if c.Flags().Changed("trials") {
		req.Trials = opts.trials
	}
	if c.Flags().Changed("seed") {
		seed := opts.seed
		req.Seed = &seed
	} else if req.Seed == nil {
		req.Seed = plan.Simulation.Seed
	}
	if req.Workers == 0 {
		req.Workers = rt.settings.Workers
	}

	result, err := rt.engine.Sensitivity(c.Context(), plan.Profile, plan.Assumptions, req)
	if err != nil {
		return err
	}
	return rt.emit(&output.Report{Sensitivity: result}, "console")
}
