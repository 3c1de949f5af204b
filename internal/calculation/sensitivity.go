package calculation

import (
	"context"
	"fmt"
	"sort"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultSensitivityTrials is the per-point trial count in stochastic mode
// when the request leaves it unset.
const DefaultSensitivityTrials = 500

// sensitivityRun is one evaluation: the baseline or a perturbed point.
type sensitivityRun struct {
	variable  domain.SensitivityVariable
	delta     decimal.Decimal
	value     decimal.Decimal
	projector *projector
	metrics   domain.SensitivityMetrics
}

// Sensitivity perturbs one input at a time and records how the outcome moves.
// Every perturbation is validated before any run starts.
func (e *Engine) Sensitivity(ctx context.Context, profile domain.Profile, assumptions domain.AssumptionSet, req domain.SensitivityRequest) (*domain.SensitivityResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = domain.SensitivityDeterministic
	}
	if mode != domain.SensitivityDeterministic && mode != domain.SensitivityStochastic {
		return nil, domain.NewConfigurationError("sensitivity.mode", "unknown mode %q", req.Mode)
	}
	if len(req.Variables) == 0 {
		return nil, domain.NewConfigurationError("sensitivity.variables", "at least one variable is required")
	}

	trials := req.Trials
	if mode == domain.SensitivityStochastic {
		if trials < 0 {
			return nil, domain.NewConfigurationError("sensitivity.trials", "must not be negative, got %d", trials)
		}
		if trials == 0 {
			trials = DefaultSensitivityTrials
		}
	}

	profile = profile.WithDefaults()
	assumptions = assumptions.WithDefaults()
	baseline, err := newProjector(profile, assumptions)
	if err != nil {
		return nil, fmt.Errorf("invalid sensitivity baseline: %w", err)
	}

	runs := []*sensitivityRun{{projector: baseline}}
	for _, group := range groupPerturbations(req.Variables) {
		if !group.Variable.IsValid() {
			return nil, domain.NewConfigurationError("sensitivity.variables", "unknown variable %q", group.Variable)
		}
		for _, delta := range group.Deltas {
			p, a, value, err := perturb(profile, assumptions, group.Variable, delta)
			if err != nil {
				return nil, err
			}
			proj, err := newProjector(p, a)
			if err != nil {
				return nil, fmt.Errorf("sensitivity %s %s: %w", group.Variable, delta.String(), err)
			}
			runs = append(runs, &sensitivityRun{variable: group.Variable, delta: delta, value: value, projector: proj})
		}
	}

	var seed int64
	if mode == domain.SensitivityStochastic {
		seed = seedFunc()
		if req.Seed != nil {
			seed = *req.Seed
		}
	}
	e.log().Infof("sensitivity: %s mode, %d points", mode, len(runs)-1)

	workers := req.Workers
	if workers <= 0 {
		workers = e.Workers
	}
	err = runIndexed(ctx, len(runs), workers, func(i int) error {
		run := runs[i]
		proj, err := run.projector.run(constantReturns(run.projector.planReturn, run.projector.horizon), -1)
		if err != nil {
			return err
		}
		run.metrics = domain.SensitivityMetrics{
			RequiredCorpus:    proj.RequiredCorpus,
			RetirementBalance: proj.RetirementBalance,
			FinalBalance:      proj.FinalBalance,
			Depleted:          proj.Depleted(),
		}
		if mode == domain.SensitivityStochastic {
			s := seed
			sim, err := e.simulate(ctx, run.projector, domain.SimulationOptions{Trials: trials, Seed: &s, Workers: 1})
			if err != nil {
				return err
			}
			rate := sim.SuccessRate
			run.metrics.SuccessRate = &rate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &domain.SensitivityResult{
		Mode:     mode,
		Baseline: runs[0].metrics,
	}
	if mode == domain.SensitivityStochastic {
		result.Trials = trials
		result.Seed = seed
	}

	for _, run := range runs[1:] {
		n := len(result.Variables)
		if n == 0 || result.Variables[n-1].Variable != run.variable {
			result.Variables = append(result.Variables, domain.VariableSensitivity{
				Variable: run.variable,
				Baseline: baselineValue(profile, assumptions, run.variable),
			})
			n++
		}
		point := domain.SensitivityPoint{
			Delta:                   run.delta,
			Value:                   run.value,
			Metrics:                 run.metrics,
			RequiredCorpusChange:    run.metrics.RequiredCorpus.Sub(result.Baseline.RequiredCorpus),
			RetirementBalanceChange: run.metrics.RetirementBalance.Sub(result.Baseline.RetirementBalance),
		}
		if run.metrics.SuccessRate != nil && result.Baseline.SuccessRate != nil {
			change := run.metrics.SuccessRate.Sub(*result.Baseline.SuccessRate)
			point.SuccessRateChange = &change
		}
		result.Variables[n-1].Points = append(result.Variables[n-1].Points, point)
	}
	return result, nil
}

// groupPerturbations merges repeated variables, sorts variables by name, and
// sorts and de-duplicates each variable's deltas.
func groupPerturbations(in []domain.Perturbation) []domain.Perturbation {
	byVar := map[domain.SensitivityVariable][]decimal.Decimal{}
	var order []domain.SensitivityVariable
	for _, p := range in {
		if _, seen := byVar[p.Variable]; !seen {
			order = append(order, p.Variable)
			byVar[p.Variable] = nil
		}
		byVar[p.Variable] = append(byVar[p.Variable], p.Deltas...)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]domain.Perturbation, 0, len(order))
	for _, v := range order {
		deltas := append([]decimal.Decimal(nil), byVar[v]...)
		sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].LessThan(deltas[j]) })
		unique := deltas[:0]
		for i, d := range deltas {
			if i == 0 || !d.Equal(unique[len(unique)-1]) {
				unique = append(unique, d)
			}
		}
		out = append(out, domain.Perturbation{Variable: v, Deltas: unique})
	}
	return out
}

// perturb returns copies of the inputs with one variable shifted by delta and
// the variable's new value.
func perturb(profile domain.Profile, assumptions domain.AssumptionSet, variable domain.SensitivityVariable, delta decimal.Decimal) (domain.Profile, domain.AssumptionSet, decimal.Decimal, error) {
	p := profile.Clone()
	a := assumptions.Clone()

	if variable.IsAge() && !delta.Equal(delta.Truncate(0)) {
		return p, a, decimal.Zero, domain.NewConfigurationError("sensitivity.variables."+string(variable), "age deltas must be whole years, got %s", delta)
	}
	years := int(delta.IntPart())

	switch variable {
	case domain.VarReturnMean:
		a.ReturnMean = a.ReturnMean.Add(delta)
		for i := range a.AssetClasses {
			a.AssetClasses[i].Mean = a.AssetClasses[i].Mean.Add(delta)
		}
	case domain.VarReturnStdDev:
		a.ReturnStdDev = a.ReturnStdDev.Add(delta)
		for i := range a.AssetClasses {
			a.AssetClasses[i].StdDev = a.AssetClasses[i].StdDev.Add(delta)
		}
	case domain.VarInflationRate:
		a.InflationRate = a.InflationRate.Add(delta)
	case domain.VarRetirementAge:
		p.RetirementAge += years
	case domain.VarSavingsRate:
		p.SavingsRate = p.SavingsRate.Add(delta)
	case domain.VarCurrentIncome:
		p.CurrentIncome = p.CurrentIncome.Add(delta)
	case domain.VarLifeExpectancy:
		p.LifeExpectancy += years
	case domain.VarWithdrawalRate:
		a.Withdrawal.Rate = a.Withdrawal.Rate.Add(delta)
	default:
		return p, a, decimal.Zero, domain.NewConfigurationError("sensitivity.variables", "unknown variable %q", variable)
	}
	return p, a, baselineValue(p, a, variable), nil
}

func baselineValue(p domain.Profile, a domain.AssumptionSet, variable domain.SensitivityVariable) decimal.Decimal {
	switch variable {
	case domain.VarReturnMean:
		return a.PlanReturn()
	case domain.VarReturnStdDev:
		return a.ReturnStdDev
	case domain.VarInflationRate:
		return a.InflationRate
	case domain.VarRetirementAge:
		return decimal.NewFromInt(int64(p.RetirementAge))
	case domain.VarSavingsRate:
		return p.SavingsRate
	case domain.VarCurrentIncome:
		return p.CurrentIncome
	case domain.VarLifeExpectancy:
		return decimal.NewFromInt(int64(p.LifeExpectancy))
	case domain.VarWithdrawalRate:
		return a.Withdrawal.Rate
	}
	return decimal.Zero
}
