package calculation

import (
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// WithdrawalState is what a strategy sees at the start of a retirement year.
type WithdrawalState struct {
	// RetirementYear counts from 0 at the first withdrawal year.
	RetirementYear int
	YearsRemaining int
	Balance        decimal.Decimal
	// PriorReturn is the realized return of the previous year; only
	// meaningful when RetirementYear > 0.
	PriorReturn float64
}

// WithdrawalStrategy decides the gross amount to take out of the portfolio each
// retirement year. Implementations are stateful and must be created per run.
type WithdrawalStrategy interface {
	Name() domain.StrategyID
	Withdrawal(state WithdrawalState) decimal.Decimal
}

// NewWithdrawalStrategy builds a fresh strategy for one projection run.
func NewWithdrawalStrategy(params domain.WithdrawalParams, inflation decimal.Decimal, planReturn float64) (WithdrawalStrategy, error) {
	switch params.Strategy {
	case domain.StrategyFixedPercentage:
		return NewFixedPercentageWithdrawal(params.Rate, inflation), nil
	case domain.StrategyDynamic:
		return NewDynamicWithdrawal(params, planReturn), nil
	case domain.StrategyBondLadder:
		if params.Fallback != domain.StrategyFixedPercentage && params.Fallback != domain.StrategyDynamic {
			return nil, domain.NewConfigurationError("assumptions.withdrawal.fallback", "unsupported bond ladder fallback %q", params.Fallback)
		}
		return NewBondLadderWithdrawal(params, inflation, planReturn), nil
	case domain.StrategyNeedBased:
		return NewNeedBasedWithdrawal(params.AnnualNeed, inflation), nil
	default:
		return nil, domain.NewConfigurationError("assumptions.withdrawal.strategy", "unknown withdrawal strategy %q", params.Strategy)
	}
}

func capWithdrawal(amount, balance decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() || !balance.IsPositive() {
		return decimal.Zero
	}
	if amount.GreaterThan(balance) {
		return balance
	}
	return amount
}

// FixedPercentageWithdrawal takes Rate of the balance at retirement and then
// the same real amount every year.
type FixedPercentageWithdrawal struct {
	Rate          decimal.Decimal
	InflationRate decimal.Decimal
	current       decimal.Decimal
	started       bool
}

// NewFixedPercentageWithdrawal creates a fixed-percentage strategy.
func NewFixedPercentageWithdrawal(rate, inflation decimal.Decimal) *FixedPercentageWithdrawal {
	return &FixedPercentageWithdrawal{Rate: rate, InflationRate: inflation}
}

func (f *FixedPercentageWithdrawal) Name() domain.StrategyID { return domain.StrategyFixedPercentage }

func (f *FixedPercentageWithdrawal) Withdrawal(state WithdrawalState) decimal.Decimal {
	if !f.started {
		f.current = state.Balance.Mul(f.Rate)
		f.started = true
	} else {
		f.current = roundBalance(f.current.Mul(decimal.NewFromInt(1).Add(f.InflationRate)))
	}
	return capWithdrawal(f.current, state.Balance)
}

// DynamicWithdrawal takes a percentage of the current balance. The percentage
// moves by AdjustmentStep after a year whose return missed the plan return by
// more than PerformanceBand, staying within [FloorRate, CeilingRate].
type DynamicWithdrawal struct {
	Rate            decimal.Decimal
	FloorRate       decimal.Decimal
	CeilingRate     decimal.Decimal
	AdjustmentStep  decimal.Decimal
	PerformanceBand float64
	PlanReturn      float64
}

// NewDynamicWithdrawal creates a dynamic strategy starting at params.Rate.
func NewDynamicWithdrawal(params domain.WithdrawalParams, planReturn float64) *DynamicWithdrawal {
	d := &DynamicWithdrawal{
		Rate:            params.Rate,
		FloorRate:       params.FloorRate,
		CeilingRate:     params.CeilingRate,
		AdjustmentStep:  params.AdjustmentStep,
		PerformanceBand: params.PerformanceBand.InexactFloat64(),
		PlanReturn:      planReturn,
	}
	d.Rate = d.clamp(d.Rate)
	return d
}

func (d *DynamicWithdrawal) Name() domain.StrategyID { return domain.StrategyDynamic }

func (d *DynamicWithdrawal) Withdrawal(state WithdrawalState) decimal.Decimal {
	if state.RetirementYear > 0 {
		diff := state.PriorReturn - d.PlanReturn
		switch {
		case diff < -d.PerformanceBand:
			d.Rate = d.clamp(d.Rate.Sub(d.AdjustmentStep))
		case diff > d.PerformanceBand:
			d.Rate = d.clamp(d.Rate.Add(d.AdjustmentStep))
		}
	}
	return capWithdrawal(state.Balance.Mul(d.Rate), state.Balance)
}

func (d *DynamicWithdrawal) clamp(rate decimal.Decimal) decimal.Decimal {
	if rate.LessThan(d.FloorRate) {
		return d.FloorRate
	}
	if rate.GreaterThan(d.CeilingRate) {
		return d.CeilingRate
	}
	return rate
}

// BondLadderWithdrawal spends scheduled rungs first and then hands over to a
// fallback strategy seeded with the balance left at that point.
type BondLadderWithdrawal struct {
	Rungs           []decimal.Decimal
	InflationLinked bool
	InflationRate   decimal.Decimal
	fallbackParams  domain.WithdrawalParams
	planReturn      float64
	fallback        WithdrawalStrategy
	factor          decimal.Decimal
}

// NewBondLadderWithdrawal creates a ladder strategy.
func NewBondLadderWithdrawal(params domain.WithdrawalParams, inflation decimal.Decimal, planReturn float64) *BondLadderWithdrawal {
	fallback := params
	fallback.Strategy = params.Fallback
	return &BondLadderWithdrawal{
		Rungs:           append([]decimal.Decimal(nil), params.LadderAmounts...),
		InflationLinked: params.LadderInflationLinked,
		InflationRate:   inflation,
		fallbackParams:  fallback,
		planReturn:      planReturn,
		factor:          decimal.NewFromInt(1),
	}
}

func (b *BondLadderWithdrawal) Name() domain.StrategyID { return domain.StrategyBondLadder }

func (b *BondLadderWithdrawal) Withdrawal(state WithdrawalState) decimal.Decimal {
	k := state.RetirementYear
	if k < len(b.Rungs) {
		amount := b.Rungs[k]
		if b.InflationLinked {
			if k > 0 {
				b.factor = b.factor.Mul(decimal.NewFromInt(1).Add(b.InflationRate))
			}
			amount = roundBalance(amount.Mul(b.factor))
		}
		return capWithdrawal(amount, state.Balance)
	}

	if b.fallback == nil {
		if b.fallbackParams.Strategy == domain.StrategyDynamic {
			b.fallback = NewDynamicWithdrawal(b.fallbackParams, b.planReturn)
		} else {
			b.fallback = NewFixedPercentageWithdrawal(b.fallbackParams.Rate, b.InflationRate)
		}
	}
	shifted := state
	shifted.RetirementYear = k - len(b.Rungs)
	return b.fallback.Withdrawal(shifted)
}

// NeedBasedWithdrawal takes the annual need at retirement, inflated yearly.
type NeedBasedWithdrawal struct {
	AnnualNeed    decimal.Decimal
	InflationRate decimal.Decimal
	current       decimal.Decimal
	started       bool
}

// NewNeedBasedWithdrawal creates a need-based strategy.
func NewNeedBasedWithdrawal(annualNeed, inflation decimal.Decimal) *NeedBasedWithdrawal {
	return &NeedBasedWithdrawal{AnnualNeed: annualNeed, InflationRate: inflation}
}

func (n *NeedBasedWithdrawal) Name() domain.StrategyID { return domain.StrategyNeedBased }

func (n *NeedBasedWithdrawal) Withdrawal(state WithdrawalState) decimal.Decimal {
	if !n.started {
		n.current = n.AnnualNeed
		n.started = true
	} else {
		n.current = roundBalance(n.current.Mul(decimal.NewFromInt(1).Add(n.InflationRate)))
	}
	return capWithdrawal(n.current, state.Balance)
}
