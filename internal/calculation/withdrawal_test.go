package calculation

import (
	"errors"
	"testing"

	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func state(year int, balance int64, prior float64) WithdrawalState {
	return WithdrawalState{RetirementYear: year, Balance: decimal.NewFromInt(balance), PriorReturn: prior}
}

func assertAmount(t *testing.T, want int64, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !decimal.NewFromInt(want).Equal(got) {
		assert.Fail(t, "unexpected withdrawal", "expected %d, got %s %v", want, got, msgAndArgs)
	}
}

func TestFixedPercentageWithdrawal(t *testing.T) {
	s := NewFixedPercentageWithdrawal(d(0.04), d(0.03))
	assert.Equal(t, domain.StrategyFixedPercentage, s.Name())

	assertAmount(t, 40000, s.Withdrawal(state(0, 1000000, 0)))
	// real amount stays fixed regardless of balance
	assertAmount(t, 41200, s.Withdrawal(state(1, 500000, -0.3)))
	// capped by what is left
	assertAmount(t, 10000, s.Withdrawal(state(2, 10000, 0)))
}

func TestDynamicWithdrawal(t *testing.T) {
	params := domain.WithdrawalParams{
		Rate:            d(0.04),
		FloorRate:       d(0.03),
		CeilingRate:     d(0.05),
		AdjustmentStep:  d(0.005),
		PerformanceBand: d(0.05),
	}
	s := NewDynamicWithdrawal(params, 0.07)
	assert.Equal(t, domain.StrategyDynamic, s.Name())

	assertAmount(t, 40000, s.Withdrawal(state(0, 1000000, -0.5)), "first year ignores prior return")
	assertAmount(t, 35000, s.Withdrawal(state(1, 1000000, -0.10)))
	assertAmount(t, 30000, s.Withdrawal(state(2, 1000000, -0.20)))
	assertAmount(t, 30000, s.Withdrawal(state(3, 1000000, -0.20)), "floor holds")
	// within the band: unchanged
	assertAmount(t, 30000, s.Withdrawal(state(4, 1000000, 0.10)))
	assertAmount(t, 35000, s.Withdrawal(state(5, 1000000, 0.30)))
	assertAmount(t, 40000, s.Withdrawal(state(6, 1000000, 0.30)))
	assertAmount(t, 45000, s.Withdrawal(state(7, 1000000, 0.30)))
	assertAmount(t, 50000, s.Withdrawal(state(8, 1000000, 0.30)))
	assertAmount(t, 50000, s.Withdrawal(state(9, 1000000, 0.30)), "ceiling holds")
}

func TestDynamicWithdrawal_StartRateClamped(t *testing.T) {
	params := domain.WithdrawalParams{Rate: d(0.08), FloorRate: d(0.03), CeilingRate: d(0.05)}
	s := NewDynamicWithdrawal(params, 0.07)
	assertAmount(t, 50000, s.Withdrawal(state(0, 1000000, 0)))
}

func TestDynamicWithdrawal_CeilingAlwaysBinds(t *testing.T) {
	pinned := NewDynamicWithdrawal(domain.WithdrawalParams{
		Rate: d(0.04), FloorRate: d(0.03), CeilingRate: d(0.03), AdjustmentStep: d(0.005), PerformanceBand: d(0.05),
	}, 0.07)
	assertAmount(t, 30000, pinned.Withdrawal(state(0, 1000000, 0)))
	assertAmount(t, 30000, pinned.Withdrawal(state(1, 1000000, 0.40)), "floor equal to ceiling pins the rate")

	// a zero ceiling is a real bound, not an unbounded one
	zero := NewDynamicWithdrawal(domain.WithdrawalParams{Rate: d(0.04), AdjustmentStep: d(0.005), PerformanceBand: d(0.05)}, 0.07)
	assertAmount(t, 0, zero.Withdrawal(state(0, 1000000, 0)))
	assertAmount(t, 0, zero.Withdrawal(state(1, 1000000, 0.40)))
}

func TestBondLadderWithdrawal(t *testing.T) {
	params := domain.WithdrawalParams{
		Strategy:      domain.StrategyBondLadder,
		Rate:          d(0.04),
		LadderAmounts: []decimal.Decimal{decimal.NewFromInt(30000), decimal.NewFromInt(31000)},
		Fallback:      domain.StrategyFixedPercentage,
	}
	s := NewBondLadderWithdrawal(params, decimal.Zero, 0.07)
	assert.Equal(t, domain.StrategyBondLadder, s.Name())

	assertAmount(t, 30000, s.Withdrawal(state(0, 1000000, 0)))
	assertAmount(t, 31000, s.Withdrawal(state(1, 900000, 0)))
	// fallback is seeded with the balance when the ladder runs out
	assertAmount(t, 20000, s.Withdrawal(state(2, 500000, 0)))
	assertAmount(t, 20000, s.Withdrawal(state(3, 800000, 0)))
}

func TestBondLadderWithdrawal_InflationLinked(t *testing.T) {
	params := domain.WithdrawalParams{
		LadderAmounts:         []decimal.Decimal{decimal.NewFromInt(10000), decimal.NewFromInt(10000)},
		LadderInflationLinked: true,
		Fallback:              domain.StrategyFixedPercentage,
	}
	s := NewBondLadderWithdrawal(params, d(0.1), 0.07)
	assertAmount(t, 10000, s.Withdrawal(state(0, 1000000, 0)))
	assertAmount(t, 11000, s.Withdrawal(state(1, 1000000, 0)))
}

func TestNeedBasedWithdrawal(t *testing.T) {
	s := NewNeedBasedWithdrawal(decimal.NewFromInt(50000), d(0.02))
	assert.Equal(t, domain.StrategyNeedBased, s.Name())

	assertAmount(t, 50000, s.Withdrawal(state(0, 1000000, 0)))
	assertAmount(t, 51000, s.Withdrawal(state(1, 1000000, 0)))
	assertAmount(t, 5000, s.Withdrawal(state(2, 5000, 0)))
	assertAmount(t, 0, s.Withdrawal(state(3, 0, 0)))
}

func TestNewWithdrawalStrategy(t *testing.T) {
	for _, id := range []domain.StrategyID{domain.StrategyFixedPercentage, domain.StrategyDynamic, domain.StrategyNeedBased} {
		s, err := NewWithdrawalStrategy(domain.WithdrawalParams{Strategy: id}, d(0.03), 0.07)
		require.NoError(t, err)
		assert.Equal(t, id, s.Name())
	}

	s, err := NewWithdrawalStrategy(domain.WithdrawalParams{Strategy: domain.StrategyBondLadder, Fallback: domain.StrategyDynamic}, d(0.03), 0.07)
	require.NoError(t, err)
	assert.Equal(t, domain.StrategyBondLadder, s.Name())

	_, err = NewWithdrawalStrategy(domain.WithdrawalParams{Strategy: domain.StrategyBondLadder, Fallback: domain.StrategyNeedBased}, d(0.03), 0.07)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	_, err = NewWithdrawalStrategy(domain.WithdrawalParams{Strategy: "guardrails"}, d(0.03), 0.07)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestCapWithdrawal(t *testing.T) {
	assert.True(t, capWithdrawal(decimal.NewFromInt(-5), decimal.NewFromInt(100)).IsZero())
	assert.True(t, capWithdrawal(decimal.NewFromInt(5), decimal.Zero).IsZero())
	assert.True(t, capWithdrawal(decimal.NewFromInt(500), decimal.NewFromInt(100)).Equal(decimal.NewFromInt(100)))
}
