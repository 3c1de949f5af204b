package calculation

import (
	"fmt"
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// decimalComparer lets cmp.Diff walk results that hold decimals.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// testProfile is a 40-year-old saving 15% with $225k across all three accounts.
func testProfile() domain.Profile {
	return domain.Profile{
		CurrentAge:     40,
		RetirementAge:  65,
		LifeExpectancy: 95,
		CurrentIncome:  decimal.NewFromInt(100000),
		SavingsRate:    d(0.15),
		Balances: domain.Balances{
			domain.TaxDeferred: decimal.NewFromInt(150000),
			domain.TaxFree:     decimal.NewFromInt(50000),
			domain.Taxable:     decimal.NewFromInt(25000),
		},
		ContributionSplit: domain.Balances{
			domain.TaxDeferred: d(0.7),
			domain.TaxFree:     d(0.3),
		},
		EmployerMatch:           domain.EmployerMatch{Rate: d(0.5), Limit: d(0.06)},
		DesiredIncomeRatio:      d(0.8),
		EstimatedSocialSecurity: decimal.NewFromInt(24000),
		EstimatedHealthcare:     decimal.NewFromInt(6000),
	}
}

func testAssumptions() domain.AssumptionSet {
	return domain.AssumptionSet{
		ReturnMean:         d(0.07),
		ReturnStdDev:       d(0.15),
		InflationRate:      d(0.03),
		SafeWithdrawalRate: d(0.04),
		Tax: domain.TaxRules{
			TaxDeferredRate:   d(0.22),
			ContributionRate:  d(0.22),
			CapitalGainsRate:  d(0.15),
			GainsFraction:     d(0.5),
			StandardDeduction: decimal.NewFromInt(14600),
		},
		Withdrawal: domain.WithdrawalParams{Strategy: domain.StrategyFixedPercentage, Rate: d(0.04)},
	}
}

// scenarioProfile is a 40-year-old earning $100k, saving 15%, with $50k tax deferred.
func scenarioProfile() domain.Profile {
	return domain.Profile{
		CurrentAge:     40,
		RetirementAge:  65,
		LifeExpectancy: 95,
		CurrentIncome:  decimal.NewFromInt(100000),
		SavingsRate:    d(0.15),
		Balances:       domain.Balances{domain.TaxDeferred: decimal.NewFromInt(50000)},
	}
}

// scenarioAssumptions uses a 7% mean return, 2.5% inflation and the 4% rule.
func scenarioAssumptions(stdDev float64) domain.AssumptionSet {
	return domain.AssumptionSet{
		ReturnMean:         d(0.07),
		ReturnStdDev:       d(stdDev),
		InflationRate:      d(0.025),
		SafeWithdrawalRate: d(0.04),
		Withdrawal:         domain.WithdrawalParams{Strategy: domain.StrategyFixedPercentage, Rate: d(0.04)},
	}
}

// recordingLogger keeps every formatted message.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, level+": "+fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Debugf(format string, args ...any) { l.add("debug", format, args...) }
func (l *recordingLogger) Infof(format string, args ...any)  { l.add("info", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...any)  { l.add("warn", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...any) { l.add("error", format, args...) }

func (l *recordingLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}
