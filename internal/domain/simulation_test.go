package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		rate float64
		want RiskLevel
	}{
		{1.0, RiskLow},
		{0.90, RiskLow},
		{0.8999, RiskMedium},
		{0.75, RiskMedium},
		{0.60, RiskHigh},
		{0.5999, RiskVeryHigh},
		{0, RiskVeryHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(decimal.NewFromFloat(tt.rate)), "rate %v", tt.rate)
	}
}

func TestProjectionResultFlags(t *testing.T) {
	r := &ProjectionResult{RequiredCorpus: decimal.NewFromInt(500), RetirementBalance: decimal.NewFromInt(500)}
	assert.False(t, r.Depleted())
	assert.True(t, r.CorpusMet())

	year := 12
	r.DepletionYear = &year
	r.RetirementBalance = decimal.NewFromInt(499)
	assert.True(t, r.Depleted())
	assert.False(t, r.CorpusMet())
}

func TestSensitivityVariables(t *testing.T) {
	for _, v := range SensitivityVariables {
		assert.True(t, v.IsValid(), v)
	}
	assert.False(t, SensitivityVariable("tax_rate").IsValid())
	assert.True(t, VarRetirementAge.IsAge())
	assert.True(t, VarLifeExpectancy.IsAge())
	assert.False(t, VarReturnMean.IsAge())
}
