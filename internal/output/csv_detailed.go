package output

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

type comparisonRow struct {
	Strategy          string `csv:"strategy"`
	RetirementBalance string `csv:"retirement_balance"`
	FinalBalance      string `csv:"final_balance"`
	TotalWithdrawn    string `csv:"total_withdrawn"`
	TotalTaxes        string `csv:"total_taxes"`
	DepletionAge      string `csv:"depletion_age"`
	SuccessRate       string `csv:"success_rate"`
	MedianFinal       string `csv:"median_final_balance"`
	P10Final          string `csv:"p10_final_balance"`
	RiskLevel         string `csv:"risk_level"`
}

// CSVComparisonFormatter exports one row per compared withdrawal strategy, in request order.
type CSVComparisonFormatter struct{}

func (c CSVComparisonFormatter) Name() string { return "csv-compare" }

func (c CSVComparisonFormatter) Format(report *Report) ([]byte, error) {
	comparisons := report.StrategyComparisons()
	if len(comparisons) == 0 {
		return nil, fmt.Errorf("%w: strategy comparison", ErrMissingSection)
	}
	rows := make([]*comparisonRow, 0, len(comparisons))
	for _, sc := range comparisons {
		row := &comparisonRow{
			Strategy:          string(sc.Strategy),
			RetirementBalance: fixed(sc.Projection.RetirementBalance),
			FinalBalance:      fixed(sc.Projection.FinalBalance),
			TotalWithdrawn:    fixed(sc.Projection.TotalWithdrawn),
			TotalTaxes:        fixed(sc.Projection.TotalTaxes),
			DepletionAge:      optionalInt(sc.Projection.DepletionAge),
		}
		if sc.Simulation != nil {
			row.SuccessRate = sc.Simulation.SuccessRate.StringFixed(6)
			row.MedianFinal = fixed(sc.Simulation.FinalBalance.P50)
			row.P10Final = fixed(sc.Simulation.FinalBalance.P10)
			row.RiskLevel = string(sc.Simulation.RiskLevel)
		}
		rows = append(rows, row)
	}
	return gocsv.MarshalBytes(rows)
}

type sensitivityRow struct {
	Variable                string `csv:"variable"`
	Baseline                string `csv:"baseline"`
	Delta                   string `csv:"delta"`
	Value                   string `csv:"value"`
	RequiredCorpus          string `csv:"required_corpus"`
	RetirementBalance       string `csv:"retirement_balance"`
	FinalBalance            string `csv:"final_balance"`
	Depleted                string `csv:"depleted"`
	SuccessRate             string `csv:"success_rate"`
	RequiredCorpusChange    string `csv:"required_corpus_change"`
	RetirementBalanceChange string `csv:"retirement_balance_change"`
	SuccessRateChange       string `csv:"success_rate_change"`
}

// CSVSensitivityFormatter exports one row per perturbed point, ordered by
// variable then delta.
type CSVSensitivityFormatter struct{}

func (c CSVSensitivityFormatter) Name() string { return "csv-sensitivity" }

func (c CSVSensitivityFormatter) Format(report *Report) ([]byte, error) {
	res := report.Sensitivity
	if res == nil {
		return nil, fmt.Errorf("%w: sensitivity", ErrMissingSection)
	}
	var rows []*sensitivityRow
	for _, v := range res.Variables {
		for _, p := range v.Points {
			rows = append(rows, &sensitivityRow{
				Variable:                string(v.Variable),
				Baseline:                v.Baseline.String(),
				Delta:                   p.Delta.String(),
				Value:                   p.Value.String(),
				RequiredCorpus:          fixed(p.Metrics.RequiredCorpus),
				RetirementBalance:       fixed(p.Metrics.RetirementBalance),
				FinalBalance:            fixed(p.Metrics.FinalBalance),
				Depleted:                boolToString(p.Metrics.Depleted),
				SuccessRate:             optionalRate(p.Metrics.SuccessRate),
				RequiredCorpusChange:    fixed(p.RequiredCorpusChange),
				RetirementBalanceChange: fixed(p.RetirementBalanceChange),
				SuccessRateChange:       optionalRate(p.SuccessRateChange),
			})
		}
	}
	return gocsv.MarshalBytes(rows)
}
