package output

import (
	"fmt"

	"github.com/gocarina/gocsv"
	"github.com/rpgo/retirement-planner/internal/domain"
)

type bandRow struct {
	YearIndex    string `csv:"year_index"`
	Age          string `csv:"age"`
	DepletedRate string `csv:"depleted_rate"`
	P10          string `csv:"p10"`
	P25          string `csv:"p25"`
	P50          string `csv:"p50"`
	P75          string `csv:"p75"`
	P90          string `csv:"p90"`
}

// CSVBandsFormatter exports Monte Carlo ending-balance percentiles per year.
type CSVBandsFormatter struct{}

func (c CSVBandsFormatter) Name() string { return "csv-bands" }

func (c CSVBandsFormatter) Format(report *Report) ([]byte, error) {
	sim := report.SimulationResult()
	if sim == nil {
		return nil, fmt.Errorf("%w: simulation", ErrMissingSection)
	}
	rows := make([]*bandRow, 0, len(sim.YearlyBands))
	for _, b := range sim.YearlyBands {
		rows = append(rows, &bandRow{
			YearIndex:    intToString(b.YearIndex),
			Age:          intToString(b.Age),
			DepletedRate: b.DepletedRate.StringFixed(6),
			P10:          fixed(b.P10),
			P25:          fixed(b.P25),
			P50:          fixed(b.P50),
			P75:          fixed(b.P75),
			P90:          fixed(b.P90),
		})
	}
	return gocsv.MarshalBytes(rows)
}

type summaryRow struct {
	Metric      string `csv:"metric"`
	Value       string `csv:"value"`
	Description string `csv:"description"`
}

// MonteCarloSummaryRows lists the headline simulation metrics.
func MonteCarloSummaryRows(sim *domain.SimulationResult) [][3]string {
	rows := [][3]string{
		{"Success Rate", FormatPercentage(sim.SuccessRate), "Share of trials that never depleted"},
		{"Corpus Met Rate", FormatPercentage(sim.CorpusMetRate), "Share of trials reaching the required corpus at retirement"},
		{"Required Corpus", FormatWholeCurrency(sim.RequiredCorpus), "Future annual need divided by the safe withdrawal rate"},
		{"Median Retirement Balance", FormatWholeCurrency(sim.RetirementBalance.P50), "Median balance at retirement"},
		{"10th Percentile Final Balance", FormatWholeCurrency(sim.FinalBalance.P10), "Poor-market ending balance"},
		{"Median Final Balance", FormatWholeCurrency(sim.FinalBalance.P50), "Median ending balance"},
		{"90th Percentile Final Balance", FormatWholeCurrency(sim.FinalBalance.P90), "Strong-market ending balance"},
		{"Mean Final Balance", FormatWholeCurrency(sim.MeanFinalBalance), "Average ending balance"},
		{"Risk Level", string(sim.RiskLevel), "Risk bucket for the success rate"},
		{"Trials", intToString(sim.Trials), "Number of simulated return paths"},
		{"Seed", fmt.Sprintf("%d", sim.Seed), "Seed that reproduces this run"},
		{"Distribution", string(sim.Distribution), "Annual return sampler"},
	}
	if sim.MedianDepletionAge != nil {
		rows = append(rows, [3]string{"Median Depletion Age", intToString(*sim.MedianDepletionAge), "Median age at depletion among failed trials"})
	}
	return rows
}

// CSVSummaryFormatter exports the headline simulation metrics.
type CSVSummaryFormatter struct{}

func (c CSVSummaryFormatter) Name() string { return "csv-summary" }

func (c CSVSummaryFormatter) Format(report *Report) ([]byte, error) {
	sim := report.SimulationResult()
	if sim == nil {
		return nil, fmt.Errorf("%w: simulation", ErrMissingSection)
	}
	var rows []*summaryRow
	for _, r := range MonteCarloSummaryRows(sim) {
		rows = append(rows, &summaryRow{Metric: r[0], Value: r[1], Description: r[2]})
	}
	return gocsv.MarshalBytes(rows)
}
