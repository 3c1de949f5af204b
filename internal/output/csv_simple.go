package output

import (
	"fmt"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/rpgo/retirement-planner/internal/domain"
)

// projectionRow is one projected year. Amounts are fixed to cents.
type projectionRow struct {
	YearIndex         string `csv:"year_index"`
	Year              string `csv:"year"`
	Age               string `csv:"age"`
	Phase             string `csv:"phase"`
	StartingBalance   string `csv:"starting_balance"`
	Contribution      string `csv:"contribution"`
	EmployerMatch     string `csv:"employer_match"`
	TaxSaving         string `csv:"contribution_tax_saving"`
	Return            string `csv:"return"`
	InvestmentGrowth  string `csv:"investment_growth"`
	GrossWithdrawal   string `csv:"gross_withdrawal"`
	WithdrawalTax     string `csv:"withdrawal_tax"`
	NetWithdrawal     string `csv:"net_withdrawal"`
	TaxDeferred       string `csv:"tax_deferred"`
	TaxFree           string `csv:"tax_free"`
	Taxable           string `csv:"taxable"`
	EndingBalance     string `csv:"ending_balance"`
	RealEndingBalance string `csv:"real_ending_balance"`
	Depleted          string `csv:"depleted"`
}

// CSVProjectionFormatter exports the deterministic projection, one row per year.
type CSVProjectionFormatter struct{}

func (c CSVProjectionFormatter) Name() string { return "csv" }

func (c CSVProjectionFormatter) Format(report *Report) ([]byte, error) {
	proj := report.ProjectionResult()
	if proj == nil {
		return nil, fmt.Errorf("%w: projection", ErrMissingSection)
	}
	return gocsv.MarshalBytes(projectionRows(proj))
}

func projectionRows(proj *domain.ProjectionResult) []*projectionRow {
	rows := make([]*projectionRow, 0, len(proj.Years))
	for _, y := range proj.Years {
		row := &projectionRow{
			YearIndex:         intToString(y.YearIndex),
			Age:               intToString(y.Age),
			Phase:             string(y.Phase),
			StartingBalance:   fixed(y.StartingBalance),
			Contribution:      fixed(y.Contribution),
			EmployerMatch:     fixed(y.EmployerMatch),
			TaxSaving:         fixed(y.ContributionTaxSaving),
			Return:            strconv.FormatFloat(y.Return, 'f', 6, 64),
			InvestmentGrowth:  fixed(y.InvestmentGrowth),
			GrossWithdrawal:   fixed(y.GrossWithdrawal),
			WithdrawalTax:     fixed(y.WithdrawalTax),
			NetWithdrawal:     fixed(y.NetWithdrawal),
			TaxDeferred:       fixed(y.EndingBalances[domain.TaxDeferred]),
			TaxFree:           fixed(y.EndingBalances[domain.TaxFree]),
			Taxable:           fixed(y.EndingBalances[domain.Taxable]),
			EndingBalance:     fixed(y.EndingBalance),
			RealEndingBalance: fixed(y.RealEndingBalance),
			Depleted:          boolToString(y.Depleted),
		}
		if y.Year > 0 {
			row.Year = intToString(y.Year)
		}
		rows = append(rows, row)
	}
	return rows
}
