package calculation

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// ReturnPoint is one year of a historical return series.
type ReturnPoint struct {
	Year   int             `json:"year"`
	Return decimal.Decimal `json:"return"`
}

// ReturnSeries is an annual return history used for bootstrap sampling.
type ReturnSeries struct {
	Name       string               `json:"name"`
	Source     string               `json:"source"`
	Points     []ReturnPoint        `json:"points"`
	MinYear    int                  `json:"min_year"`
	MaxYear    int                  `json:"max_year"`
	Statistics HistoricalStatistics `json:"statistics"`
}

// HistoricalStatistics provides statistical summary of the dataset
type HistoricalStatistics struct {
	Mean         decimal.Decimal `json:"mean"`
	Median       decimal.Decimal `json:"median"`
	StdDev       decimal.Decimal `json:"std_dev"`
	Min          decimal.Decimal `json:"min"`
	Max          decimal.Decimal `json:"max"`
	Count        int             `json:"count"`
	MissingYears []int           `json:"missing_years"`
}

type returnRow struct {
	Year   int     `csv:"year"`
	Return float64 `csv:"return"`
}

// LoadReturnSeries reads a CSV file with year and return columns. Returns are
// fractions (0.07 for 7%).
func LoadReturnSeries(filePath string) (*ReturnSeries, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	series, err := ParseReturnSeries(file, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filePath, err)
	}
	return series, nil
}

// ParseReturnSeries decodes a return series from CSV.
func ParseReturnSeries(r io.Reader, name string) (*ReturnSeries, error) {
	var rows []returnRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode CSV: %w", err)
	}

	points := make([]ReturnPoint, 0, len(rows))
	for _, row := range rows {
		if math.IsNaN(row.Return) || math.IsInf(row.Return, 0) {
			return nil, fmt.Errorf("non-finite return for year %d", row.Year)
		}
		points = append(points, ReturnPoint{Year: row.Year, Return: decimal.NewFromFloat(row.Return)})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no valid data points found in %s", name)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Year < points[j].Year })

	return &ReturnSeries{
		Name:       name,
		Source:     "csv",
		Points:     points,
		MinYear:    points[0].Year,
		MaxYear:    points[len(points)-1].Year,
		Statistics: calculateStatistics(points),
	}, nil
}

// Returns lists the series values in year order.
func (rs *ReturnSeries) Returns() []decimal.Decimal {
	out := make([]decimal.Decimal, len(rs.Points))
	for i, p := range rs.Points {
		out[i] = p.Return
	}
	return out
}

// calculateStatistics calculates statistical measures for the dataset
func calculateStatistics(points []ReturnPoint) HistoricalStatistics {
	if len(points) == 0 {
		return HistoricalStatistics{}
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Return.InexactFloat64()
	}

	mean, _ := stats.Mean(values)
	median, _ := stats.Median(values)
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	stdDev := 0.0
	if len(values) > 1 {
		stdDev, _ = stats.StandardDeviationSample(values)
	}

	var missingYears []int
	for i := 1; i < len(points); i++ {
		for year := points[i-1].Year + 1; year < points[i].Year; year++ {
			missingYears = append(missingYears, year)
		}
	}

	return HistoricalStatistics{
		Mean:         decimal.NewFromFloat(mean),
		Median:       decimal.NewFromFloat(median),
		StdDev:       decimal.NewFromFloat(stdDev),
		Min:          decimal.NewFromFloat(lo),
		Max:          decimal.NewFromFloat(hi),
		Count:        len(values),
		MissingYears: missingYears,
	}
}

// ValidateDataQuality reports gaps, duplicates, and extreme values.
func (rs *ReturnSeries) ValidateDataQuality() []string {
	var issues []string

	if len(rs.Statistics.MissingYears) > 0 {
		issues = append(issues, fmt.Sprintf("Missing years in %s: %v", rs.Name, rs.Statistics.MissingYears))
	}

	for i := 1; i < len(rs.Points); i++ {
		if rs.Points[i].Year == rs.Points[i-1].Year {
			issues = append(issues, fmt.Sprintf("Duplicate year %d in %s", rs.Points[i].Year, rs.Name))
		}
	}

	// Returns > 100% or < -50% are almost always data entry errors
	for _, p := range rs.Points {
		if p.Return.GreaterThan(decimal.NewFromInt(1)) {
			issues = append(issues, fmt.Sprintf("Extreme positive return for year %d: %s", p.Year, p.Return.String()))
		}
		if p.Return.LessThan(decimal.NewFromFloat(-0.5)) {
			issues = append(issues, fmt.Sprintf("Extreme negative return for year %d: %s", p.Year, p.Return.String()))
		}
	}

	return issues
}
