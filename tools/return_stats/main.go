package main

import (
	"fmt"
	"os"

	calc "github.com/rpgo/retirement-planner/internal/calculation"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: return_stats <returns.csv>")
		return
	}
	series, err := calc.LoadReturnSeries(os.Args[1])
	if err != nil {
		panic(err)
	}
	s := series.Statistics
	fmt.Printf("Series: %s (%d-%d, %d years)\n", series.Name, series.MinYear, series.MaxYear, s.Count)
	fmt.Printf("Mean:   %s\n", s.Mean.StringFixed(4))
	fmt.Printf("Median: %s\n", s.Median.StringFixed(4))
	fmt.Printf("StdDev: %s\n", s.StdDev.StringFixed(4))
	fmt.Printf("Range:  %s to %s\n", s.Min.StringFixed(4), s.Max.StringFixed(4))

	issues := series.ValidateDataQuality()
	if len(issues) == 0 {
		fmt.Println("No data quality issues")
		return
	}
	for _, issue := range issues {
		fmt.Println("WARN:", issue)
	}
}
