package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpgo/retirement-planner/internal/domain"
)

// ErrUnsupportedFormat is returned for an unknown format name.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// ErrMissingSection is returned when a formatter needs a result the report does not carry.
var ErrMissingSection = errors.New("report section not available")

// Report is what formatters render. Any subset of sections may be set; a full
// plan carries its own projection, simulation, and comparisons.
type Report struct {
	Plan        *domain.PlanReport          `json:"plan,omitempty"`
	Projection  *domain.ProjectionResult    `json:"projection,omitempty"`
	Simulation  *domain.SimulationResult    `json:"simulation,omitempty"`
	Comparisons []domain.StrategyComparison `json:"comparisons,omitempty"`
	Sensitivity *domain.SensitivityResult   `json:"sensitivity,omitempty"`
}

// ProjectionResult returns the standalone projection or the plan's.
func (r *Report) ProjectionResult() *domain.ProjectionResult {
	if r.Projection != nil {
		return r.Projection
	}
	if r.Plan != nil {
		return r.Plan.Projection
	}
	return nil
}

// SimulationResult returns the standalone simulation or the plan's.
func (r *Report) SimulationResult() *domain.SimulationResult {
	if r.Simulation != nil {
		return r.Simulation
	}
	if r.Plan != nil {
		return r.Plan.Simulation
	}
	return nil
}

// StrategyComparisons returns the standalone comparisons or the plan's.
func (r *Report) StrategyComparisons() []domain.StrategyComparison {
	if len(r.Comparisons) > 0 {
		return r.Comparisons
	}
	if r.Plan != nil {
		return r.Plan.Comparisons
	}
	return nil
}

// GenerateReport renders the report with the named formatter and writes it
// to a timestamped file in dir. "all" writes the console, projection CSV, and
// JSON renderings. It returns the files written.
func GenerateReport(report *Report, format, dir string) ([]string, error) {
	if NormalizeFormatName(format) == "all" {
		var files []string
		for _, name := range []string{"console", "csv", "json"} {
			f := GetFormatterByName(name)
			file, err := WriteFormatted(f, report, dir, extensionFor(f))
			if err != nil {
				return files, err
			}
			files = append(files, file)
		}
		return files, nil
	}

	f := GetFormatterByName(format)
	if f == nil {
		return nil, fmt.Errorf("%w: %q. Try one of: %s (aliases: %s)", ErrUnsupportedFormat, format,
			strings.Join(AvailableFormatterNames(), ", "), strings.Join(AvailableFormatAliases(), ", "))
	}
	file, err := WriteFormatted(f, report, dir, extensionFor(f))
	if err != nil {
		return nil, err
	}
	return []string{file}, nil
}

func extensionFor(f Formatter) string {
	name := f.Name()
	switch {
	case strings.HasPrefix(name, "csv"):
		return "csv"
	case name == "json":
		return "json"
	default:
		return "txt"
	}
}
