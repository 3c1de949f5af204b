package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gojson "github.com/goccy/go-json"
	"github.com/rpgo/retirement-planner/internal/calculation"
	"github.com/rpgo/retirement-planner/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlanFile is the on-disk shape of a retirement plan.
type PlanFile struct {
	Profile     domain.Profile            `yaml:"profile" json:"profile" toml:"profile"`
	Assumptions domain.AssumptionSet      `yaml:"assumptions" json:"assumptions" toml:"assumptions"`
	Simulation  domain.SimulationOptions  `yaml:"simulation" json:"simulation" toml:"simulation"`
	Sensitivity domain.SensitivityRequest `yaml:"sensitivity,omitempty" json:"sensitivity,omitempty" toml:"sensitivity,omitempty"`
	// Compare lists withdrawal strategies to evaluate side by side.
	Compare []domain.StrategyID `yaml:"compare,omitempty" json:"compare,omitempty" toml:"compare,omitempty"`
}

// InputParser handles parsing of input configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads a plan from a YAML, TOML, or JSON file chosen by extension.
// A relative historical return file is resolved against the plan's directory.
func (ip *InputParser) LoadFromFile(filename string) (*PlanFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	plan, err := ip.Parse(data, formatFromExt(filename))
	if err != nil {
		return nil, err
	}

	if hf := plan.Assumptions.Distribution.HistoricalFile; hf != "" {
		if !filepath.IsAbs(hf) {
			hf = filepath.Join(filepath.Dir(filename), hf)
		}
		series, err := calculation.LoadReturnSeries(hf)
		if err != nil {
			return nil, fmt.Errorf("failed to load historical returns: %w", err)
		}
		plan.Assumptions.Distribution.Historical = series.Returns()
	}

	if err := ip.ValidateConfiguration(plan); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return plan, nil
}

// Parse decodes a plan without validating it. format is "yaml", "toml", or "json".
func (ip *InputParser) Parse(data []byte, format string) (*PlanFile, error) {
	var plan PlanFile
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case "json":
		if err := gojson.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case "yaml", "":
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
	return &plan, nil
}

func formatFromExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

// ValidateConfiguration applies defaults and validates the plan in place.
func (ip *InputParser) ValidateConfiguration(plan *PlanFile) error {
	plan.Profile = plan.Profile.WithDefaults()
	plan.Assumptions = plan.Assumptions.WithDefaults()

	if err := plan.Profile.Validate(); err != nil {
		return err
	}
	if err := plan.Assumptions.Validate(); err != nil {
		return err
	}
	if plan.Simulation.Trials < 0 {
		return domain.NewConfigurationError("simulation.trials", "must not be negative, got %d", plan.Simulation.Trials)
	}
	if plan.Simulation.Workers < 0 {
		return domain.NewConfigurationError("simulation.workers", "must not be negative, got %d", plan.Simulation.Workers)
	}
	for _, id := range plan.Compare {
		if !id.IsValid() {
			return domain.NewConfigurationError("compare", "unknown withdrawal strategy %q", id)
		}
	}
	return ip.validateSensitivity(plan.Sensitivity)
}

func (ip *InputParser) validateSensitivity(req domain.SensitivityRequest) error {
	switch req.Mode {
	case "", domain.SensitivityDeterministic, domain.SensitivityStochastic:
	default:
		return domain.NewConfigurationError("sensitivity.mode", "unknown mode %q", req.Mode)
	}
	for _, p := range req.Variables {
		if !p.Variable.IsValid() {
			return domain.NewConfigurationError("sensitivity.variables", "unknown variable %q", p.Variable)
		}
		if len(p.Deltas) == 0 {
			return domain.NewConfigurationError("sensitivity.variables."+string(p.Variable), "at least one delta is required")
		}
	}
	if req.Trials < 0 {
		return domain.NewConfigurationError("sensitivity.trials", "must not be negative, got %d", req.Trials)
	}
	return nil
}

// IsConfigurationError reports whether err came from invalid input.
func IsConfigurationError(err error) bool {
	return errors.Is(err, domain.ErrConfiguration)
}

// CreateExampleConfiguration creates an example plan for a 40-year-old saving
// for retirement at 65.
func (ip *InputParser) CreateExampleConfiguration() *PlanFile {
	seed := int64(42)
	return &PlanFile{
		Profile: domain.Profile{
			CurrentAge:     40,
			RetirementAge:  65,
			LifeExpectancy: 95,
			CurrentIncome:  decimal.NewFromInt(100000),
			SavingsRate:    decimal.NewFromFloat(0.15),
			Balances: domain.Balances{
				domain.TaxDeferred: decimal.NewFromInt(150000),
				domain.TaxFree:     decimal.NewFromInt(50000),
				domain.Taxable:     decimal.NewFromInt(25000),
			},
			ContributionSplit: domain.Balances{
				domain.TaxDeferred: decimal.NewFromFloat(0.7),
				domain.TaxFree:     decimal.NewFromFloat(0.3),
			},
			EmployerMatch: domain.EmployerMatch{
				Rate:  decimal.NewFromFloat(0.5),
				Limit: decimal.NewFromFloat(0.06),
			},
			DesiredIncomeRatio:      decimal.NewFromFloat(0.8),
			EstimatedSocialSecurity: decimal.NewFromInt(24000),
			EstimatedHealthcare:     decimal.NewFromInt(6000),
		},
		Assumptions: domain.AssumptionSet{
			ReturnMean:         decimal.NewFromFloat(0.07),
			ReturnStdDev:       decimal.NewFromFloat(0.15),
			InflationRate:      decimal.NewFromFloat(0.03),
			SafeWithdrawalRate: decimal.NewFromFloat(0.04),
			Tax: domain.TaxRules{
				TaxDeferredRate:   decimal.NewFromFloat(0.22),
				ContributionRate:  decimal.NewFromFloat(0.22),
				CapitalGainsRate:  decimal.NewFromFloat(0.15),
				GainsFraction:     decimal.NewFromFloat(0.5),
				StandardDeduction: decimal.NewFromInt(14600),
				Brackets:          DefaultTaxBrackets(),
			},
			Withdrawal: domain.WithdrawalParams{
				Strategy:        domain.StrategyFixedPercentage,
				Rate:            decimal.NewFromFloat(0.04),
				FloorRate:       decimal.NewFromFloat(0.03),
				CeilingRate:     decimal.NewFromFloat(0.05),
				AdjustmentStep:  decimal.NewFromFloat(0.005),
				PerformanceBand: decimal.NewFromFloat(0.05),
			},
			Distribution: domain.DistributionParams{Kind: domain.DistributionNormal},
		},
		Simulation: domain.SimulationOptions{Trials: 1000, Seed: &seed},
		Sensitivity: domain.SensitivityRequest{
			Mode: domain.SensitivityDeterministic,
			Variables: []domain.Perturbation{
				{Variable: domain.VarReturnMean, Deltas: []decimal.Decimal{decimal.NewFromFloat(-0.01), decimal.NewFromFloat(0.01)}},
				{Variable: domain.VarInflationRate, Deltas: []decimal.Decimal{decimal.NewFromFloat(0.01), decimal.NewFromFloat(0.02)}},
				{Variable: domain.VarRetirementAge, Deltas: []decimal.Decimal{decimal.NewFromInt(-2), decimal.NewFromInt(2)}},
				{Variable: domain.VarSavingsRate, Deltas: []decimal.Decimal{decimal.NewFromFloat(-0.05), decimal.NewFromFloat(0.05)}},
			},
		},
		Compare: []domain.StrategyID{domain.StrategyFixedPercentage, domain.StrategyDynamic, domain.StrategyNeedBased},
	}
}

// DefaultTaxBrackets are single-filer federal brackets on taxable income.
func DefaultTaxBrackets() []domain.TaxBracket {
	bracket := func(min, max int64, rate float64) domain.TaxBracket {
		return domain.TaxBracket{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max), Rate: decimal.NewFromFloat(rate)}
	}
	return []domain.TaxBracket{
		bracket(0, 11600, 0.10),
		bracket(11600, 47150, 0.12),
		bracket(47150, 100525, 0.22),
		bracket(100525, 191950, 0.24),
		bracket(191950, 243725, 0.32),
		bracket(243725, 609350, 0.35),
		bracket(609350, 0, 0.37),
	}
}

// Marshal encodes a plan as yaml, toml, or json.
func (ip *InputParser) Marshal(plan *PlanFile, format string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case "toml":
		var buf strings.Builder
		err = toml.NewEncoder(&buf).Encode(plan)
		data = []byte(buf.String())
	case "json":
		data, err = gojson.MarshalIndent(plan, "", "  ")
	case "yaml", "":
		data, err = yaml.Marshal(plan)
	default:
		return nil, fmt.Errorf("unsupported plan format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode plan: %w", err)
	}
	return data, nil
}

// SaveConfiguration writes a plan to disk; the format follows the file extension.
func (ip *InputParser) SaveConfiguration(plan *PlanFile, filename string) error {
	data, err := ip.Marshal(plan, formatFromExt(filename))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
