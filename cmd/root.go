// Package cmd implements the rpgo CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rpgo/retirement-planner/internal/calculation"
	"github.com/rpgo/retirement-planner/internal/config"
	"github.com/rpgo/retirement-planner/internal/logger"
	"github.com/rpgo/retirement-planner/internal/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options holds the persistent flags shared by every command.
type options struct {
	planFile     string
	settingsFile string
	format       string
	outputDir    string
	logLevel     string
	workers      int
	trials       int
	seed         int64
}

// runtime is everything a command needs after flags and settings are resolved.
type runtime struct {
	settings *config.Settings
	log      *zap.SugaredLogger
	engine   *calculation.Engine
	out      io.Writer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "rpgo",
		Short:         "Retirement projection and Monte Carlo planning",
		Long:          "Project retirement savings, stress-test them with Monte Carlo simulation, compare withdrawal strategies, and measure sensitivity to assumptions.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.planFile, "config", "c", "", "Plan file (YAML, TOML, or JSON)")
	flags.StringVar(&opts.settingsFile, "settings", "", "Settings file for workers, trials, logging, and output")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format ("+joinNames()+")")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "Write reports to this directory instead of stdout")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error, off)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Parallel workers (0 uses all CPUs)")
	flags.IntVarP(&opts.trials, "trials", "n", 0, "Monte Carlo trials (overrides plan and settings)")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed for reproducible simulations")

	root.AddCommand(
		newPlanCmd(opts),
		newProjectCmd(opts),
		newSimulateCmd(opts),
		newCompareCmd(opts),
		newSensitivityCmd(opts),
		newExampleCmd(opts),
	)
	return root
}

// Execute is the main entry point called from main.go. Interrupts cancel
// long-running simulations.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func joinNames() string {
	names := ""
	for i, n := range output.AvailableFormatterNames() {
		if i > 0 {
			names += ", "
		}
		names += n
	}
	return names
}

// setup resolves settings, flag overrides, the logger, and the engine.
func setup(cmd *cobra.Command, opts *options) (*runtime, error) {
	settings, err := config.LoadSettings(opts.settingsFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		settings.Format = opts.format
	}
	if flags.Changed("output-dir") {
		settings.OutputDir = opts.outputDir
	}
	if flags.Changed("log-level") {
		settings.LogLevel = opts.logLevel
	}
	if flags.Changed("workers") {
		if opts.workers < 0 {
			return nil, fmt.Errorf("--workers must not be negative, got %d", opts.workers)
		}
		settings.Workers = opts.workers
	}

	log, err := logger.New(settings.LogLevel, settings.Development)
	if err != nil {
		return nil, err
	}

	engine := calculation.NewEngine()
	engine.Workers = settings.Workers
	engine.SetLogger(log)

	return &runtime{settings: settings, log: log, engine: engine, out: cmd.OutOrStdout()}, nil
}

// loadPlan reads and validates the plan named by --config.
func (rt *runtime) loadPlan(opts *options) (*config.PlanFile, error) {
	if opts.planFile == "" {
		return nil, fmt.Errorf("a plan file is required (--config)")
	}
	plan, err := config.NewInputParser().LoadFromFile(opts.planFile)
	if err != nil {
		return nil, err
	}
	rt.log.Debugw("plan loaded", "file", opts.planFile,
		"current_age", plan.Profile.CurrentAge,
		"retirement_age", plan.Profile.RetirementAge,
		"life_expectancy", plan.Profile.LifeExpectancy,
		"strategy", plan.Assumptions.Withdrawal.Strategy)
	return plan, nil
}

// applySimulationOverrides layers --trials and --seed over the plan, falling
// back to the settings trial count when the plan leaves it unset.
func (rt *runtime) applySimulationOverrides(cmd *cobra.Command, opts *options, plan *config.PlanFile) {
	if cmd.Flags().Changed("trials") {
		plan.Simulation.Trials = opts.trials
	} else if plan.Simulation.Trials == 0 {
		plan.Simulation.Trials = rt.settings.Trials
	}
	if cmd.Flags().Changed("seed") {
		seed := opts.seed
		plan.Simulation.Seed = &seed
	}
	if plan.Simulation.Workers == 0 {
		plan.Simulation.Workers = rt.settings.Workers
	}
}

// emit renders the report to stdout, or to files when an output directory is set.
func (rt *runtime) emit(report *output.Report, defaultFormat string) error {
	format := rt.settings.Format
	if format == "" {
		format = defaultFormat
	}

	if rt.settings.OutputDir != "" {
		files, err := output.GenerateReport(report, format, rt.settings.OutputDir)
		if err != nil {
			return err
		}
		for _, f := range files {
			rt.log.Infow("report written", "file", f)
			fmt.Fprintln(rt.out, f)
		}
		return nil
	}

	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("%w: %q (available: %s)", output.ErrUnsupportedFormat, format, joinNames())
	}
	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = rt.out.Write(data)
	return err
}

func (rt *runtime) close() {
	_ = rt.log.Sync()
}
