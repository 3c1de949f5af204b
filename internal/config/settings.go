package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Settings are run-time knobs that are independent of any one plan: worker
// pool size, default trial count, logging, and output format. They come from
// an optional settings file and RPGO_* environment variables.
type Settings struct {
	Workers     int    `mapstructure:"workers"`
	Trials      int    `mapstructure:"trials"`
	LogLevel    string `mapstructure:"log_level"`
	Development bool   `mapstructure:"development"`
	Format      string `mapstructure:"format"`
	OutputDir   string `mapstructure:"output_dir"`
}

// DefaultSettings returns the settings used when nothing overrides them.
func DefaultSettings() Settings {
	return Settings{
		Workers:  0,
		Trials:   1000,
		LogLevel: "info",
		Format:   "console",
	}
}

// LoadSettings reads settings from path (any format viper understands) and
// the environment. An empty path reads the environment only.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("trials", defaults.Trials)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("development", defaults.Development)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("output_dir", defaults.OutputDir)

	v.SetEnvPrefix("RPGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file, %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unable to decode settings, %w", err)
	}
	if settings.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", settings.Workers)
	}
	if settings.Trials < 0 {
		return nil, fmt.Errorf("trials must not be negative, got %d", settings.Trials)
	}
	return &settings, nil
}
