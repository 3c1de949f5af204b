package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), *settings)
}

func TestLoadSettings_FromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.yaml", "workers: 4\ntrials: 2000\nlog_level: debug\nformat: json\n")

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 4, settings.Workers)
	assert.Equal(t, 2000, settings.Trials)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "json", settings.Format)
}

func TestLoadSettings_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.yaml", "workers: 4\n")
	t.Setenv("RPGO_WORKERS", "8")
	t.Setenv("RPGO_LOG_LEVEL", "warn")

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 8, settings.Workers)
	assert.Equal(t, "warn", settings.LogLevel)
}

func TestLoadSettings_MissingFile(t *testing.T) {
	_, err := LoadSettings("does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading settings file")
}

func TestLoadSettings_RejectsNegativeWorkers(t *testing.T) {
	t.Setenv("RPGO_WORKERS", "-2")

	_, err := LoadSettings("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}
