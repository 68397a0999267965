package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencehq/cadence/internal/types"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	var sum float64
	for _, d := range cfg.Domains {
		sum += cfg.BaseWeights[d]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Len(t, cfg.Council.Profiles, 4)
	assert.Less(t, cfg.Council.ProceedThreshold, cfg.Council.ModifyThreshold)
	assert.Less(t, cfg.Council.Confidence.Min, cfg.Council.Confidence.Max)
	assert.InDelta(t, 0.7, cfg.Safety.HighIntensityThreshold, 1e-9)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Thresholds.CriticalSleepHours = 4.5
	cfg.Temporal.WindowDays = 14
	require.NoError(t, cfg.Save(path), "Save should create parent directories")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.5, loaded.Thresholds.CriticalSleepHours)
	assert.Equal(t, 14, loaded.Temporal.WindowDays)
	assert.Equal(t, cfg.BaseWeights, loaded.BaseWeights)
	assert.Equal(t, cfg.Council.RationaleTimeout, loaded.Council.RationaleTimeout)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds:\n  critical_sleep_hours: 4.0\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Thresholds.CriticalSleepHours)
	assert.Equal(t, Default().Thresholds.LowSleepHours, cfg.Thresholds.LowSleepHours)
	assert.NotEmpty(t, cfg.Council.Profiles)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds: [not a map"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty domains", func(c *Config) { c.Domains = nil }},
		{"unknown domain", func(c *Config) { c.Domains = append(c.Domains, types.Domain("leisure")) }},
		{"missing weight", func(c *Config) { delete(c.BaseWeights, types.DomainRecovery) }},
		{"negative weight", func(c *Config) {
			c.BaseWeights[types.DomainRecovery] = -0.1
			c.BaseWeights[types.DomainNutrition] = 0.65
		}},
		{"weights not normalized", func(c *Config) { c.BaseWeights[types.DomainRecovery] = 0.5 }},
		{"zero decay rate", func(c *Config) { c.Temporal.DecayRate = 0 }},
		{"decay rate above one", func(c *Config) { c.Temporal.DecayRate = 1.2 }},
		{"zero window", func(c *Config) { c.Temporal.WindowDays = 0 }},
		{"no profiles", func(c *Config) { c.Council.Profiles = nil }},
		{"confidence min above max", func(c *Config) { c.Council.Confidence.Min = 0.96 }},
		{"confidence max above one", func(c *Config) { c.Council.Confidence.Max = 1.1 }},
		{"proceed threshold above modify", func(c *Config) { c.Council.ProceedThreshold = 2.0 }},
		{"intensity threshold out of range", func(c *Config) { c.Safety.HighIntensityThreshold = 1.5 }},
		{"single curve anchor", func(c *Config) { c.Scoring.SleepCurve = c.Scoring.SleepCurve[:1] }},
		{"non-increasing curve", func(c *Config) {
			c.Scoring.SleepCurve[1].Hours = c.Scoring.SleepCurve[0].Hours
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
