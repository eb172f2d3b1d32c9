package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8086", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, []float64{0.95, 0.99}, cfg.Engine.Confidences)
	assert.Equal(t, 10000, cfg.Engine.NumPaths)
	assert.Equal(t, 10000, cfg.Engine.NumSims)
	assert.Equal(t, int64(0), cfg.Engine.Seed)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("RISK_CONFIDENCES", "0.9, 0.975")
	t.Setenv("RISK_NUM_PATHS", "500")
	t.Setenv("RISK_SEED", "42")
	t.Setenv("SCHEDULER_ENABLED", "true")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, []float64{0.9, 0.975}, cfg.Engine.Confidences)
	assert.Equal(t, 500, cfg.Engine.NumPaths)
	assert.Equal(t, int64(42), cfg.Engine.Seed)
	assert.True(t, cfg.Scheduler.Enabled)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "sandbox")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidConfidence(t *testing.T) {
	t.Setenv("RISK_CONFIDENCES", "1.5")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsFloatsMalformed(t *testing.T) {
	t.Setenv("RISK_CONFIDENCES", "0.95,abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.95, 0.99}, cfg.Engine.Confidences)
}
