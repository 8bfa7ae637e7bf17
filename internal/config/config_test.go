package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "bogus"
	cfg.Signals.EMAAlpha = 1.5
	cfg.Signals.TopNToLog = -1
	cfg.Redis.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
	assert.Contains(t, err.Error(), "ema_alpha")
	assert.Contains(t, err.Error(), "top_n_to_log")
	assert.Contains(t, err.Error(), "redis: addr")
}

func TestValidateEMAAlphaBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Signals.EMAAlpha = 0
	assert.Error(t, cfg.Validate())

	cfg.Signals.EMAAlpha = 1.0
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
mode = "once"

[signals]
ema_alpha = 0.3
max_spread_bps = 750.0
max_staleness = "45s"

[discovery]
keywords = ["election", "fed"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "once", cfg.Mode)
	assert.Equal(t, 0.3, cfg.Signals.EMAAlpha)
	assert.Equal(t, 750.0, cfg.Signals.MaxSpreadBps)
	assert.Equal(t, 45*time.Second, cfg.Signals.MaxStaleness.Duration)
	assert.Equal(t, []string{"election", "fed"}, cfg.Discovery.Keywords)

	// Untouched sections keep their defaults.
	assert.Equal(t, Defaults().Redis.Addr, cfg.Redis.Addr)
	assert.Equal(t, Defaults().Signals.MinDepthUSDC, cfg.Signals.MinDepthUSDC)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLYAGENT_SIGNALS_MAX_SPREAD_BPS", "900")
	t.Setenv("POLYAGENT_SCANNER_INTERVAL", "1m")
	t.Setenv("POLYAGENT_DISCOVERY_KEYWORDS", "nba, nfl")
	t.Setenv("POLYAGENT_POSTGRES_RUN_MIGRATIONS", "false")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 900.0, cfg.Signals.MaxSpreadBps)
	assert.Equal(t, time.Minute, cfg.Scanner.Interval.Duration)
	assert.Equal(t, []string{"nba", "nfl"}, cfg.Discovery.Keywords)
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestEnvOverridesIgnoreMalformed(t *testing.T) {
	t.Setenv("POLYAGENT_SIGNALS_MAX_SPREAD_BPS", "not-a-number")

	cfg := Defaults()
	applyEnvOverrides(&cfg)
	assert.Equal(t, Defaults().Signals.MaxSpreadBps, cfg.Signals.MaxSpreadBps)
}
