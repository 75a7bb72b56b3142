package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/commission"
	"github.com/rustyeddy/tradejournal/metrics"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, SourceSQLite, cfg.Candles.Source)
	assert.Equal(t, 4, cfg.Equity.Workers)
	assert.Equal(t, commission.None, cfg.Commission.Plan)
	assert.Equal(t, metrics.Approximate{}, cfg.PValueEstimator())
	assert.Equal(t, metrics.LiteralExcursion, cfg.ExcursionMode())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing db path", func(c *Config) { c.Journal.DBPath = "" }, "journal.db_path is required"},
		{"unknown source", func(c *Config) { c.Candles.Source = "csv" }, "candles.source must be"},
		{"postgres without url", func(c *Config) { c.Candles.Source = SourcePostgres }, "candles.postgres_url required"},
		{"bad timeframe", func(c *Config) { c.Candles.Timeframe = "soon" }, "candles.timeframe"},
		{"negative balance", func(c *Config) { c.Equity.InitialBalance = -1 }, "equity.initial_balance"},
		{"no workers", func(c *Config) { c.Equity.Workers = 0 }, "equity.workers must be at least 1"},
		{"unknown p-value", func(c *Config) { c.Metrics.PValue = "bootstrap" }, "metrics.p_value"},
		{"unknown excursion", func(c *Config) { c.Metrics.Excursion = "inverted" }, "metrics.excursion"},
		{"tiered without volume", func(c *Config) { c.Commission.Plan = commission.Tiered }, "monthly volume"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Metrics.PValue = "student_t"
			cfg.Commission = commission.Model{Plan: commission.Tiered, MonthlyVolume: 250000}
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  db_path: /tmp/j.db\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/j.db", cfg.Journal.DBPath)
	assert.Equal(t, 4, cfg.Equity.Workers)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDB:           "/data/journal.db",
		EnvCandleSource: "postgres",
		EnvPostgresURL:  "postgres://localhost/candles",
		EnvLogLevel:     "DEBUG",
		EnvLogFormat:    "",
		EnvTrace:        "true",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))

	assert.Equal(t, "/data/journal.db", cfg.Journal.DBPath)
	assert.Equal(t, SourcePostgres, cfg.Candles.Source)
	assert.Equal(t, "postgres://localhost/candles", cfg.Candles.PostgresURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Trace.Enabled)
	assert.NoError(t, cfg.Validate())

	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvTrace {
			return "maybe", true
		}
		return "", false
	})
	assert.Error(t, err)
}

func TestOverlayDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOURNAL_DB=/from/dotenv.db\nLOG_FORMAT=json\n"), 0644))
	t.Setenv(EnvLogFormat, "console")

	cfg := Default()
	require.NoError(t, cfg.Overlay(path))
	assert.Equal(t, "/from/dotenv.db", cfg.Journal.DBPath)
	assert.Equal(t, "console", cfg.Log.Format, "process env wins over dotenv")

	cfg = Default()
	assert.NoError(t, cfg.Overlay(filepath.Join(dir, "missing.env")))
}
