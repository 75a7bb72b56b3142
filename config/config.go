package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradejournal/commission"
	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/metrics"
)

// Config is the complete journal configuration
type Config struct {
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Candles    CandlesConfig    `json:"candles" yaml:"candles"`
	Equity     EquityConfig     `json:"equity" yaml:"equity"`
	Metrics    MetricsConfig    `json:"metrics" yaml:"metrics"`
	Commission commission.Model `json:"commission" yaml:"commission"`
	Log        LogConfig        `json:"log" yaml:"log"`
	Trace      TraceConfig      `json:"trace" yaml:"trace"`
}

// JournalConfig locates the SQLite journal
type JournalConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// CandlesConfig selects where price history is read from
type CandlesConfig struct {
	Source      string           `json:"source" yaml:"source"` // "sqlite" or "postgres"
	PostgresURL string           `json:"postgres_url,omitempty" yaml:"postgres_url,omitempty"`
	Timeframe   market.Timeframe `json:"timeframe" yaml:"timeframe"`
}

// EquityConfig contains equity curve parameters
type EquityConfig struct {
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Workers        int     `json:"workers" yaml:"workers"`
}

// MetricsConfig selects metric variants
type MetricsConfig struct {
	PValue    string `json:"p_value" yaml:"p_value"`
	Excursion string `json:"excursion" yaml:"excursion"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "console"
}

type TraceConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

const (
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Environment variables that override file values.
const (
	EnvDB           = "JOURNAL_DB"
	EnvCandleSource = "JOURNAL_CANDLE_SOURCE"
	EnvPostgresURL  = "JOURNAL_POSTGRES_URL"
	EnvLogLevel     = "LOG_LEVEL"
	EnvLogFormat    = "LOG_FORMAT"
	EnvTrace        = "TRACE_ENABLED"
)

// Overlay applies variables from the dotenv file (when it exists) and then
// the process environment, which wins over the file.
func (c *Config) Overlay(dotenv string) error {
	file := map[string]string{}
	if dotenv != "" {
		m, err := godotenv.Read(dotenv)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("read %s: %w", dotenv, err)
		}
	}
	return c.ApplyEnv(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	})
}

// ApplyEnv overrides fields from lookup. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvDB); ok {
		c.Journal.DBPath = v
	}
	if v, ok := get(EnvCandleSource); ok {
		c.Candles.Source = v
	}
	if v, ok := get(EnvPostgresURL); ok {
		c.Candles.PostgresURL = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get(EnvLogFormat); ok {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := get(EnvTrace); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTrace, err)
		}
		c.Trace.Enabled = b
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path is required")
	}
	switch c.Candles.Source {
	case SourceSQLite:
	case SourcePostgres:
		if c.Candles.PostgresURL == "" {
			return fmt.Errorf("candles.postgres_url required for postgres source")
		}
	default:
		return fmt.Errorf("candles.source must be 'sqlite' or 'postgres'")
	}
	if _, err := c.Candles.Timeframe.Duration(); err != nil {
		return fmt.Errorf("candles.timeframe: %w", err)
	}
	if c.Equity.InitialBalance < 0 {
		return fmt.Errorf("equity.initial_balance must not be negative")
	}
	if c.Equity.Workers < 1 {
		return fmt.Errorf("equity.workers must be at least 1")
	}
	if _, ok := metrics.PValueByName(c.Metrics.PValue); !ok {
		return fmt.Errorf("metrics.p_value must be 'approximate' or 'student_t'")
	}
	if _, ok := metrics.ParseExcursionMode(c.Metrics.Excursion); !ok {
		return fmt.Errorf("metrics.excursion must be 'literal' or 'side_aware'")
	}
	if err := c.Commission.Validate(); err != nil {
		return fmt.Errorf("commission: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// PValueEstimator returns the configured estimator.
func (c *Config) PValueEstimator() metrics.PValueEstimator {
	e, ok := metrics.PValueByName(c.Metrics.PValue)
	if !ok {
		return metrics.Approximate{}
	}
	return e
}

// ExcursionMode returns the configured MAE/MFE convention.
func (c *Config) ExcursionMode() metrics.ExcursionMode {
	m, _ := metrics.ParseExcursionMode(c.Metrics.Excursion)
	if m == "" {
		return metrics.LiteralExcursion
	}
	return m
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Journal: JournalConfig{
			DBPath: "./journal.db",
		},
		Candles: CandlesConfig{
			Source:    SourceSQLite,
			Timeframe: market.M1,
		},
		Equity: EquityConfig{
			InitialBalance: 0,
			Workers:        4,
		},
		Metrics: MetricsConfig{
			PValue:    "approximate",
			Excursion: string(metrics.LiteralExcursion),
		},
		Commission: commission.Model{Plan: commission.None},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
