package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/fxsignal/internal/logging"
	"github.com/rustyeddy/fxsignal/market"
	"github.com/rustyeddy/fxsignal/risk"
	"github.com/rustyeddy/fxsignal/scheduler"
	"github.com/rustyeddy/fxsignal/strategies"
)

// Config represents the complete application configuration
type Config struct {
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Risk     risk.Account   `json:"risk" yaml:"risk"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Watch    WatchConfig    `json:"watch" yaml:"watch"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// StrategyConfig names a registered strategy and carries its parameters
type StrategyConfig struct {
	Name              string `json:"name" yaml:"name"`
	strategies.Config `yaml:",inline"`
}

// AnalysisConfig controls batch analysis
type AnalysisConfig struct {
	Workers       int      `json:"workers" yaml:"workers"` // 0 means one per CPU
	Timeframes    []string `json:"timeframes,omitempty" yaml:"timeframes,omitempty"`
	SignalLogSize int      `json:"signal_log_size" yaml:"signal_log_size"`
}

// BacktestConfig contains simulation parameters
type BacktestConfig struct {
	CloseAtEnd bool `json:"close_at_end" yaml:"close_at_end"`
	TopN       int  `json:"top_n" yaml:"top_n"` // optimizer rows printed
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
}

// WatchConfig contains the periodic re-analysis schedule
type WatchConfig struct {
	Schedule    string `json:"schedule" yaml:"schedule"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"`
	RunOnStart  bool   `json:"run_on_start" yaml:"run_on_start"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Strategy: StrategyConfig{
			Name:   "confluence",
			Config: strategies.DefaultConfig(),
		},
		Analysis: AnalysisConfig{
			SignalLogSize: 1000,
		},
		Backtest: BacktestConfig{
			TopN: 10,
		},
		// Equity 0 leaves position sizing off.
		Risk: risk.Account{
			Currency: "USD",
			RiskPct:  0.01,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./fxsignal.db",
		},
		Watch: WatchConfig{
			Schedule:    "0 */5 * * * *",
			MetricsAddr: ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// StrategyConfig returns a copy of the decision configuration.
func (c *Config) StrategyConfig() strategies.Config {
	return c.Strategy.Config
}

// Load starts from Default, overlays the file at path (if path is not
// empty), applies FXSIGNAL_* environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := readInto(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON). Fields
// missing from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := readInto(path, cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func readInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
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

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := strategies.New(c.Strategy.Name, c.Strategy.Config); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("analysis.workers must not be negative")
	}
	if c.Analysis.SignalLogSize < 0 {
		return fmt.Errorf("analysis.signal_log_size must not be negative")
	}
	for _, tf := range c.Analysis.Timeframes {
		if _, err := market.ParseTimeframe(tf); err != nil {
			return fmt.Errorf("analysis.timeframes: %w", err)
		}
	}
	if c.Backtest.TopN < 0 {
		return fmt.Errorf("backtest.top_n must not be negative")
	}
	if c.Risk.Equity < 0 {
		return fmt.Errorf("risk.equity must not be negative")
	}
	if c.Risk.Equity > 0 {
		if err := c.Risk.Validate(); err != nil {
			return err
		}
	}
	switch c.Journal.Type {
	case "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.TradesFile == "" {
			return fmt.Errorf("journal runs_file and trades_file required for CSV type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	if err := scheduler.ParseSpec(c.Watch.Schedule); err != nil {
		return fmt.Errorf("watch.schedule: %w", err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if f := c.Log.Format; f != "" && f != "text" && f != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}
	return nil
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FXSIGNAL_"

// ApplyEnv overrides fields from FXSIGNAL_* environment variables. Unset or
// empty variables are ignored; malformed numbers are an error.
func (c *Config) ApplyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) error {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = f
		return nil
	}
	integer := func(key string, dst *int) error {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
		return nil
	}

	str("STRATEGY", &c.Strategy.Name)
	str("JOURNAL_TYPE", &c.Journal.Type)
	str("DB_PATH", &c.Journal.DBPath)
	str("SCHEDULE", &c.Watch.Schedule)
	str("METRICS_ADDR", &c.Watch.MetricsAddr)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("ACCOUNT_CURRENCY", &c.Risk.Currency)

	if v := os.Getenv(EnvPrefix + "TIMEFRAMES"); v != "" {
		c.Analysis.Timeframes = SplitList(v)
	}

	for _, err := range []error{
		float("RISK_REWARD", &c.Strategy.RiskReward),
		float("ATR_MULTIPLIER", &c.Strategy.ATRMultiplier),
		float("VOLUME_BREAKOUT", &c.Strategy.VolumeBreakout),
		float("EQUITY", &c.Risk.Equity),
		float("RISK_PCT", &c.Risk.RiskPct),
		boolean("REQUIRE_MACD", &c.Strategy.RequireMACD),
		boolean("CLOSE_AT_END", &c.Backtest.CloseAtEnd),
		integer("WORKERS", &c.Analysis.Workers),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
