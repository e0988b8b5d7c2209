package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/lotsizer/risk"
)

// Config is everything a lotsizer run needs.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Sizing   SizingConfig   `json:"sizing" yaml:"sizing"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

type AccountConfig struct {
	Currency string `json:"currency" yaml:"currency"`
}

// StrategyConfig names the strategy whose loss streak drives sizing.
type StrategyConfig struct {
	Name   string `json:"name" yaml:"name"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// SizingConfig mirrors risk.Params.
type SizingConfig struct {
	RiskedMoney    float64 `json:"risked_money" yaml:"risked_money"`
	RiskMultiplier float64 `json:"risk_multiplier" yaml:"risk_multiplier"`
	MaxStreak      int     `json:"max_streak" yaml:"max_streak"`
	MinLots        float64 `json:"min_lots" yaml:"min_lots"`
	MaxLots        float64 `json:"max_lots" yaml:"max_lots"`
	SizeDecimals   int     `json:"size_decimals" yaml:"size_decimals"`
}

type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "csv", "sqlite" or "memory"
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

type MetricsConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // e.g. ":9090", empty disables
}

// Params converts the sizing section.
func (c *Config) Params() risk.Params {
	s := c.Sizing
	return risk.Params{
		RiskedMoney:    s.RiskedMoney,
		RiskMultiplier: s.RiskMultiplier,
		MaxStreak:      s.MaxStreak,
		MinLots:        s.MinLots,
		MaxLots:        s.MaxLots,
		SizeDecimals:   s.SizeDecimals,
	}
}

// LoadFromFile loads configuration from a YAML or JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "parse config (tried YAML and JSON)")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON
// otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "write config file")
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return errors.New("account.currency is required")
	}
	if c.Strategy.Name == "" {
		return errors.New("strategy.name is required")
	}
	if c.Strategy.Symbol == "" {
		return errors.New("strategy.symbol is required")
	}
	if err := c.Params().Validate(); err != nil {
		return errors.Wrap(err, "sizing")
	}

	switch c.Journal.Type {
	case "memory":
	case "csv", "sqlite":
		if c.Journal.Path == "" {
			return errors.Errorf("journal.path is required for %s journals", c.Journal.Type)
		}
	default:
		return errors.New("journal.type must be 'csv', 'sqlite' or 'memory'")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}

// Default returns the stock configuration. Sizing defaults are the martingale
// defaults: 100 risked, multiplier 0.5, streak 5, lots 0.01 to 100 at one
// decimal.
func Default() *Config {
	p := risk.DefaultParams()
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
		},
		Strategy: StrategyConfig{
			Name:   "default",
			Symbol: "EUR_USD",
		},
		Sizing: SizingConfig{
			RiskedMoney:    p.RiskedMoney,
			RiskMultiplier: p.RiskMultiplier,
			MaxStreak:      p.MaxStreak,
			MinLots:        p.MinLots,
			MaxLots:        p.MaxLots,
			SizeDecimals:   p.SizeDecimals,
		},
		Journal: JournalConfig{
			Type: "sqlite",
			Path: "./lotsizer.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LOTSIZER_"

// ApplyEnv loads envPath (when it exists) into the environment and then
// overrides fields from LOTSIZER_* variables. Variables already set in the
// environment win over the .env file. The result is not validated.
func (c *Config) ApplyEnv(envPath string) error {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return errors.Wrapf(err, "load %s", envPath)
			}
		}
	}

	strs := map[string]*string{
		"ACCOUNT_CURRENCY": &c.Account.Currency,
		"STRATEGY":         &c.Strategy.Name,
		"SYMBOL":           &c.Strategy.Symbol,
		"JOURNAL_TYPE":     &c.Journal.Type,
		"JOURNAL_PATH":     &c.Journal.Path,
		"LOG_LEVEL":        &c.Log.Level,
		"LOG_FILE":         &c.Log.File,
		"METRICS_ADDR":     &c.Metrics.Addr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	floats := map[string]*float64{
		"RISKED_MONEY":    &c.Sizing.RiskedMoney,
		"RISK_MULTIPLIER": &c.Sizing.RiskMultiplier,
		"MIN_LOTS":        &c.Sizing.MinLots,
		"MAX_LOTS":        &c.Sizing.MaxLots,
	}
	for key, dst := range floats {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = f
	}

	ints := map[string]*int{
		"MAX_STREAK":    &c.Sizing.MaxStreak,
		"SIZE_DECIMALS": &c.Sizing.SizeDecimals,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = n
	}
	return nil
}
