package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"propsim/market"
	"propsim/risk"
)

// Config represents the complete backtest configuration
type Config struct {
	Account  AccountConfig    `json:"account" yaml:"account"`
	Data     []DataFileConfig `json:"data" yaml:"data"`
	Strategy StrategyConfig   `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig    `json:"journal" yaml:"journal"`

	// BaseStep is the timeline granularity, e.g. "1m", "5m". Empty
	// means one minute.
	BaseStep string `json:"base_step,omitempty" yaml:"base_step,omitempty"`
}

// AccountConfig selects a prop-firm rule preset, with optional overrides
type AccountConfig struct {
	Firm string `json:"firm" yaml:"firm"` // e.g. "topstep_50k"

	// Overrides; zero values keep the preset.
	InitialBalance float64 `json:"initial_balance,omitempty" yaml:"initial_balance,omitempty"`
	MaxDailyLoss   float64 `json:"max_daily_loss,omitempty" yaml:"max_daily_loss,omitempty"`
	MaxLoss        float64 `json:"max_loss,omitempty" yaml:"max_loss,omitempty"`
	MaxContracts   int     `json:"max_contracts,omitempty" yaml:"max_contracts,omitempty"`
	Commission     float64 `json:"commission,omitempty" yaml:"commission,omitempty"`
}

// Rules resolves the firm preset and applies overrides
func (a AccountConfig) Rules() (risk.AccountRules, error) {
	rules, err := risk.FirmByName(a.Firm)
	if err != nil {
		return risk.AccountRules{}, err
	}
	if a.InitialBalance > 0 {
		rules.InitialBalance = a.InitialBalance
	}
	if a.MaxDailyLoss > 0 {
		rules.MaxDailyLoss = a.MaxDailyLoss
	}
	if a.MaxLoss > 0 {
		rules.MaxLoss = a.MaxLoss
	}
	if a.MaxContracts > 0 {
		rules.MaxContracts = a.MaxContracts
	}
	if a.Commission > 0 {
		rules.CommissionPerContract = a.Commission
	}
	return rules, nil
}

// DataFileConfig names one bar file. Symbol and timeframe are detected
// from the filename when omitted.
type DataFileConfig struct {
	Path      string `json:"path" yaml:"path"`
	Symbol    string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Timeframe string `json:"timeframe,omitempty" yaml:"timeframe,omitempty"`
}

// StrategyConfig contains strategy selection and parameters
type StrategyConfig struct {
	Name      string  `json:"name" yaml:"name"`
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Size      int     `json:"size,omitempty" yaml:"size,omitempty"`
	SMAPeriod int     `json:"sma_period,omitempty" yaml:"sma_period,omitempty"`
	TPTicks   float64 `json:"tp_ticks,omitempty" yaml:"tp_ticks,omitempty"`
	SLTicks   float64 `json:"sl_ticks,omitempty" yaml:"sl_ticks,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// ParseBaseStep converts the base step string to a duration
func (c *Config) ParseBaseStep() (time.Duration, error) {
	if c.BaseStep == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(c.BaseStep)
	if err != nil {
		return 0, fmt.Errorf("base_step: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("base_step must be positive")
	}
	return d, nil
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
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

// Validate checks if the configuration is valid. Unknown firms,
// instruments, and strategies fail here, before any data is loaded.
func (c *Config) Validate() error {
	if c.Account.Firm == "" {
		return fmt.Errorf("account.firm is required")
	}
	if _, err := c.Account.Rules(); err != nil {
		return err
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("at least one data file is required")
	}
	for i, d := range c.Data {
		if d.Path == "" {
			return fmt.Errorf("data[%d].path is required", i)
		}
		if d.Symbol != "" {
			if _, err := market.Get(d.Symbol); err != nil {
				return err
			}
		}
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Strategy.Symbol == "" {
		return fmt.Errorf("strategy.symbol is required")
	}
	if _, err := market.Get(c.Strategy.Symbol); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if _, err := c.ParseBaseStep(); err != nil {
		return err
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Firm: "topstep_50k",
		},
		Data: []DataFileConfig{
			{Path: "./data/MES_1m.csv", Symbol: "MES", Timeframe: "1min"},
		},
		Strategy: StrategyConfig{
			Name:      "sma-cross",
			Symbol:    "MES",
			Size:      1,
			SMAPeriod: 20,
			TPTicks:   20,
			SLTicks:   10,
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
	}
}
