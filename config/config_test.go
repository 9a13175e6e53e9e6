package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propsim/risk"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateFailFast(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing firm", func(c *Config) { c.Account.Firm = "" }, "firm"},
		{"unknown firm", func(c *Config) { c.Account.Firm = "acme_9000" }, "unknown prop firm"},
		{"no data", func(c *Config) { c.Data = nil }, "data file"},
		{"unknown data symbol", func(c *Config) { c.Data[0].Symbol = "ZB" }, "ZB"},
		{"missing strategy", func(c *Config) { c.Strategy.Name = "" }, "strategy.name"},
		{"unknown strategy symbol", func(c *Config) { c.Strategy.Symbol = "ZB" }, "ZB"},
		{"bad journal type", func(c *Config) { c.Journal.Type = "parchment" }, "journal.type"},
		{"sqlite without path", func(c *Config) { c.Journal.Type = "sqlite"; c.Journal.DBPath = "" }, "db_path"},
		{"bad base step", func(c *Config) { c.BaseStep = "soon" }, "base_step"},
		{"negative base step", func(c *Config) { c.BaseStep = "-1m" }, "base_step"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAccountRulesOverrides(t *testing.T) {
	a := AccountConfig{
		Firm:           "topstep_50k",
		InitialBalance: 60000,
		MaxContracts:   3,
		Commission:     1.25,
	}
	rules, err := a.Rules()
	require.NoError(t, err)
	assert.Equal(t, 60000.0, rules.InitialBalance)
	assert.Equal(t, 3, rules.MaxContracts)
	assert.Equal(t, 1.25, rules.CommissionPerContract)

	// Untouched fields keep the preset values.
	assert.Equal(t, risk.Topstep50K.MaxDailyLoss, rules.MaxDailyLoss)
	assert.Equal(t, risk.EODTrailing, rules.DrawdownMode)
}

func TestParseBaseStep(t *testing.T) {
	c := &Config{}
	d, err := c.ParseBaseStep()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	c.BaseStep = "5m"
	d, err = c.ParseBaseStep()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
account:
  firm: lucid_50k
  max_contracts: 2
data:
  - path: ./MES_1m.csv
    symbol: MES
strategy:
  name: sma-cross
  symbol: MES
  size: 1
journal:
  type: none
base_step: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "lucid_50k", cfg.Account.Firm)
	assert.Equal(t, 2, cfg.Account.MaxContracts)
	assert.Equal(t, "sma-cross", cfg.Strategy.Name)
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("account:\n  firm: bogus\n"), 0o644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	for _, name := range []string{"config.yaml", "config.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg.Account.Firm, got.Account.Firm)
		assert.Equal(t, cfg.Strategy, got.Strategy)
	}
}
