// Package config loads the demo/wiring configuration used by
// cmd/tradecore-demo. The engine core itself never reads this: every
// core entry point takes explicit parameters, per spec.md §6's
// data-source-agnostic requirement. Grounded on every teacher
// service's internal/config package (struct tags, Load(path), sane
// post-unmarshal defaults).
package config

import (
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the demo entrypoint's static configuration.
type Config struct {
	Logging struct {
		Development bool   `yaml:"development"`
		Level       string `yaml:"level"`
	} `yaml:"logging"`

	RiskFreeRate    string `yaml:"risk_free_rate"`
	CommissionPct   string `yaml:"commission_pct"`
	EquitySampleDays int   `yaml:"equity_sample_days"`

	EmergencyStop struct {
		MaxDrawdownPct string `yaml:"max_drawdown_pct"`
	} `yaml:"emergency_stop"`
}

// Load reads and unmarshals path, then fills in defaults for any field
// left zero.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.RiskFreeRate == "" {
		c.RiskFreeRate = "0.02"
	}
	if c.CommissionPct == "" {
		c.CommissionPct = "0"
	}
	if c.EquitySampleDays == 0 {
		c.EquitySampleDays = 1
	}
	if c.EmergencyStop.MaxDrawdownPct == "" {
		c.EmergencyStop.MaxDrawdownPct = "20"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// RiskFreeRateDecimal parses RiskFreeRate, defaulting to 0.02 on error.
func (c *Config) RiskFreeRateDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.RiskFreeRate)
	if err != nil {
		return decimal.NewFromFloat(0.02)
	}
	return d
}

// CommissionPctDecimal parses CommissionPct, defaulting to 0 on error.
func (c *Config) CommissionPctDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.CommissionPct)
	if err != nil {
		return decimal.Zero
	}
	return d
}
