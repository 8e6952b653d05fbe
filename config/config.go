package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/log"
)

// ReadConfigFromFile loads and validates a config from a path. YAML and JSON
// are both accepted
func ReadConfigFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.max-cycles", 1)
	v.SetDefault("run.transaction-cost-pct", 0.0)
}

// Validate checks all config settings and parses the run dates
func (c *Config) Validate() error {
	if c.Strategy.Name == "" {
		return ErrNoStrategyName
	}
	if c.Run.TransactionCostPct < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeCost, c.Run.TransactionCostPct)
	}
	if c.Run.MaxCycles < 1 {
		return fmt.Errorf("%w: %v", ErrInvalidMaxCycles, c.Run.MaxCycles)
	}
	var err error
	if c.Run.StartDate != "" {
		c.startDate, err = time.ParseInLocation(common.SimpleDateFormat, c.Run.StartDate, time.UTC)
		if err != nil {
			return fmt.Errorf("%w: start-date %q", ErrInvalidDate, c.Run.StartDate)
		}
	}
	if c.Run.EndDate != "" {
		c.endDate, err = time.ParseInLocation(common.SimpleDateFormat, c.Run.EndDate, time.UTC)
		if err != nil {
			return fmt.Errorf("%w: end-date %q", ErrInvalidDate, c.Run.EndDate)
		}
	}
	if !c.startDate.IsZero() && !c.endDate.IsZero() && c.startDate.After(c.endDate) {
		return common.ErrStartAfterEnd
	}
	return nil
}

// StartDate returns the parsed lower run bound; zero means unbounded
func (c *Config) StartDate() time.Time {
	return c.startDate
}

// EndDate returns the parsed upper run bound; zero means unbounded
func (c *Config) EndDate() time.Time {
	return c.endDate
}

// PrintSetting logs the loaded run settings
func (c *Config) PrintSetting() {
	log.Infof(log.Config, "strategy: %s", c.Strategy.Name)
	if len(c.Strategy.CustomSettings) > 0 {
		for k, v := range c.Strategy.CustomSettings {
			log.Infof(log.Config, "custom setting %s: %v", k, v)
		}
	}
	log.Infof(log.Config, "data: %s %s symbol %s", c.Data.Driver, c.Data.DSN, c.Data.Symbol)
	log.Infof(log.Config, "run: %s -> %s | cost %v%% | max cycles %d",
		c.Run.StartDate, c.Run.EndDate, c.Run.TransactionCostPct, c.Run.MaxCycles)
}
