package config

import (
	"errors"
	"time"

	"github.com/quanttoolbox/optionsbacktester/datasource/database"
)

var (
	// ErrNoStrategyName is returned when the config names no strategy
	ErrNoStrategyName = errors.New("no strategy name in config")
	// ErrInvalidDate is returned when a date cannot be parsed
	ErrInvalidDate = errors.New("invalid date in config")
	// ErrNegativeCost is returned for a negative transaction cost percentage
	ErrNegativeCost = errors.New("transaction cost percentage cannot be negative")
	// ErrInvalidMaxCycles is returned for a non-positive cycle bound
	ErrInvalidMaxCycles = errors.New("max cycles must be at least 1")
)

// Config is the complete backtest run configuration
type Config struct {
	Strategy StrategySettings `json:"strategy" mapstructure:"strategy"`
	Data     database.Config  `json:"data" mapstructure:"data"`
	Run      RunSettings      `json:"run" mapstructure:"run"`

	startDate time.Time
	endDate   time.Time
}

// StrategySettings names the strategy and carries its custom settings
type StrategySettings struct {
	Name           string         `json:"name" mapstructure:"name"`
	CustomSettings map[string]any `json:"custom-settings" mapstructure:"custom-settings"`
}

// RunSettings bounds the run and sets the execution parameters
type RunSettings struct {
	StartDate          string  `json:"start-date" mapstructure:"start-date"`
	EndDate            string  `json:"end-date" mapstructure:"end-date"`
	TransactionCostPct float64 `json:"transaction-cost-pct" mapstructure:"transaction-cost-pct"`
	MaxCycles          int64   `json:"max-cycles" mapstructure:"max-cycles"`
	Verbose            bool    `json:"verbose" mapstructure:"verbose"`
}
