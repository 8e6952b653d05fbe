package engine

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/statistics"
	"github.com/quanttoolbox/optionsbacktester/strategies/base"
)

// Settings holds the run parameters the engine applies to every day
type Settings struct {
	TransactionCostPct decimal.Decimal
	MaxCycles          int64
	StartDate          time.Time
	EndDate            time.Time
}

// BackTest orchestrates the fixed per-day lifecycle over the configured
// date range. One BackTest, one Strategy and one Session belong to one run;
// parameter sweeps construct independent instances
type BackTest struct {
	RunID     uuid.UUID
	Strategy  base.Handler
	Source    data.Source
	Session   *data.Session
	Statistic *statistics.Statistic

	settings      Settings
	clockOverride []time.Time
}
