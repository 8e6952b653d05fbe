package engine

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/config"
	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/datasource/database"
	"github.com/quanttoolbox/optionsbacktester/log"
	"github.com/quanttoolbox/optionsbacktester/statistics"
	"github.com/quanttoolbox/optionsbacktester/strategies"
	"github.com/quanttoolbox/optionsbacktester/strategies/base"
)

// New creates a BackTest over the supplied source and strategy
func New(source data.Source, strategy base.Handler, settings Settings) (*BackTest, error) {
	if source == nil {
		return nil, common.ErrNilDataSource
	}
	if strategy == nil {
		return nil, common.ErrNilStrategy
	}
	session, err := data.NewSession(source)
	if err != nil {
		return nil, err
	}
	if settings.MaxCycles < 1 {
		settings.MaxCycles = 1
	}
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	strategy.GetStrategy().ApplyRunSettings(settings.MaxCycles, settings.TransactionCostPct)
	return &BackTest{
		RunID:     runID,
		Strategy:  strategy,
		Source:    source,
		Session:   session,
		Statistic: &statistics.Statistic{},
		settings:  settings,
	}, nil
}

// NewFromConfig creates a BackTest wired from a validated config: the
// database source is connected and the named strategy is loaded from the
// registry with its custom settings applied
func NewFromConfig(cfg *config.Config) (*BackTest, error) {
	if cfg == nil {
		return nil, common.ErrNilArguments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := strategies.LoadStrategyByName(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	if err = strategy.SetCustomSettings(normaliseSettings(cfg.Strategy.CustomSettings)); err != nil {
		return nil, err
	}
	source, err := database.Connect(&cfg.Data)
	if err != nil {
		return nil, err
	}
	bt, err := New(source, strategy, Settings{
		TransactionCostPct: decimal.NewFromFloat(cfg.Run.TransactionCostPct),
		MaxCycles:          cfg.Run.MaxCycles,
		StartDate:          cfg.StartDate(),
		EndDate:            cfg.EndDate(),
	})
	if err != nil {
		closeErr := source.Close()
		if closeErr != nil {
			log.Errorf(log.Engine, "close source: %v", closeErr)
		}
		return nil, err
	}
	log.Infof(log.Engine, "run %v using strategy %q", bt.RunID, strategy.Name())
	return bt, nil
}

// normaliseSettings coerces config numbers to float64 so strategies see one
// numeric type whether the file was YAML or JSON
func normaliseSettings(settings map[string]any) map[string]any {
	resp := make(map[string]any, len(settings))
	for k, v := range settings {
		if f, err := cast.ToFloat64E(v); err == nil {
			resp[k] = f
			continue
		}
		resp[k] = v
	}
	return resp
}

// SetClock overrides the auto-derived per-day clock for every day of the run
func (bt *BackTest) SetClock(ticks []time.Time) {
	bt.clockOverride = ticks
}
