package engine

import (
	"time"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/log"
	"github.com/quanttoolbox/optionsbacktester/strategies/base"
)

// Run replays every available trading day within the configured bounds in
// ascending order. Strategy hook errors are never swallowed; the first one
// aborts the run
func (bt *BackTest) Run() error {
	if bt.Strategy == nil {
		return common.ErrNilStrategy
	}
	if bt.Source == nil || bt.Session == nil {
		return common.ErrNilDataSource
	}
	dates, err := bt.Source.AvailableDates()
	if err != nil {
		return err
	}
	days := 0
	for i := range dates {
		if !common.WithinRange(dates[i], bt.settings.StartDate, bt.settings.EndDate) {
			continue
		}
		if err = bt.runDay(dates[i]); err != nil {
			return err
		}
		days++
	}
	log.Infof(log.Engine, "run %v complete: %d day(s), %d closed trade(s)",
		bt.RunID, days, len(bt.Strategy.GetStrategy().ClosedTrades()))

	bt.Statistic.Reset()
	bt.Statistic.AddTrades(bt.Strategy.GetStrategy().ClosedTrades()...)
	return bt.Statistic.CalculateAllResults()
}

// runDay executes the fixed per-day procedure. The ordering is load-bearing:
// the cache is reseeded and the underlying loaded before any strategy
// callback runs, and the force close happens at the final tick whether or
// not the strategy ever exited
func (bt *BackTest) runDay(date time.Time) error {
	s := bt.Strategy.GetStrategy()

	if err := bt.Session.StartDay(date); err != nil {
		return err
	}
	if bt.clockOverride != nil {
		bt.Session.SetClock(bt.clockOverride)
	}
	clock := bt.Session.Clock()
	if len(clock) == 0 {
		log.Warnf(log.Engine, "no ticks on %s, skipping day", date.Format(common.SimpleDateFormat))
		return nil
	}

	s.ResetDay()

	proceed, err := bt.Strategy.OnDayStart(date, bt.Session.PreOpenView())
	if err != nil {
		return err
	}
	if !proceed {
		log.Debugf(log.Engine, "strategy sat out %s", date.Format(common.SimpleDateFormat))
		return nil
	}

	view := bt.Session.IntradayView()
	for i := range clock {
		view.Advance(i)
		if err = base.ProcessTick(bt.Strategy, view); err != nil {
			return err
		}
	}

	view.Advance(len(clock) - 1)
	if closed := s.ForceCloseAll(view); len(closed) > 0 {
		log.Debugf(log.Engine, "force closed %d position(s) on %s",
			len(closed), date.Format(common.SimpleDateFormat))
	}

	return bt.Strategy.OnDayEnd(view)
}
