package rsimeanreversion

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/thrasher-corp/gct-ta/indicators"

	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
	"github.com/quanttoolbox/optionsbacktester/strategies/base"
	"github.com/quanttoolbox/optionsbacktester/trade"
)

const (
	// Name is the strategy name
	Name          = "rsimeanreversion"
	rsiPeriodKey  = "rsi-period"
	rsiLowKey     = "rsi-low"
	rsiHighKey    = "rsi-high"
	strikeStepKey = "strike-step"
	qtyKey        = "qty"
	description   = `Buys the at-the-money call when the underlying's intraday RSI signals
oversold and the at-the-money put when it signals overbought, unwinding when the RSI
reverts through the midline`
)

// Strategy buys single ATM options against underlying RSI extremes
type Strategy struct {
	base.Strategy
	rsiPeriod  int
	rsiLow     decimal.Decimal
	rsiHigh    decimal.Decimal
	strikeStep int64
	qty        int64

	closes       []float64
	lastObserved time.Time
	entrySide    instrument.OptionType
	enteredOnLow bool
}

// Name returns the name of the strategy
func (s *Strategy) Name() string {
	return Name
}

// Description provides an overview of the strategy
func (s *Strategy) Description() string {
	return description
}

// SetDefaults sets the custom settings to their default values
func (s *Strategy) SetDefaults() {
	s.rsiPeriod = 14
	s.rsiLow = decimal.NewFromInt(30)
	s.rsiHigh = decimal.NewFromInt(70)
	s.strikeStep = 50
	s.qty = 1
}

// SetCustomSettings allows a user to modify the RSI limits in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		f, ok := v.(float64)
		if !ok || f <= 0 {
			return fmt.Errorf("%w provided %v value could not be parsed: %v", base.ErrInvalidCustomSettings, k, v)
		}
		switch k {
		case rsiPeriodKey:
			s.rsiPeriod = int(f)
		case rsiLowKey:
			s.rsiLow = decimal.NewFromFloat(f)
		case rsiHighKey:
			s.rsiHigh = decimal.NewFromFloat(f)
		case strikeStepKey:
			s.strikeStep = int64(f)
		case qtyKey:
			s.qty = int64(f)
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v", base.ErrInvalidCustomSettings, k)
		}
	}
	return nil
}

// OnDayStart clears the day's observed series. Days with no resolvable spot
// are skipped
func (s *Strategy) OnDayStart(_ time.Time, view data.PreOpen) (bool, error) {
	s.closes = s.closes[:0]
	s.lastObserved = time.Time{}
	s.entrySide = ""
	if _, ok := view.Spot(); !ok {
		return false, nil
	}
	return true, nil
}

// observe appends the current spot to the day's series, once per tick.
// It runs from both CanEnter and OnAdjust so the series covers every tick
// regardless of state
func (s *Strategy) observe(view data.Handler) {
	if view.Tick().Equal(s.lastObserved) {
		return
	}
	spot, ok := view.Spot()
	if !ok {
		return
	}
	s.lastObserved = view.Tick()
	s.closes = append(s.closes, spot.InexactFloat64())
}

func (s *Strategy) latestRSI() (decimal.Decimal, bool) {
	if len(s.closes) <= s.rsiPeriod {
		return decimal.Zero, false
	}
	rsi := indicators.RSI(s.closes, s.rsiPeriod)
	return decimal.NewFromFloat(rsi[len(rsi)-1]), true
}

// CanEnter reports true once the underlying RSI breaches either extreme
func (s *Strategy) CanEnter(view data.Handler) (bool, error) {
	s.observe(view)
	rsi, ok := s.latestRSI()
	if !ok {
		return false, nil
	}
	switch {
	case rsi.LessThanOrEqual(s.rsiLow):
		s.entrySide = instrument.Call
		s.enteredOnLow = true
		return true, nil
	case rsi.GreaterThanOrEqual(s.rsiHigh):
		s.entrySide = instrument.Put
		s.enteredOnLow = false
		return true, nil
	}
	return false, nil
}

// OnEntry buys a single ATM option on the side the RSI extreme selected
func (s *Strategy) OnEntry(view data.Handler) error {
	atm := view.ATM(s.strikeStep)
	if atm == 0 || s.entrySide == "" {
		return nil
	}
	_, _, err := s.TryFill(view,
		instrument.NewLeg(instrument.New(atm, s.entrySide), instrument.Buy, s.qty))
	return err
}

// OnAdjust keeps the observed series current while a position is open
func (s *Strategy) OnAdjust(view data.Handler) error {
	s.observe(view)
	return nil
}

// OnExitCondition unwinds once the RSI reverts through the midline
func (s *Strategy) OnExitCondition(_ data.Handler) (bool, error) {
	rsi, ok := s.latestRSI()
	if !ok {
		return false, nil
	}
	mid := decimal.NewFromInt(50)
	if s.enteredOnLow {
		return rsi.GreaterThanOrEqual(mid), nil
	}
	return rsi.LessThanOrEqual(mid), nil
}

// OnExit flattens the position
func (s *Strategy) OnExit(view data.Handler) error {
	s.CloseAll(view, trade.ReasonStrategyExit)
	s.entrySide = ""
	return nil
}
