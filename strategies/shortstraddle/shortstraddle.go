package shortstraddle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
	"github.com/quanttoolbox/optionsbacktester/strategies/base"
	"github.com/quanttoolbox/optionsbacktester/trade"
)

const (
	// Name is the strategy name
	Name          = "shortstraddle"
	strikeStepKey = "strike-step"
	stopLossKey   = "stop-loss-pct"
	targetKey     = "target-pct"
	qtyKey        = "qty"
	description   = `Sells the at-the-money call and put as one atomic pair and holds the credit.
The position exits when the combined premium moves against the credit by the stop loss
percentage, in favour of it by the target percentage, or at the end of day force close`
)

// Strategy sells an ATM straddle and manages it on combined premium
type Strategy struct {
	base.Strategy
	strikeStep  int64
	stopLossPct decimal.Decimal
	targetPct   decimal.Decimal
	qty         int64

	atm         int64
	entryCredit decimal.Decimal
	exitReason  string
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
	s.strikeStep = 50
	s.stopLossPct = decimal.NewFromInt(30)
	s.targetPct = decimal.NewFromInt(50)
	s.qty = 1
}

// SetCustomSettings allows a user to modify the straddle parameters in their config
func (s *Strategy) SetCustomSettings(customSettings map[string]any) error {
	for k, v := range customSettings {
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%w %v value %v is not a number", base.ErrInvalidCustomSettings, k, v)
		}
		switch k {
		case strikeStepKey:
			if f <= 0 {
				return fmt.Errorf("%w %v must be positive", base.ErrInvalidCustomSettings, k)
			}
			s.strikeStep = int64(f)
		case stopLossKey:
			if f < 0 {
				return fmt.Errorf("%w %v cannot be negative", base.ErrInvalidCustomSettings, k)
			}
			s.stopLossPct = decimal.NewFromFloat(f)
		case targetKey:
			if f < 0 {
				return fmt.Errorf("%w %v cannot be negative", base.ErrInvalidCustomSettings, k)
			}
			s.targetPct = decimal.NewFromFloat(f)
		case qtyKey:
			if f < 1 {
				return fmt.Errorf("%w %v must be at least 1", base.ErrInvalidCustomSettings, k)
			}
			s.qty = int64(f)
		default:
			return fmt.Errorf("%w unrecognised custom setting key %v", base.ErrInvalidCustomSettings, k)
		}
	}
	return nil
}

// OnDayStart prefetches the ATM legs implied by the pre-open spot. Days with
// no resolvable spot are skipped outright
func (s *Strategy) OnDayStart(_ time.Time, view data.PreOpen) (bool, error) {
	s.atm = 0
	s.entryCredit = decimal.Zero
	s.exitReason = ""
	atm := view.ATM(s.strikeStep)
	if atm == 0 {
		return false, nil
	}
	view.Prefetch(instrument.New(atm, instrument.Call))
	view.Prefetch(instrument.New(atm, instrument.Put))
	return true, nil
}

// CanEnter always reports true; entry simply retries until both legs fill live
func (s *Strategy) CanEnter(_ data.Handler) (bool, error) {
	return true, nil
}

// OnEntry sells the ATM call and put as one all-or-nothing fill
func (s *Strategy) OnEntry(view data.Handler) error {
	atm := view.ATM(s.strikeStep)
	if atm == 0 {
		return nil
	}
	filled, ok, err := s.TryFill(view,
		instrument.NewLeg(instrument.New(atm, instrument.Call), instrument.Sell, s.qty),
		instrument.NewLeg(instrument.New(atm, instrument.Put), instrument.Sell, s.qty),
	)
	if err != nil || !ok {
		return err
	}
	s.atm = atm
	s.entryCredit = decimal.Zero
	for _, t := range filled {
		s.entryCredit = s.entryCredit.Add(t.EntryPrice)
	}
	return nil
}

// OnExitCondition compares the current combined premium against the credit
// received. A leg with no resolvable price defers the decision to a later tick
func (s *Strategy) OnExitCondition(view data.Handler) (bool, error) {
	if s.entryCredit.IsZero() {
		return false, nil
	}
	premium := decimal.Zero
	for _, t := range s.Positions() {
		price, lag := view.Price(t.Instrument)
		if lag == data.NoData {
			return false, nil
		}
		premium = premium.Add(price)
	}
	oneHundred := decimal.NewFromInt(100)
	stopLevel := s.entryCredit.Mul(oneHundred.Add(s.stopLossPct)).Div(oneHundred)
	targetLevel := s.entryCredit.Mul(oneHundred.Sub(s.targetPct)).Div(oneHundred)
	switch {
	case premium.GreaterThanOrEqual(stopLevel):
		s.exitReason = trade.ReasonStopLoss
		return true, nil
	case premium.LessThanOrEqual(targetLevel):
		s.exitReason = trade.ReasonTarget
		return true, nil
	}
	return false, nil
}

// OnExit flattens the straddle under the reason the exit condition recorded
func (s *Strategy) OnExit(view data.Handler) error {
	reason := s.exitReason
	if reason == "" {
		reason = trade.ReasonStrategyExit
	}
	s.CloseAll(view, reason)
	s.entryCredit = decimal.Zero
	s.exitReason = ""
	return nil
}
