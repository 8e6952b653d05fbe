package base

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
	"github.com/quanttoolbox/optionsbacktester/log"
	"github.com/quanttoolbox/optionsbacktester/trade"
)

// String returns a human readable state name
func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Active:
		return "ACTIVE"
	case Done:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// GetStrategy exposes the embedded base to the engine
func (s *Strategy) GetStrategy() *Strategy {
	return s
}

// ApplyRunSettings wires the engine's run configuration into the base
func (s *Strategy) ApplyRunSettings(maxCycles int64, costPct decimal.Decimal) {
	s.maxCycles = maxCycles
	s.costPct = costPct
}

// ResetDay returns the per-day state to defaults. The closed-trade history
// spans the whole run and is untouched. Only the engine calls this
func (s *Strategy) ResetDay() {
	s.state = Idle
	s.currentCycle = 0
	s.positions = make(map[string]*trade.Trade)
	s.pending = nil
}

// State returns the current day state
func (s *Strategy) State() State {
	return s.state
}

// CurrentCycle returns the zero-based entry-to-exit cycle the strategy is in
func (s *Strategy) CurrentCycle() int64 {
	return s.currentCycle
}

// OpenPosition returns the open trade for a label, if any
func (s *Strategy) OpenPosition(label string) (*trade.Trade, bool) {
	t, ok := s.positions[label]
	return t, ok
}

// OpenLabels returns the labels of all open positions in sorted order
func (s *Strategy) OpenLabels() []string {
	labels := make([]string, 0, len(s.positions))
	for label := range s.positions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Positions returns a copy of the open-position map
func (s *Strategy) Positions() map[string]*trade.Trade {
	resp := make(map[string]*trade.Trade, len(s.positions))
	for label, t := range s.positions {
		resp[label] = t
	}
	return resp
}

// ClosedTrades returns the append-only closed-trade history
func (s *Strategy) ClosedTrades() []trade.Trade {
	return s.closed
}

// Add accumulates legs to be filled by a subsequent no-arg TryFill
func (s *Strategy) Add(legs ...instrument.Leg) {
	s.pending = append(s.pending, legs...)
}

// TryFill attempts an all-or-nothing fill of the supplied legs, labelling
// each by its instrument key. With no legs supplied it consumes any legs
// accumulated via Add. If any leg lacks a live price the whole call reports
// no fill with no side effects; a successful fill returns one open trade per
// leg and transitions Idle to Active
func (s *Strategy) TryFill(view data.Handler, legs ...instrument.Leg) (map[string]*trade.Trade, bool, error) {
	usePending := len(legs) == 0
	if usePending {
		legs = s.pending
	}
	if len(legs) == 0 {
		return nil, false, ErrNoLegs
	}
	labelled := make(map[string]instrument.Leg, len(legs))
	order := make([]string, 0, len(legs))
	for i := range legs {
		label := legs[i].Instrument.Key()
		if _, ok := labelled[label]; ok {
			return nil, false, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
		}
		labelled[label] = legs[i]
		order = append(order, label)
	}
	filled, ok, err := s.fill(view, labelled, order)
	if ok && usePending {
		s.pending = nil
	}
	return filled, ok, err
}

// TryFillLabelled is TryFill with caller-chosen labels
func (s *Strategy) TryFillLabelled(view data.Handler, legs map[string]instrument.Leg) (map[string]*trade.Trade, bool, error) {
	if len(legs) == 0 {
		return nil, false, ErrNoLegs
	}
	order := make([]string, 0, len(legs))
	for label := range legs {
		order = append(order, label)
	}
	sort.Strings(order)
	return s.fill(view, legs, order)
}

func (s *Strategy) fill(view data.Handler, legs map[string]instrument.Leg, order []string) (map[string]*trade.Trade, bool, error) {
	if view == nil {
		return nil, false, common.ErrNilArguments
	}
	if s.positions == nil {
		s.positions = make(map[string]*trade.Trade)
	}
	for _, label := range order {
		leg := legs[label]
		if err := leg.Validate(); err != nil {
			return nil, false, err
		}
		if _, open := s.positions[label]; open {
			return nil, false, fmt.Errorf("%w: %q", ErrLabelAlreadyOpen, label)
		}
	}

	// feasibility pass: every leg needs a live price before anything fills
	prices := make(map[string]decimal.Decimal, len(order))
	for _, label := range order {
		price, lag := view.Price(legs[label].Instrument)
		if lag != 0 {
			log.Debugf(log.Strategy, "no fill: %q has lag %d at %v", label, lag, view.Tick())
			return nil, false, nil
		}
		prices[label] = price
	}

	filled := make(map[string]*trade.Trade, len(order))
	for _, label := range order {
		t := trade.New(label, legs[label], s.currentCycle, view.Tick(), view.TickIndex(), prices[label])
		s.positions[label] = t
		filled[label] = t
		log.Debugf(log.Strategy, "filled %q %s %d @ %v cycle %d",
			label, legs[label].Side, legs[label].Qty, prices[label], s.currentCycle)
	}
	if s.state == Idle {
		s.state = Active
	}
	return filled, true, nil
}

// CloseTrade removes the labelled position and appends it to the closed-trade
// history. Unknown labels are a no-op. Stale prices are acceptable on exit; if
// no price exists at all the entry price is used so a forced close always
// completes
func (s *Strategy) CloseTrade(view data.Handler, label, reason string) (trade.Trade, bool) {
	t, ok := s.positions[label]
	if !ok {
		return trade.Trade{}, false
	}
	delete(s.positions, label)

	price, lag := view.Price(t.Instrument)
	if lag == data.NoData {
		log.Warnf(log.Strategy, "no exit price for %q at %v, falling back to entry price %v",
			label, view.Tick(), t.EntryPrice)
		price = t.EntryPrice
	}
	if err := t.Close(view.Tick(), view.TickIndex(), price, reason, s.costPct); err != nil {
		log.Errorf(log.Strategy, "close %q: %v", label, err)
	}
	s.closed = append(s.closed, *t)
	return *t, true
}

// CloseAll closes every open position. An empty slice, not an error, is
// returned when nothing is open
func (s *Strategy) CloseAll(view data.Handler, reason string) []trade.Trade {
	labels := s.OpenLabels()
	closed := make([]trade.Trade, 0, len(labels))
	for _, label := range labels {
		if t, ok := s.CloseTrade(view, label, reason); ok {
			closed = append(closed, t)
		}
	}
	return closed
}

// ForceCloseAll unconditionally closes all open positions at the end of day
// and makes Done absorbing for the rest of the day. Only the engine calls this
func (s *Strategy) ForceCloseAll(view data.Handler) []trade.Trade {
	closed := s.CloseAll(view, trade.ReasonEODForce)
	s.state = Done
	return closed
}

func (s *Strategy) cycleLimit() int64 {
	if s.maxCycles < 1 {
		return 1
	}
	return s.maxCycles
}

// completeCycle runs after a successful exit. Either the strategy has cycles
// left and returns to Idle under the next cycle, or it is Done for the day
func (s *Strategy) completeCycle() {
	if s.currentCycle < s.cycleLimit()-1 {
		s.positions = make(map[string]*trade.Trade)
		s.currentCycle++
		s.state = Idle
		log.Debugf(log.Strategy, "cycle complete, starting cycle %d", s.currentCycle)
		return
	}
	s.state = Done
}

// OnAdjust is an optional hook, defaulting to a no-op
func (s *Strategy) OnAdjust(_ data.Handler) error {
	return nil
}

// OnExitCondition is an optional hook, defaulting to never exiting
func (s *Strategy) OnExitCondition(_ data.Handler) (bool, error) {
	return false, nil
}

// OnExit is an optional hook, defaulting to closing every open position
func (s *Strategy) OnExit(view data.Handler) error {
	s.CloseAll(view, trade.ReasonStrategyExit)
	return nil
}

// OnDayEnd is an optional hook, defaulting to a no-op
func (s *Strategy) OnDayEnd(_ data.Handler) error {
	return nil
}

// SetCustomSettings rejects any custom settings; strategies supporting them
// override this
func (s *Strategy) SetCustomSettings(settings map[string]any) error {
	if len(settings) > 0 {
		return ErrCustomSettingsUnsupported
	}
	return nil
}

// ProcessTick drives one tick of the strategy's state machine. Idle scans for
// an entry, Active adjusts then evaluates the exit, Done absorbs. Hook errors
// are never swallowed; a buggy strategy stops the run
func ProcessTick(h Handler, view data.Handler) error {
	if h == nil || view == nil {
		return common.ErrNilArguments
	}
	s := h.GetStrategy()
	switch s.state {
	case Done:
		return nil
	case Idle:
		enter, err := h.CanEnter(view)
		if err != nil {
			return err
		}
		if !enter {
			return nil
		}
		// a fill inside OnEntry transitions to Active; no fill leaves the
		// state Idle so the entry retries next tick
		return h.OnEntry(view)
	case Active:
		// adjust always runs first, even on the tick that triggers the exit
		if err := h.OnAdjust(view); err != nil {
			return err
		}
		exit, err := h.OnExitCondition(view)
		if err != nil {
			return err
		}
		if !exit {
			return nil
		}
		if err = h.OnExit(view); err != nil {
			return err
		}
		s.completeCycle()
	}
	return nil
}
