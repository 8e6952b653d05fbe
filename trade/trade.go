package trade

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
)

var oneHundred = decimal.NewFromInt(100)

// New creates an open trade from a filled leg
func New(label string, leg instrument.Leg, cycle int64, tick time.Time, tickIndex int, price decimal.Decimal) *Trade {
	id, _ := uuid.NewV4()
	return &Trade{
		ID:         id,
		Label:      label,
		Instrument: leg.Instrument,
		Side:       leg.Side,
		Qty:        leg.Qty,
		Cycle:      cycle,
		EntryTick:  tick,
		EntryIndex: tickIndex,
		EntryPrice: price,
		Metadata:   make(map[string]any),
	}
}

// IsOpen reports whether the trade has not yet been closed
func (t *Trade) IsOpen() bool {
	return t.ExitTick.IsZero()
}

// Close records the exit and computes PnL. The trade is immutable afterwards
func (t *Trade) Close(tick time.Time, tickIndex int, price decimal.Decimal, reason string, costPct decimal.Decimal) error {
	if !t.IsOpen() {
		return ErrAlreadyClosed
	}
	t.ExitTick = tick
	t.ExitIndex = tickIndex
	t.ExitPrice = price
	t.ExitReason = reason

	qty := decimal.NewFromInt(t.Qty)
	t.GrossPnL = price.Sub(t.EntryPrice).Mul(qty).Mul(t.Side.Direction())
	t.TransactionCost = transactionCost(t.EntryPrice, qty, costPct).
		Add(transactionCost(price, qty, costPct))
	t.NetPnL = t.GrossPnL.Sub(t.TransactionCost)
	return nil
}

func transactionCost(price, qty, costPct decimal.Decimal) decimal.Decimal {
	return price.Mul(qty).Mul(costPct).Div(oneHundred).Abs()
}
