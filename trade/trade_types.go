package trade

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
)

const (
	// ReasonEODForce marks positions closed by the engine at the end of day
	ReasonEODForce = "EOD_FORCE"
	// ReasonStopLoss is a conventional reason strategies may use when a stop triggers
	ReasonStopLoss = "STOP_LOSS"
	// ReasonTarget is a conventional reason strategies may use when a target triggers
	ReasonTarget = "TARGET"
	// ReasonStrategyExit marks positions closed by the default exit hook
	ReasonStrategyExit = "STRATEGY_EXIT"
)

var (
	// ErrAlreadyClosed is returned when closing a trade twice
	ErrAlreadyClosed = errors.New("trade already closed")
)

// Trade is a filled position. It is created only by a successful fill,
// mutated only by Close, and immutable history once closed
type Trade struct {
	ID         uuid.UUID
	Label      string
	Instrument instrument.Instrument
	Side       instrument.Side
	Qty        int64
	Cycle      int64

	EntryTick  time.Time
	EntryIndex int
	EntryPrice decimal.Decimal

	ExitTick   time.Time
	ExitIndex  int
	ExitPrice  decimal.Decimal
	ExitReason string

	GrossPnL        decimal.Decimal
	TransactionCost decimal.Decimal
	NetPnL          decimal.Decimal

	Metadata map[string]any
}
