package base

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
	"github.com/quanttoolbox/optionsbacktester/trade"
)

// State is the strategy's position in its daily lifecycle
type State int8

const (
	// Idle means the strategy is scanning for an entry
	Idle State = iota
	// Active means the strategy holds at least one open leg
	Active
	// Done is terminal for the remainder of the day
	Done
)

var (
	// ErrNoLegs is returned when a fill is attempted with nothing to fill
	ErrNoLegs = errors.New("no legs to fill")
	// ErrDuplicateLabel is returned when one fill call derives the same label twice
	ErrDuplicateLabel = errors.New("duplicate label in fill request")
	// ErrLabelAlreadyOpen is returned when a requested label is already an open position.
	// The caller must close or relabel first, otherwise the all-or-nothing guarantee
	// would be corrupted
	ErrLabelAlreadyOpen = errors.New("label already open")
	// ErrInvalidCustomSettings is returned when bad custom settings are found in the config
	ErrInvalidCustomSettings = errors.New("invalid custom settings in config")
	// ErrCustomSettingsUnsupported is returned when custom settings are found in the
	// config when they shouldn't be
	ErrCustomSettingsUnsupported = errors.New("custom settings not supported")
)

// Handler is the full strategy surface the engine drives. Required hooks are
// OnDayStart, CanEnter and OnEntry; embedding Strategy supplies defaults for
// the rest along with the position ledger and fill primitives
type Handler interface {
	Name() string
	Description() string
	SetDefaults()
	SetCustomSettings(map[string]any) error

	OnDayStart(date time.Time, view data.PreOpen) (bool, error)
	CanEnter(view data.Handler) (bool, error)
	OnEntry(view data.Handler) error
	OnAdjust(view data.Handler) error
	OnExitCondition(view data.Handler) (bool, error)
	OnExit(view data.Handler) error
	OnDayEnd(view data.Handler) error

	GetStrategy() *Strategy
}

// Strategy is the base every strategy embeds. It owns the open-position map,
// the closed-trade history, the cycle counter and the day state; nothing else
// mutates them
type Strategy struct {
	positions    map[string]*trade.Trade
	closed       []trade.Trade
	pending      []instrument.Leg
	currentCycle int64
	state        State

	maxCycles int64
	costPct   decimal.Decimal
}
