package instrument

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate checks the option type is a known value
func (o OptionType) Validate() error {
	switch o {
	case Call, Put:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOptionType, string(o))
	}
}

// Validate checks the side is a known value
func (s Side) Validate() error {
	switch s {
	case Buy, Sell:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSide, string(s))
	}
}

// Direction returns the PnL multiplier for the side, +1 for buys and -1 for sells
func (s Side) Direction() decimal.Decimal {
	if s == Sell {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// New returns an Instrument for the given strike and option type
func New(strike int64, optionType OptionType) Instrument {
	return Instrument{Strike: strike, OptionType: optionType}
}

// Key returns the canonical string identity, eg "23400CE"
func (i Instrument) Key() string {
	return fmt.Sprintf("%d%s", i.Strike, i.OptionType)
}

// Validate checks the instrument fields
func (i Instrument) Validate() error {
	return i.OptionType.Validate()
}

// NewLeg returns a Leg for the instrument. A qty of zero defaults to one
func NewLeg(i Instrument, side Side, qty int64) Leg {
	if qty == 0 {
		qty = 1
	}
	return Leg{Instrument: i, Side: side, Qty: qty}
}

// Validate checks the leg fields
func (l Leg) Validate() error {
	if err := l.Instrument.Validate(); err != nil {
		return err
	}
	if err := l.Side.Validate(); err != nil {
		return err
	}
	if l.Qty <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQty, l.Qty)
	}
	return nil
}
