package instrument

import "errors"

// OptionType distinguishes calls from puts
type OptionType string

const (
	// Call option
	Call OptionType = "CE"
	// Put option
	Put OptionType = "PE"
)

// Side is the direction of an order intent
type Side string

const (
	// Buy side
	Buy Side = "BUY"
	// Sell side
	Sell Side = "SELL"
)

var (
	// ErrInvalidOptionType is returned when an option type is neither CE nor PE
	ErrInvalidOptionType = errors.New("invalid option type")
	// ErrInvalidSide is returned when a side is neither BUY nor SELL
	ErrInvalidSide = errors.New("invalid side")
	// ErrInvalidQty is returned when a leg quantity is zero or negative
	ErrInvalidQty = errors.New("quantity must be positive")
)

// Instrument identifies a single option contract by strike and type.
// It is immutable and comparable, so it can be used directly as a map key
type Instrument struct {
	Strike     int64
	OptionType OptionType
}

// Leg is an unexecuted order intent
type Leg struct {
	Instrument Instrument
	Side       Side
	Qty        int64
}
