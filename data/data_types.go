package data

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
)

// NoData is the lag value returned when no data exists at or before the cursor
const NoData = -1

var (
	// ErrNilSource is returned when a session is created without a data source
	ErrNilSource = errors.New("nil data source")
)

// PricePoint is one underlying tick
type PricePoint struct {
	Tick  time.Time
	Price decimal.Decimal
}

// Bar is one OHLCV candle for an option contract
type Bar struct {
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// BarPoint is one instrument tick
type BarPoint struct {
	Tick time.Time
	Bar  Bar
}

// Source supplies per-day, per-instrument series. Implementations must
// return tick-ascending slices and an empty slice, not an error, for
// unknown dates or instruments
type Source interface {
	UnderlyingData(date time.Time) ([]PricePoint, error)
	InstrumentData(date time.Time, i instrument.Instrument) ([]BarPoint, error)
	AvailableDates() ([]time.Time, error)
	Expiries(date time.Time) ([]time.Time, error)
}

// PreOpen is the market view handed to strategies before the clock starts.
// No per-instrument price lookup exists because there is no current tick yet
type PreOpen interface {
	Date() time.Time
	Spot() (decimal.Decimal, bool)
	ATM(step int64) int64
	Prefetch(i instrument.Instrument)
	Expiries() []time.Time
}

// Handler is the intraday market view handed to strategies. It is bound to
// the engine's cursor; every lookup keys off that cursor, so data from later
// ticks is unreachable no matter what is resident in the cache
type Handler interface {
	Date() time.Time
	Tick() time.Time
	TickIndex() int
	Spot() (decimal.Decimal, bool)
	ATM(step int64) int64
	Prefetch(i instrument.Instrument)
	Expiries() []time.Time
	Price(i instrument.Instrument) (decimal.Decimal, int)
	Bar(i instrument.Instrument) (Bar, int)
}

// Session is the per-day cache. It is owned by the engine, cleared and
// reseeded at the start of every day, and reachable from strategy code only
// through the PreOpen and Handler views
type Session struct {
	source Source
	date   time.Time

	clock           []time.Time
	underlyingTicks []time.Time
	underlying      map[time.Time]decimal.Decimal

	bars    map[instrument.Instrument]map[time.Time]Bar
	fetched map[instrument.Instrument]struct{}

	expiries       []time.Time
	expiriesLoaded bool
}

// Intraday is the concrete intraday view. Only the engine holds this type;
// strategies receive it as a Handler, which carries no cursor mutator
type Intraday struct {
	session *Session
	index   int
}
