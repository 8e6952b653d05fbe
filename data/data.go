package data

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
	"github.com/quanttoolbox/optionsbacktester/log"
)

// NewSession creates an empty day cache over the supplied source
func NewSession(source Source) (*Session, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	s := &Session{source: source}
	s.Reset()
	return s, nil
}

// Reset clears every cached series. Nothing survives into the next day
func (s *Session) Reset() {
	s.date = time.Time{}
	s.clock = nil
	s.underlyingTicks = nil
	s.underlying = make(map[time.Time]decimal.Decimal)
	s.bars = make(map[instrument.Instrument]map[time.Time]Bar)
	s.fetched = make(map[instrument.Instrument]struct{})
	s.expiries = nil
	s.expiriesLoaded = false
}

// StartDay reseeds the cache for a new trading day. The full underlying
// series is loaded up front so strategy callbacks can always resolve ATM,
// and the clock defaults to the underlying's tick labels
func (s *Session) StartDay(date time.Time) error {
	s.Reset()
	s.date = date
	points, err := s.source.UnderlyingData(date)
	if err != nil {
		return err
	}
	s.underlyingTicks = make([]time.Time, 0, len(points))
	for i := range points {
		s.underlyingTicks = append(s.underlyingTicks, points[i].Tick)
		s.underlying[points[i].Tick] = points[i].Price
	}
	s.clock = s.underlyingTicks
	return nil
}

// SetClock replaces the day's clock with an externally supplied one
func (s *Session) SetClock(ticks []time.Time) {
	s.clock = ticks
}

// Clock returns the day's tick labels in replay order
func (s *Session) Clock() []time.Time {
	return s.clock
}

// Date returns the trading day the cache is seeded for
func (s *Session) Date() time.Time {
	return s.date
}

// PreOpenView returns the capability-restricted view used before the clock starts
func (s *Session) PreOpenView() PreOpen {
	return &preOpenView{session: s}
}

// IntradayView returns the cursor-bound view. The cursor starts before the
// first tick; the engine advances it once per loop iteration
func (s *Session) IntradayView() *Intraday {
	return &Intraday{session: s, index: -1}
}

// instrumentSeries returns the cached day series for an instrument, fetching
// it from the source exactly once per day regardless of how many ticks query
// it. Source failures are logged and treated as the instrument having no data
func (s *Session) instrumentSeries(i instrument.Instrument) map[time.Time]Bar {
	if _, ok := s.fetched[i]; ok {
		return s.bars[i]
	}
	s.fetched[i] = struct{}{}
	points, err := s.source.InstrumentData(s.date, i)
	if err != nil {
		log.Errorf(log.Data, "fetch %v for %v failed: %v", i.Key(), s.date.Format("2006-01-02"), err)
		points = nil
	}
	series := make(map[time.Time]Bar, len(points))
	for j := range points {
		series[points[j].Tick] = points[j].Bar
	}
	s.bars[i] = series
	return series
}

// barAt scans the clock backward from idx for the nearest bar at or before it
func (s *Session) barAt(i instrument.Instrument, idx int) (Bar, int) {
	if idx < 0 || idx >= len(s.clock) {
		return Bar{}, NoData
	}
	series := s.instrumentSeries(i)
	if len(series) == 0 {
		return Bar{}, NoData
	}
	for lag := 0; lag <= idx; lag++ {
		if bar, ok := series[s.clock[idx-lag]]; ok {
			return bar, lag
		}
	}
	return Bar{}, NoData
}

// spotAt scans the clock backward from idx for the nearest underlying price
func (s *Session) spotAt(idx int) (decimal.Decimal, int) {
	if idx < 0 || idx >= len(s.clock) || len(s.underlying) == 0 {
		return decimal.Zero, NoData
	}
	for lag := 0; lag <= idx; lag++ {
		if price, ok := s.underlying[s.clock[idx-lag]]; ok {
			return price, lag
		}
	}
	return decimal.Zero, NoData
}

// firstSpot resolves the day's first available underlying tick
func (s *Session) firstSpot() (decimal.Decimal, bool) {
	if len(s.underlyingTicks) == 0 {
		return decimal.Zero, false
	}
	price, ok := s.underlying[s.underlyingTicks[0]]
	return price, ok
}

func (s *Session) dayExpiries() []time.Time {
	if !s.expiriesLoaded {
		s.expiriesLoaded = true
		expiries, err := s.source.Expiries(s.date)
		if err != nil {
			log.Errorf(log.Data, "expiries for %v failed: %v", s.date.Format("2006-01-02"), err)
			expiries = nil
		}
		s.expiries = expiries
	}
	return s.expiries
}

func atmStrike(spot decimal.Decimal, step int64) int64 {
	if step <= 0 {
		return 0
	}
	d := decimal.NewFromInt(step)
	return spot.Div(d).Round(0).Mul(d).IntPart()
}

type preOpenView struct {
	session *Session
}

// Date returns the trading day
func (v *preOpenView) Date() time.Time {
	return v.session.date
}

// Spot resolves to the day's first available underlying tick
func (v *preOpenView) Spot() (decimal.Decimal, bool) {
	return v.session.firstSpot()
}

// ATM returns the spot rounded to the nearest strike step, or 0 when no
// spot is resolvable
func (v *preOpenView) ATM(step int64) int64 {
	spot, ok := v.Spot()
	if !ok {
		return 0
	}
	return atmStrike(spot, step)
}

// Prefetch eagerly loads an instrument's day series. It is a performance
// hint only and a no-op on cache hit
func (v *preOpenView) Prefetch(i instrument.Instrument) {
	v.session.instrumentSeries(i)
}

// Expiries returns the expiry dates available on the trading day
func (v *preOpenView) Expiries() []time.Time {
	return v.session.dayExpiries()
}

// Advance moves the cursor to the given clock index. The view is mutated in
// place to avoid a per-tick allocation; only the engine may call this
func (v *Intraday) Advance(index int) {
	v.index = index
}

// Date returns the trading day
func (v *Intraday) Date() time.Time {
	return v.session.date
}

// Tick returns the tick the cursor is bound to
func (v *Intraday) Tick() time.Time {
	if v.index < 0 || v.index >= len(v.session.clock) {
		return time.Time{}
	}
	return v.session.clock[v.index]
}

// TickIndex returns the cursor's position on the clock
func (v *Intraday) TickIndex() int {
	return v.index
}

// Spot returns the underlying price at or before the cursor
func (v *Intraday) Spot() (decimal.Decimal, bool) {
	price, lag := v.session.spotAt(v.index)
	return price, lag != NoData
}

// ATM returns the spot rounded to the nearest strike step, or 0 when no
// spot is resolvable
func (v *Intraday) ATM(step int64) int64 {
	spot, ok := v.Spot()
	if !ok {
		return 0
	}
	return atmStrike(spot, step)
}

// Prefetch eagerly loads an instrument's day series. It is a performance
// hint only and a no-op on cache hit
func (v *Intraday) Prefetch(i instrument.Instrument) {
	v.session.instrumentSeries(i)
}

// Expiries returns the expiry dates available on the trading day
func (v *Intraday) Expiries() []time.Time {
	return v.session.dayExpiries()
}

// Price returns the instrument's close price at or before the cursor along
// with the lag in ticks. Lag 0 is live, greater is fill-forward, NoData means
// nothing exists at or before the cursor. It never errors
func (v *Intraday) Price(i instrument.Instrument) (decimal.Decimal, int) {
	bar, lag := v.session.barAt(i, v.index)
	if lag == NoData {
		return decimal.Zero, NoData
	}
	return bar.Close, lag
}

// Bar returns the instrument's OHLCV bar at or before the cursor along with
// the lag in ticks. It never errors
func (v *Intraday) Bar(i instrument.Instrument) (Bar, int) {
	return v.session.barAt(i, v.index)
}
