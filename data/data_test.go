package data

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/instrument"
)

var testDay = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func tick(minute int) time.Time {
	return testDay.Add(9*time.Hour + 15*time.Minute + time.Duration(minute)*time.Minute)
}

type fakeSource struct {
	underlying      []PricePoint
	instruments     map[instrument.Instrument][]BarPoint
	instrumentCalls map[instrument.Instrument]int
	expiries        []time.Time
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		instruments:     make(map[instrument.Instrument][]BarPoint),
		instrumentCalls: make(map[instrument.Instrument]int),
	}
}

func (f *fakeSource) UnderlyingData(_ time.Time) ([]PricePoint, error) {
	return f.underlying, nil
}

func (f *fakeSource) InstrumentData(_ time.Time, i instrument.Instrument) ([]BarPoint, error) {
	f.instrumentCalls[i]++
	return f.instruments[i], nil
}

func (f *fakeSource) AvailableDates() ([]time.Time, error) {
	return []time.Time{testDay}, nil
}

func (f *fakeSource) Expiries(_ time.Time) ([]time.Time, error) {
	return f.expiries, nil
}

func closeBar(c float64) Bar {
	d := decimal.NewFromFloat(c)
	return Bar{Open: d, High: d, Low: d, Close: d, Volume: 100}
}

func seededSession(t *testing.T) (*Session, *fakeSource) {
	t.Helper()
	src := newFakeSource()
	src.underlying = []PricePoint{
		{Tick: tick(0), Price: decimal.NewFromFloat(23390)},
		{Tick: tick(1), Price: decimal.NewFromFloat(23410)},
		{Tick: tick(2), Price: decimal.NewFromFloat(23425)},
		{Tick: tick(3), Price: decimal.NewFromFloat(23380)},
	}
	ce := instrument.New(23400, instrument.Call)
	src.instruments[ce] = []BarPoint{
		{Tick: tick(0), Bar: closeBar(102)},
		{Tick: tick(2), Bar: closeBar(106)},
	}
	s, err := NewSession(src)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.StartDay(testDay); err != nil {
		t.Fatal(err)
	}
	return s, src
}

func TestNewSessionNilSource(t *testing.T) {
	t.Parallel()
	if _, err := NewSession(nil); err != ErrNilSource {
		t.Errorf("received '%v' expected '%v'", err, ErrNilSource)
	}
}

func TestStartDayDerivesClock(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	if len(s.Clock()) != 4 {
		t.Fatalf("received '%v' expected '%v'", len(s.Clock()), 4)
	}
	if !s.Clock()[0].Equal(tick(0)) {
		t.Errorf("received '%v' expected '%v'", s.Clock()[0], tick(0))
	}
}

func TestPreOpenSpotAndATM(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	v := s.PreOpenView()
	spot, ok := v.Spot()
	if !ok {
		t.Fatal("expected pre-open spot to resolve")
	}
	if !spot.Equal(decimal.NewFromFloat(23390)) {
		t.Errorf("received '%v' expected '%v'", spot, 23390)
	}
	if v.ATM(50) != 23400 {
		t.Errorf("received '%v' expected '%v'", v.ATM(50), 23400)
	}
	if v.ATM(0) != 0 {
		t.Errorf("received '%v' expected '%v'", v.ATM(0), 0)
	}
}

func TestPreOpenSpotEmptyDay(t *testing.T) {
	t.Parallel()
	s, err := NewSession(newFakeSource())
	if err != nil {
		t.Fatal(err)
	}
	if err = s.StartDay(testDay); err != nil {
		t.Fatal(err)
	}
	v := s.PreOpenView()
	if _, ok := v.Spot(); ok {
		t.Error("expected no spot on an empty day")
	}
	if v.ATM(50) != 0 {
		t.Error("expected ATM 0 on an empty day")
	}
}

func TestPriceFillForward(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	v := s.IntradayView()
	ce := instrument.New(23400, instrument.Call)

	v.Advance(0)
	price, lag := v.Price(ce)
	if lag != 0 || !price.Equal(decimal.NewFromFloat(102)) {
		t.Errorf("received '%v' lag '%v' expected live 102", price, lag)
	}

	// no bar at 09:16, previous close carries forward
	v.Advance(1)
	price, lag = v.Price(ce)
	if lag != 1 || !price.Equal(decimal.NewFromFloat(102)) {
		t.Errorf("received '%v' lag '%v' expected 102 at lag 1", price, lag)
	}

	v.Advance(2)
	price, lag = v.Price(ce)
	if lag != 0 || !price.Equal(decimal.NewFromFloat(106)) {
		t.Errorf("received '%v' lag '%v' expected live 106", price, lag)
	}
}

func TestPriceNeverReadsAhead(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.underlying = []PricePoint{
		{Tick: tick(0), Price: decimal.NewFromFloat(23390)},
		{Tick: tick(1), Price: decimal.NewFromFloat(23410)},
	}
	pe := instrument.New(23400, instrument.Put)
	// data exists only at the second tick
	src.instruments[pe] = []BarPoint{{Tick: tick(1), Bar: closeBar(98)}}
	s, err := NewSession(src)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.StartDay(testDay); err != nil {
		t.Fatal(err)
	}
	v := s.IntradayView()
	v.Advance(0)
	if _, lag := v.Price(pe); lag != NoData {
		t.Errorf("received lag '%v' expected '%v'", lag, NoData)
	}
	v.Advance(1)
	if _, lag := v.Price(pe); lag != 0 {
		t.Errorf("received lag '%v' expected '%v'", lag, 0)
	}
}

func TestPriceIdempotent(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	v := s.IntradayView()
	ce := instrument.New(23400, instrument.Call)
	v.Advance(1)
	p1, l1 := v.Price(ce)
	p2, l2 := v.Price(ce)
	if !p1.Equal(p2) || l1 != l2 {
		t.Errorf("received (%v,%v) then (%v,%v), expected identical results", p1, l1, p2, l2)
	}
}

func TestUnknownInstrument(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	v := s.IntradayView()
	v.Advance(3)
	if _, lag := v.Price(instrument.New(99999, instrument.Call)); lag != NoData {
		t.Errorf("received lag '%v' expected '%v'", lag, NoData)
	}
	if _, lag := v.Bar(instrument.New(99999, instrument.Call)); lag != NoData {
		t.Errorf("received lag '%v' expected '%v'", lag, NoData)
	}
}

func TestSingleFetchPerInstrumentPerDay(t *testing.T) {
	t.Parallel()
	s, src := seededSession(t)
	v := s.IntradayView()
	ce := instrument.New(23400, instrument.Call)
	for i := 0; i < len(s.Clock()); i++ {
		v.Advance(i)
		v.Price(ce)
		v.Bar(ce)
	}
	if src.instrumentCalls[ce] != 1 {
		t.Errorf("received '%v' fetches expected '%v'", src.instrumentCalls[ce], 1)
	}
}

func TestPrefetch(t *testing.T) {
	t.Parallel()
	s, src := seededSession(t)
	ce := instrument.New(23400, instrument.Call)
	v := s.PreOpenView()
	v.Prefetch(ce)
	v.Prefetch(ce)
	if src.instrumentCalls[ce] != 1 {
		t.Errorf("received '%v' fetches expected '%v'", src.instrumentCalls[ce], 1)
	}
	iv := s.IntradayView()
	iv.Advance(0)
	iv.Price(ce)
	if src.instrumentCalls[ce] != 1 {
		t.Errorf("received '%v' fetches expected '%v'", src.instrumentCalls[ce], 1)
	}
}

func TestStartDayClearsPreviousDay(t *testing.T) {
	t.Parallel()
	s, src := seededSession(t)
	ce := instrument.New(23400, instrument.Call)
	v := s.IntradayView()
	v.Advance(0)
	v.Price(ce)

	nextDay := testDay.AddDate(0, 0, 1)
	src.underlying = nil
	src.instruments = make(map[instrument.Instrument][]BarPoint)
	if err := s.StartDay(nextDay); err != nil {
		t.Fatal(err)
	}
	if len(s.Clock()) != 0 {
		t.Error("expected an empty clock after reseeding with no data")
	}
	v2 := s.IntradayView()
	v2.Advance(0)
	if _, lag := v2.Price(ce); lag != NoData {
		t.Error("expected no data to leak across days")
	}
}

func TestSetClockOverride(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	override := []time.Time{tick(0), tick(2)}
	s.SetClock(override)
	if len(s.Clock()) != 2 {
		t.Fatalf("received '%v' expected '%v'", len(s.Clock()), 2)
	}
	v := s.IntradayView()
	v.Advance(1)
	if !v.Tick().Equal(tick(2)) {
		t.Errorf("received '%v' expected '%v'", v.Tick(), tick(2))
	}
}

func TestIntradaySpotBeforeAdvance(t *testing.T) {
	t.Parallel()
	s, _ := seededSession(t)
	v := s.IntradayView()
	if _, ok := v.Spot(); ok {
		t.Error("expected no spot before the cursor is advanced")
	}
	if _, lag := v.Price(instrument.New(23400, instrument.Call)); lag != NoData {
		t.Error("expected no price before the cursor is advanced")
	}
}

func TestExpiries(t *testing.T) {
	t.Parallel()
	src := newFakeSource()
	src.underlying = []PricePoint{{Tick: tick(0), Price: decimal.NewFromFloat(23390)}}
	src.expiries = []time.Time{testDay.AddDate(0, 0, 2)}
	s, err := NewSession(src)
	if err != nil {
		t.Fatal(err)
	}
	if err = s.StartDay(testDay); err != nil {
		t.Fatal(err)
	}
	if len(s.PreOpenView().Expiries()) != 1 {
		t.Error("expected one expiry")
	}
}
