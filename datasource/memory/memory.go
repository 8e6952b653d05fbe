// Package memory provides an in-memory data.Source. It backs tests and lets
// callers run a backtest over fixtures without standing up a database
package memory

import (
	"sort"
	"time"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
)

// Source holds per-day series keyed by trading day
type Source struct {
	days map[time.Time]*day
}

type day struct {
	underlying  []data.PricePoint
	instruments map[instrument.Instrument][]data.BarPoint
	expiries    []time.Time
}

// New returns an empty Source
func New() *Source {
	return &Source{days: make(map[time.Time]*day)}
}

func (s *Source) day(date time.Time) *day {
	date = common.Midnight(date)
	d, ok := s.days[date]
	if !ok {
		d = &day{instruments: make(map[instrument.Instrument][]data.BarPoint)}
		s.days[date] = d
	}
	return d
}

// AddUnderlying appends underlying ticks for a trading day. Points must be
// supplied in ascending tick order
func (s *Source) AddUnderlying(date time.Time, points ...data.PricePoint) {
	d := s.day(date)
	d.underlying = append(d.underlying, points...)
}

// AddInstrument appends option bars for a trading day. Points must be
// supplied in ascending tick order
func (s *Source) AddInstrument(date time.Time, i instrument.Instrument, points ...data.BarPoint) {
	d := s.day(date)
	d.instruments[i] = append(d.instruments[i], points...)
}

// SetExpiries sets the expiry dates visible on a trading day
func (s *Source) SetExpiries(date time.Time, expiries ...time.Time) {
	s.day(date).expiries = expiries
}

// UnderlyingData returns the day's underlying series, empty when unknown
func (s *Source) UnderlyingData(date time.Time) ([]data.PricePoint, error) {
	d, ok := s.days[common.Midnight(date)]
	if !ok {
		return nil, nil
	}
	return d.underlying, nil
}

// InstrumentData returns the instrument's full-day series, empty when unknown
func (s *Source) InstrumentData(date time.Time, i instrument.Instrument) ([]data.BarPoint, error) {
	d, ok := s.days[common.Midnight(date)]
	if !ok {
		return nil, nil
	}
	return d.instruments[i], nil
}

// AvailableDates returns every known trading day in ascending order
func (s *Source) AvailableDates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(s.days))
	for date := range s.days {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Expiries returns the expiry dates for a trading day, empty when unknown
func (s *Source) Expiries(date time.Time) ([]time.Time, error) {
	d, ok := s.days[common.Midnight(date)]
	if !ok {
		return nil, nil
	}
	return d.expiries, nil
}
