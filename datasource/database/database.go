// Package database provides a data.Source backed by sqlite3 or postgres,
// one row per tick, queried a full day at a time
package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	// database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/quanttoolbox/optionsbacktester/common"
	"github.com/quanttoolbox/optionsbacktester/data"
	"github.com/quanttoolbox/optionsbacktester/instrument"
)

// Connect opens and pings the configured database
func Connect(cfg *Config) (*Source, error) {
	if cfg == nil {
		return nil, common.ErrNilArguments
	}
	if cfg.DSN == "" {
		return nil, ErrNoDSN
	}
	if cfg.Symbol == "" {
		return nil, ErrNoSymbol
	}
	var driverName string
	switch cfg.Driver {
	case DBSQLite:
		driverName = "sqlite3"
	case DBPostgres:
		driverName = "postgres"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}
	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}
	return &Source{db: db, driver: cfg.Driver, symbol: cfg.Symbol}, nil
}

// Close releases the underlying connection pool
func (s *Source) Close() error {
	return s.db.Close()
}

// rebind converts ? placeholders to the $n form postgres expects
func (s *Source) rebind(query string) string {
	if s.driver != DBPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// UnderlyingData returns the full-day underlying series in ascending tick order
func (s *Source) UnderlyingData(date time.Time) ([]data.PricePoint, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT tick, price FROM underlying_prices
		 WHERE symbol = ? AND trade_date = ? ORDER BY tick ASC`),
		s.symbol, date.Format(common.SimpleDateFormat))
	if err != nil {
		return nil, errors.Wrap(err, "query underlying_prices")
	}
	defer rows.Close()

	var resp []data.PricePoint
	for rows.Next() {
		var rawTick, rawPrice any
		if err = rows.Scan(&rawTick, &rawPrice); err != nil {
			return nil, errors.Wrap(err, "scan underlying_prices")
		}
		tick, err := toTime(rawTick)
		if err != nil {
			return nil, err
		}
		price, err := toDecimal(rawPrice)
		if err != nil {
			return nil, err
		}
		resp = append(resp, data.PricePoint{Tick: tick, Price: price})
	}
	return resp, rows.Err()
}

// InstrumentData returns the instrument's full-day OHLCV series in ascending
// tick order. Causality is the caller's concern; no time window is applied
func (s *Source) InstrumentData(date time.Time, i instrument.Instrument) ([]data.BarPoint, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT tick, open, high, low, close, volume FROM option_bars
		 WHERE symbol = ? AND trade_date = ? AND strike = ? AND option_type = ?
		 ORDER BY tick ASC`),
		s.symbol, date.Format(common.SimpleDateFormat), i.Strike, string(i.OptionType))
	if err != nil {
		return nil, errors.Wrap(err, "query option_bars")
	}
	defer rows.Close()

	var resp []data.BarPoint
	for rows.Next() {
		var rawTick, rawOpen, rawHigh, rawLow, rawClose any
		var volume int64
		if err = rows.Scan(&rawTick, &rawOpen, &rawHigh, &rawLow, &rawClose, &volume); err != nil {
			return nil, errors.Wrap(err, "scan option_bars")
		}
		tick, err := toTime(rawTick)
		if err != nil {
			return nil, err
		}
		var bar data.Bar
		bar.Volume = volume
		if bar.Open, err = toDecimal(rawOpen); err != nil {
			return nil, err
		}
		if bar.High, err = toDecimal(rawHigh); err != nil {
			return nil, err
		}
		if bar.Low, err = toDecimal(rawLow); err != nil {
			return nil, err
		}
		if bar.Close, err = toDecimal(rawClose); err != nil {
			return nil, err
		}
		resp = append(resp, data.BarPoint{Tick: tick, Bar: bar})
	}
	return resp, rows.Err()
}

// AvailableDates returns every trading day with underlying data, ascending
func (s *Source) AvailableDates() ([]time.Time, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT DISTINCT trade_date FROM underlying_prices
		 WHERE symbol = ? ORDER BY trade_date ASC`),
		s.symbol)
	if err != nil {
		return nil, errors.Wrap(err, "query trade dates")
	}
	defer rows.Close()

	var resp []time.Time
	for rows.Next() {
		var raw any
		if err = rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "scan trade dates")
		}
		date, err := toTime(raw)
		if err != nil {
			return nil, err
		}
		resp = append(resp, common.Midnight(date))
	}
	return resp, rows.Err()
}

// Expiries returns the expiry dates visible on a trading day
func (s *Source) Expiries(date time.Time) ([]time.Time, error) {
	rows, err := s.db.Query(s.rebind(
		`SELECT expiry FROM expiries
		 WHERE symbol = ? AND trade_date = ? ORDER BY expiry ASC`),
		s.symbol, date.Format(common.SimpleDateFormat))
	if err != nil {
		return nil, errors.Wrap(err, "query expiries")
	}
	defer rows.Close()

	var resp []time.Time
	for rows.Next() {
		var raw any
		if err = rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "scan expiries")
		}
		expiry, err := toTime(raw)
		if err != nil {
			return nil, err
		}
		resp = append(resp, common.Midnight(expiry))
	}
	return resp, rows.Err()
}

var timeLayouts = []string{
	time.RFC3339,
	common.SimpleTimeFormat,
	common.SimpleDateFormat,
}

// toTime coerces the driver-specific representations of timestamps. sqlite
// hands back strings, postgres hands back time.Time
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	default:
		return time.Time{}, errors.Errorf("cannot interpret %T as time", v)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("cannot parse %q as time", s)
}

// toDecimal coerces the driver-specific representations of numerics
func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case []byte:
		return decimal.NewFromString(string(n))
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, errors.Errorf("cannot interpret %T as decimal", v)
	}
}
