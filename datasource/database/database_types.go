package database

import (
	"database/sql"
	"errors"
)

const (
	// DBSQLite is the sqlite3 driver name accepted in config
	DBSQLite = "sqlite"
	// DBPostgres is the postgres driver name accepted in config
	DBPostgres = "postgres"
)

var (
	// ErrUnsupportedDriver is returned for a driver other than sqlite or postgres
	ErrUnsupportedDriver = errors.New("unsupported database driver")
	// ErrNoDSN is returned when no connection details are supplied
	ErrNoDSN = errors.New("no database dsn supplied")
	// ErrNoSymbol is returned when no underlying symbol is supplied
	ErrNoSymbol = errors.New("no underlying symbol supplied")
)

// Config describes the database connection and the underlying to load
type Config struct {
	Driver string `json:"driver" mapstructure:"driver"`
	DSN    string `json:"dsn" mapstructure:"dsn"`
	Symbol string `json:"symbol" mapstructure:"symbol"`
}

// Source is a data.Source backed by a SQL database holding one row per tick.
// Expected tables: underlying_prices(symbol, trade_date, tick, price),
// option_bars(symbol, trade_date, strike, option_type, tick, open, high,
// low, close, volume) and expiries(symbol, trade_date, expiry)
type Source struct {
	db     *sql.DB
	driver string
	symbol string
}
