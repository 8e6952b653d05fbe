package common

import "errors"

const (
	// SimpleDateFormat is the format trading days are expressed in
	SimpleDateFormat = "2006-01-02"
	// SimpleTimeFormat is the format ticks are expressed in logs and config
	SimpleTimeFormat = "2006-01-02 15:04:05"
)

var (
	// ErrNilArguments is a common error response to highlight that nils were passed in
	// when they should not have been
	ErrNilArguments = errors.New("received nil argument(s)")
	// ErrNilStrategy is returned when a run is attempted without a strategy registered
	ErrNilStrategy = errors.New("no strategy registered")
	// ErrNilDataSource is returned when a component requiring a data source receives none
	ErrNilDataSource = errors.New("no data source supplied")
	// ErrStartAfterEnd is returned when a date range is reversed
	ErrStartAfterEnd = errors.New("start date is after end date")
)
