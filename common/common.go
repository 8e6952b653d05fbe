package common

import "time"

// Midnight truncates t to the start of its day in UTC, the canonical
// representation of a trading day throughout the backtester
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithinRange reports whether d falls within [start, end] inclusive.
// A zero start or end leaves that side unbounded
func WithinRange(d, start, end time.Time) bool {
	if !start.IsZero() && d.Before(start) {
		return false
	}
	if !end.IsZero() && d.After(end) {
		return false
	}
	return true
}
