// Package session decides whether trading is permitted at a given bar timestamp.
package session

import (
	"time"
)

// Status is the outcome of classifying a timestamp.
// The zero value is StatusUnknown so that an unclassified timestamp never permits trading.
type Status int

const (
	StatusUnknown Status = iota // timestamp could not be localized or is outside the calendar's range
	StatusClosed
	StatusOpen
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Gate classifies bar timestamps.
type Gate interface {
	Status(t time.Time) Status
}

// Active reports whether g permits trading at t.
func Active(g Gate, t time.Time) bool {
	return g != nil && g.Status(t) == StatusOpen
}

// Always permits trading at every well-formed timestamp.
type Always struct{}

func (Always) Status(t time.Time) Status {
	if t.IsZero() {
		return StatusUnknown
	}
	return StatusOpen
}

// Fixed returns the same status for every timestamp. Useful as a test double.
type Fixed Status

func (f Fixed) Status(time.Time) Status {
	return Status(f)
}

// Func adapts a function to the Gate interface.
type Func func(t time.Time) Status

func (f Func) Status(t time.Time) Status {
	return f(t)
}
