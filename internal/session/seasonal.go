package session

import (
	"fmt"
	"time"

	"sessionTrader/internal/ports"
)

// MonthDay is a calendar day without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// ParseMonthDay parses "MM-DD".
func ParseMonthDay(s string) (MonthDay, error) {
	// 2000 is a leap year, so "02-29" parses.
	t, err := time.Parse("2006-01-02", "2000-"+s)
	if err != nil {
		return MonthDay{}, fmt.Errorf("invalid month-day %q (want MM-DD): %w", s, ports.ErrConfigurationInvalid)
	}
	return MonthDay{Month: t.Month(), Day: t.Day()}, nil
}

func (m MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(m.Month), m.Day)
}

func (m MonthDay) ordinal() int {
	return int(m.Month)*100 + m.Day
}

// Seasonal narrows an inner gate to a yearly window of dates, inclusive at both ends.
// A window whose start is after its end wraps the year boundary (e.g. 12-20 to 01-05).
// The inner gate is consulted first; an Unknown or Closed inner status passes through.
// Dates are read in Location when set, otherwise in the timestamp's own zone.
type Seasonal struct {
	Inner    Gate
	Start    MonthDay
	End      MonthDay
	Location *time.Location
}

// NewSeasonal composes inner with a window given as "MM-DD" strings.
// When inner is a Calendar or Exchange, the window follows its exchange-local date.
func NewSeasonal(inner Gate, start, end string) (*Seasonal, error) {
	if inner == nil {
		return nil, fmt.Errorf("seasonal window: inner gate is required: %w", ports.ErrConfigurationInvalid)
	}
	s, err := ParseMonthDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseMonthDay(end)
	if err != nil {
		return nil, err
	}
	return &Seasonal{Inner: inner, Start: s, End: e, Location: gateLocation(inner)}, nil
}

func gateLocation(g Gate) *time.Location {
	switch v := g.(type) {
	case *Calendar:
		return v.Location()
	case *Exchange:
		return v.Calendar().Location()
	}
	return nil
}

// Contains reports whether the date of t is inside the window.
func (s *Seasonal) Contains(t time.Time) bool {
	if s.Location != nil {
		t = t.In(s.Location)
	}
	day := MonthDay{Month: t.Month(), Day: t.Day()}.ordinal()
	start, end := s.Start.ordinal(), s.End.ordinal()
	if start <= end {
		return day >= start && day <= end
	}
	return day >= start || day <= end
}

func (s *Seasonal) Status(t time.Time) Status {
	inner := s.Inner.Status(t)
	if inner != StatusOpen {
		return inner
	}
	if !s.Contains(t) {
		return StatusClosed
	}
	return StatusOpen
}
