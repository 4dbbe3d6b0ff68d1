package session

import (
	"fmt"
	"time"

	// Embedded zone database so exchange time zones resolve on hosts without tzdata.
	_ "time/tzdata"

	"sessionTrader/internal/ports"
)

const dateLayout = "2006-01-02"

// Calendar is a set of trading days in an exchange time zone.
// Weekends and listed holidays are closed. When a known range is set, dates outside it
// cannot be classified.
type Calendar struct {
	name     string
	location *time.Location
	holidays map[string]struct{}
	first    string // inclusive, empty for unbounded
	last     string // inclusive, empty for unbounded
}

// NewCalendar builds a calendar. first and last bound the range the holiday list is known for;
// pass zero times for an unbounded calendar.
func NewCalendar(name string, location *time.Location, first, last time.Time, holidays []string) (*Calendar, error) {
	if location == nil {
		return nil, fmt.Errorf("calendar %s: location is required: %w", name, ports.ErrConfigurationInvalid)
	}
	c := &Calendar{
		name:     name,
		location: location,
		holidays: make(map[string]struct{}, len(holidays)),
	}
	if !first.IsZero() {
		c.first = first.Format(dateLayout)
	}
	if !last.IsZero() {
		c.last = last.Format(dateLayout)
	}
	if c.first != "" && c.last != "" && c.first > c.last {
		return nil, fmt.Errorf("calendar %s: range start %s after end %s: %w", name, c.first, c.last, ports.ErrConfigurationInvalid)
	}
	for _, h := range holidays {
		d, err := time.ParseInLocation(dateLayout, h, location)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: invalid holiday %q: %w", name, h, ports.ErrConfigurationInvalid)
		}
		c.holidays[d.Format(dateLayout)] = struct{}{}
	}
	return c, nil
}

// Weekdays is an unbounded calendar closed only on weekends.
func Weekdays(location *time.Location) *Calendar {
	c, _ := NewCalendar("weekdays", location, time.Time{}, time.Time{}, nil)
	return c
}

// Name returns the calendar name.
func (c *Calendar) Name() string {
	return c.name
}

// Location returns the exchange time zone.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// IsTradingDay reports whether the exchange-local date of t is a business day.
// It returns ErrUnresolvableSession for zero timestamps and dates outside the known range.
func (c *Calendar) IsTradingDay(t time.Time) (bool, error) {
	if t.IsZero() {
		return false, fmt.Errorf("calendar %s: zero timestamp: %w", c.name, ports.ErrUnresolvableSession)
	}
	local := t.In(c.location)
	day := local.Format(dateLayout)
	if (c.first != "" && day < c.first) || (c.last != "" && day > c.last) {
		return false, fmt.Errorf("calendar %s: %s outside known range [%s, %s]: %w", c.name, day, c.first, c.last, ports.ErrUnresolvableSession)
	}
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}
	_, holiday := c.holidays[day]
	return !holiday, nil
}

// Status classifies t at day granularity: open on trading days, closed otherwise.
func (c *Calendar) Status(t time.Time) Status {
	ok, err := c.IsTradingDay(t)
	if err != nil {
		return StatusUnknown
	}
	if ok {
		return StatusOpen
	}
	return StatusClosed
}
