package session

import (
	"fmt"
	"time"

	"sessionTrader/internal/ports"
)

const clockLayout = "15:04"

// Exchange gates trading to an intraday window [open, close) on calendar trading days,
// both read in the calendar's time zone.
type Exchange struct {
	calendar *Calendar
	open     time.Duration // offset from local midnight
	close    time.Duration
}

// NewExchange builds an exchange session gate. open and close use the "15:04" layout.
func NewExchange(calendar *Calendar, open, close string) (*Exchange, error) {
	if calendar == nil {
		return nil, fmt.Errorf("exchange session: calendar is required: %w", ports.ErrConfigurationInvalid)
	}
	o, err := parseClock(open)
	if err != nil {
		return nil, err
	}
	c, err := parseClock(close)
	if err != nil {
		return nil, err
	}
	if o >= c {
		return nil, fmt.Errorf("exchange session: open %s must be before close %s: %w", open, close, ports.ErrConfigurationInvalid)
	}
	return &Exchange{calendar: calendar, open: o, close: c}, nil
}

// Calendar returns the underlying trading-day calendar.
func (e *Exchange) Calendar() *Calendar {
	return e.calendar
}

// IsSessionOpen reports whether the local time of day of t lies in [open, close).
func (e *Exchange) IsSessionOpen(t time.Time) bool {
	local := t.In(e.calendar.location)
	// Wall-clock offset, so DST transition days still compare against local session times.
	tod := time.Duration(local.Hour())*time.Hour +
		time.Duration(local.Minute())*time.Minute +
		time.Duration(local.Second())*time.Second +
		time.Duration(local.Nanosecond())
	return tod >= e.open && tod < e.close
}

// Status is open only on a trading day inside the session window.
func (e *Exchange) Status(t time.Time) Status {
	ok, err := e.calendar.IsTradingDay(t)
	if err != nil {
		return StatusUnknown
	}
	if !ok || !e.IsSessionOpen(t) {
		return StatusClosed
	}
	return StatusOpen
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid session time %q (want HH:MM): %w", s, ports.ErrConfigurationInvalid)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}
