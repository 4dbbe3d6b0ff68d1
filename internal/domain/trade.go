package domain

import "time"

// Trade represents a completed round trip.
type Trade struct {
	ID          int64       // Unique identifier for the trade (usually from DB)
	RunID       string      // Backtest run that produced the trade
	PositionID  int64       // Position this trade closed
	Symbol      string      // Trading symbol
	EntryPrice  float64     // Price at which the position was entered
	ExitPrice   float64     // Price at which the position was exited
	Quantity    float64     // Size of the position traded
	StopLoss    float64     // Stop that was standing during the trade
	PNL         float64     // Profit and loss net of commission
	Commission  float64     // Total commission for entry and exit
	EntryTime   time.Time   // Timestamp when the position was entered
	ExitTime    time.Time   // Timestamp when the position was exited
	CloseReason CloseReason // Reason why the position was closed
}

// ReturnPct is the trade's net return relative to its entry notional.
func (t *Trade) ReturnPct() float64 {
	notional := t.EntryPrice * t.Quantity
	if notional == 0 {
		return 0
	}
	return t.PNL / notional
}

// Duration is how long the position was held.
func (t *Trade) Duration() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}
