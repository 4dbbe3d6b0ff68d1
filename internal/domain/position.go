package domain

import "time"

// Position represents a long position held by the execution engine.
// Only the execution engine mutates a Position; the decision engine observes a PositionSnapshot.
type Position struct {
	ID          int64          // Sequence number within a run
	RunID       string         // Backtest run that owns the position
	Symbol      string         // Trading symbol
	EntryPrice  float64        // Fill price of the entry
	ExitPrice   float64        // Fill price of the exit (0 if open)
	Quantity    float64        // Size in units of the underlying
	StopLoss    float64        // Standing stop-loss price (0 if none)
	EntryTime   time.Time      // Timestamp of the entry fill
	ExitTime    time.Time      // Timestamp of the exit fill (zero value if open)
	Status      PositionStatus // Current status (open, closed)
	PNL         float64        // Realized profit and loss net of commission
	Commission  float64        // Commission paid so far
	CloseReason CloseReason    // Reason for closing
}

// IsOpen checks if the position status is open.
func (p *Position) IsOpen() bool {
	return p != nil && p.Status == StatusOpen
}

// Snapshot returns the read-only view handed to the decision engine.
func (p *Position) Snapshot() PositionSnapshot {
	if !p.IsOpen() {
		return PositionSnapshot{}
	}
	return PositionSnapshot{
		Open:       true,
		EntryPrice: p.EntryPrice,
		Size:       p.Quantity,
		StopPrice:  p.StopLoss,
	}
}

// PositionSnapshot is what the decision engine is told about the current position.
type PositionSnapshot struct {
	Open       bool
	EntryPrice float64
	Size       float64
	StopPrice  float64 // 0 when no stop is standing
}

// Flat is the snapshot of an instrument with no open position.
var Flat = PositionSnapshot{}
