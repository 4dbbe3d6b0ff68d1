package domain

// PositionStatus represents the status of a trading position.
type PositionStatus string

const (
	StatusOpen   PositionStatus = "open"
	StatusClosed PositionStatus = "closed"
)

// CloseReason indicates why a position was closed.
type CloseReason string

const (
	CloseReasonStopLoss      CloseReason = "SL"
	CloseReasonTrendReversal CloseReason = "TREND_REVERSAL" // Opposite crossover
	CloseReasonOverbought    CloseReason = "OVERBOUGHT"     // RSI crossed into the overbought band
	CloseReasonSessionClose  CloseReason = "SESSION_CLOSE"  // Session or seasonal window ended
	CloseReasonEndOfData     CloseReason = "END_OF_DATA"    // Closed by the backtest at the last bar
	CloseReasonUnknown       CloseReason = "Unknown"
)

// EntryReason describes the signal that opened a position.
type EntryReason string

const (
	EntryReasonCrossover         EntryReason = "CROSSOVER"
	EntryReasonOversoldLowVolume EntryReason = "OVERSOLD_LOW_VOLUME"
)
