package ports

import (
	"context"
	"time"

	"sessionTrader/internal/domain"
)

// BarProvider delivers an ordered, duplicate-free sequence of OHLCV bars.
// Implementations must return bars sorted by ascending timestamp with start <= bar.Time < end.
type BarProvider interface {
	FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
}
