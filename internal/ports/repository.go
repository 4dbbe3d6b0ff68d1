package ports

import (
	"context"

	"sessionTrader/internal/domain"
)

// RunRepository defines the interface for journaling backtest runs and their trades.
type RunRepository interface {
	// CreateRun saves a new run record. The run ID is assigned by the caller.
	CreateRun(ctx context.Context, run *domain.BacktestRun) error
	// SaveTrades stores the completed trades of a run and assigns their IDs.
	SaveTrades(ctx context.Context, runID string, trades []*domain.Trade) error
	// FindRun retrieves a run by ID. Returns ErrNotFound if it does not exist.
	FindRun(ctx context.Context, id string) (*domain.BacktestRun, error)
	// ListRuns retrieves the most recent runs, newest first, up to a limit.
	ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error)
	// FindTradesByRun retrieves the trades of a run ordered by entry time.
	FindTradesByRun(ctx context.Context, runID string) ([]*domain.Trade, error)
}
