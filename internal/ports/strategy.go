package ports

import (
	"context"

	"sessionTrader/internal/domain"
)

// DecisionEngine is the per-bar decision function driven by an execution loop.
type DecisionEngine interface {
	// Name identifies the configured variant.
	Name() string

	// Lookback returns how many trailing bars the engine needs to have every indicator defined.
	Lookback() int

	// Decide returns the intent for the last bar of window.
	// window is the trailing history ending at the current bar; no later bars are ever passed.
	Decide(ctx context.Context, window []*domain.Bar, position domain.PositionSnapshot, equity float64) domain.OrderIntent
}
