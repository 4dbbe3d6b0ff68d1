package indicators

import (
	"context"
	"fmt"
	"math"

	"sessionTrader/internal/domain"
)

// ATRConfig holds configuration for the Average True Range indicator
type ATRConfig struct {
	IndicatorConfig
}

// ATRIndicator implements the Average True Range indicator
type ATRIndicator struct {
	BaseIndicator
}

// NewATR creates a new Average True Range indicator instance
func NewATR(config ATRConfig) *ATRIndicator {
	return &ATRIndicator{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
	}
}

// Name returns the name of the indicator
func (a *ATRIndicator) Name() string {
	return fmt.Sprintf("ATR(%d)", a.Config.Period)
}

// Calculate computes the Average True Range value at the last bar
func (a *ATRIndicator) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	s := ATR(Highs(bars), Lows(bars), Closes(bars), a.Config.Period)
	return lastValue(a.Name(), s, a.RequiredDataPoints())
}

// TrueRange returns the per-bar true range.
// The first bar has no previous close and uses high-low only.
func TrueRange(high, low, close []float64) []float64 {
	n := min(len(high), len(low), len(close))
	tr := make([]float64, n)
	for i := 0; i < n; i++ {
		tr[i] = high[i] - low[i]
		if i == 0 {
			continue
		}
		prevClose := close[i-1]
		// True Range is the greatest of:
		// 1. Current High - Current Low
		// 2. |Current High - Previous Close|
		// 3. |Current Low - Previous Close|
		tr[i] = math.Max(tr[i], math.Max(math.Abs(high[i]-prevClose), math.Abs(low[i]-prevClose)))
	}
	return tr
}

// ATR is the trailing simple mean of true range over period bars.
// It is undefined until period bars have accumulated.
func ATR(high, low, close []float64, period int) Series {
	return RollingMean(TrueRange(high, low, close), period)
}
