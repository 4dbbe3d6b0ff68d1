package indicators

import (
	"context"
	"fmt"
	"math"

	"github.com/moznion/go-optional"

	"sessionTrader/internal/domain"
)

// RSI bounds and the value reported when neither gains nor losses occurred.
const (
	RSIMax     = 100.0
	RSIMin     = 0.0
	RSINeutral = 50.0
)

// RSIConfig holds configuration for the RSI indicator
type RSIConfig struct {
	IndicatorConfig
	Overbought float64
	Oversold   float64
}

// RSIIndicator implements the Relative Strength Index over simple trailing means
type RSIIndicator struct {
	BaseIndicator
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance
func NewRSI(config RSIConfig) *RSIIndicator {
	return &RSIIndicator{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (r *RSIIndicator) Name() string {
	return fmt.Sprintf("RSI(%d)", r.Config.Period)
}

// RequiredDataPoints is one more than the period: the first bar has no delta.
func (r *RSIIndicator) RequiredDataPoints() int {
	return r.Config.Period + 1
}

// Calculate returns the RSI at the last bar.
func (r *RSIIndicator) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	return lastValue(r.Name(), RSI(Closes(bars), r.Config.Period), r.RequiredDataPoints())
}

// IsOverbought reports whether value is strictly above the configured overbought level.
func (r *RSIIndicator) IsOverbought(value float64) bool {
	return value > r.config.Overbought
}

// IsOversold reports whether value is strictly below the configured oversold level.
func (r *RSIIndicator) IsOversold(value float64) bool {
	return value < r.config.Oversold
}

// RSI computes the relative strength index of closes.
//
// Deltas start at index 1, so the series is defined from index period onward.
// Gains and losses are averaged with a simple trailing mean over period deltas.
// A zero mean loss yields 100 when there were gains and 50 when the window was flat;
// the ratio is never formed in that case.
func RSI(closes []float64, period int) Series {
	out := make(Series, len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		switch {
		case math.IsNaN(delta):
			gains[i], losses[i] = math.NaN(), math.NaN()
		case delta > 0:
			gains[i] = delta
		case delta < 0:
			losses[i] = -delta
		}
	}

	for i := period; i < len(closes); i++ {
		avgGain := meanOf(gains[i-period+1 : i+1])
		avgLoss := meanOf(losses[i-period+1 : i+1])
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) optional.Option[float64] {
	if math.IsNaN(avgGain) || math.IsNaN(avgLoss) {
		return none()
	}
	if avgLoss == 0 {
		if avgGain == 0 {
			return some(RSINeutral)
		}
		return some(RSIMax)
	}
	rs := avgGain / avgLoss
	rsi := RSIMax - RSIMax/(1+rs)
	return some(math.Max(RSIMin, math.Min(RSIMax, rsi)))
}
