package indicators

import (
	"context"
	"fmt"
	"math"

	"sessionTrader/internal/domain"
)

// PriceSource selects the bar field a moving average is taken over.
type PriceSource string

const (
	SourceClose  PriceSource = "close"
	SourceVolume PriceSource = "volume"
)

// MovingAverageConfig holds configuration for the simple moving average indicator
type MovingAverageConfig struct {
	IndicatorConfig
	Source PriceSource
}

// MovingAverage implements the simple moving average over closes or volumes
type MovingAverage struct {
	BaseIndicator
	config MovingAverageConfig
}

// NewMovingAverage creates a new moving average indicator instance
func NewMovingAverage(config MovingAverageConfig) *MovingAverage {
	if config.Source == "" {
		config.Source = SourceClose
	}
	return &MovingAverage{
		BaseIndicator: BaseIndicator{Config: config.IndicatorConfig},
		config:        config,
	}
}

// Name returns the name of the indicator
func (m *MovingAverage) Name() string {
	if m.config.Source == SourceVolume {
		return fmt.Sprintf("VolumeSMA(%d)", m.Config.Period)
	}
	return fmt.Sprintf("SMA(%d)", m.Config.Period)
}

// Series computes the moving average for every bar.
func (m *MovingAverage) Series(bars []*domain.Bar) Series {
	if m.config.Source == SourceVolume {
		return RollingMean(Volumes(bars), m.Config.Period)
	}
	return RollingMean(Closes(bars), m.Config.Period)
}

// Calculate returns the moving average at the last bar.
func (m *MovingAverage) Calculate(ctx context.Context, bars []*domain.Bar) (float64, error) {
	return lastValue(m.Name(), m.Series(bars), m.RequiredDataPoints())
}

// RollingMean is the trailing arithmetic mean of the last window values ending at each index.
// Indices below window-1 are undefined, as is any window containing a non-finite value.
func RollingMean(values []float64, window int) Series {
	out := make(Series, len(values))
	for i := range out {
		if window <= 0 || i < window-1 {
			continue
		}
		sum := 0.0
		for _, v := range values[i-window+1 : i+1] {
			sum += v
		}
		out[i] = some(sum / float64(window))
	}
	return out
}

// meanOf is the arithmetic mean of a fully finite slice, NaN otherwise.
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
