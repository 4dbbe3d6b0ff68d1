package indicators

import (
	"context"
	"fmt"
	"math"

	"github.com/moznion/go-optional"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

// Series is an indicator output aligned index-for-index with the bars it was derived from.
// Warm-up positions, where the window is incomplete, hold None.
type Series []optional.Option[float64]

// At returns the value at index i, or None when i is out of range or undefined.
func (s Series) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(s) || s[i] == nil {
		return none()
	}
	return s[i]
}

// Last returns the value at the most recent index.
func (s Series) Last() optional.Option[float64] {
	return s.At(len(s) - 1)
}

// Defined reports whether index i holds a value.
func (s Series) Defined(i int) bool {
	return s.At(i).IsSome()
}

// FromValues wraps plain values as a fully defined series. Non-finite values become None.
func FromValues(values ...float64) Series {
	out := make(Series, len(values))
	for i, v := range values {
		out[i] = some(v)
	}
	return out
}

// Indicator represents a technical indicator that can be calculated from price data
type Indicator interface {
	// Calculate computes the indicator value at the last bar of the given data
	Calculate(ctx context.Context, bars []*domain.Bar) (float64, error)

	// RequiredDataPoints returns the minimum number of bars needed for calculation
	RequiredDataPoints() int

	// Name returns the name of the indicator
	Name() string
}

// IndicatorConfig holds common configuration for indicators
type IndicatorConfig struct {
	Period int
}

// BaseIndicator provides common functionality for indicators
type BaseIndicator struct {
	Config IndicatorConfig
}

// RequiredDataPoints returns the minimum number of bars needed for calculation
func (b *BaseIndicator) RequiredDataPoints() int {
	return b.Config.Period
}

// lastValue unwraps the latest value of a series or reports insufficient history.
func lastValue(name string, s Series, need int) (float64, error) {
	v, err := s.Last().Take()
	if err != nil {
		return 0, fmt.Errorf("%s: need %d bars, got %d: %w", name, need, len(s), ports.ErrInsufficientHistory)
	}
	return v, nil
}

func none() optional.Option[float64] {
	return optional.None[float64]()
}

func some(v float64) optional.Option[float64] {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return none()
	}
	return optional.Some(v)
}

// Closes extracts closing prices.
func Closes(bars []*domain.Bar) []float64 {
	return extract(bars, func(b *domain.Bar) float64 { return b.Close })
}

// Highs extracts high prices.
func Highs(bars []*domain.Bar) []float64 {
	return extract(bars, func(b *domain.Bar) float64 { return b.High })
}

// Lows extracts low prices.
func Lows(bars []*domain.Bar) []float64 {
	return extract(bars, func(b *domain.Bar) float64 { return b.Low })
}

// Volumes extracts traded volumes.
func Volumes(bars []*domain.Bar) []float64 {
	return extract(bars, func(b *domain.Bar) float64 { return b.Volume })
}

// extract maps bars to a field; a nil bar yields NaN so that any window touching it is undefined.
func extract(bars []*domain.Bar, field func(*domain.Bar) float64) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if b == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = field(b)
	}
	return out
}
