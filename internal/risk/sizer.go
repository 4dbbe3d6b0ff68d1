// Package risk converts an entry signal and account equity into a position size and stop.
package risk

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"sessionTrader/internal/ports"
)

// SizerConfig holds configuration for fixed-fractional position sizing
type SizerConfig struct {
	// Fraction of equity lost if the stop is hit, e.g. 0.02
	RiskFraction float64 `yaml:"risk_fraction" validate:"gt=0,lte=1"`
	// Stop distance in ATR units, e.g. 2
	StopATRMultiplier float64 `yaml:"stop_atr_multiplier" validate:"gt=0"`
}

// Plan is a sized long entry.
type Plan struct {
	Size         float64 // units of the underlying
	StopPrice    float64 // entry close minus stop distance
	StopDistance float64 // ATR x multiplier, in price units
	RiskAmount   float64 // equity x risk fraction
}

// Sizer computes risk-bounded entries.
type Sizer struct {
	config SizerConfig
}

var validate = validator.New()

// NewSizer creates a new sizer after validating the configuration
func NewSizer(config SizerConfig) (*Sizer, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("risk sizer: %v: %w", err, ports.ErrConfigurationInvalid)
	}
	return &Sizer{config: config}, nil
}

// Config returns the sizer configuration.
func (s *Sizer) Config() SizerConfig {
	return s.config
}

// StopDistance is atr scaled by the configured multiplier.
func (s *Sizer) StopDistance(atr float64) float64 {
	return atr * s.config.StopATRMultiplier
}

// Size returns (equity * risk fraction) / stopDistance.
// A non-positive or non-finite stop distance has no defined size and yields ErrInvalidStopDistance.
func (s *Sizer) Size(equity, stopDistance float64) (float64, error) {
	if !positive(equity) {
		return 0, fmt.Errorf("equity %v: %w", equity, ports.ErrInvalidEquity)
	}
	if !positive(stopDistance) {
		return 0, fmt.Errorf("stop distance %v: %w", stopDistance, ports.ErrInvalidStopDistance)
	}
	size := equity * s.config.RiskFraction / stopDistance
	if !positive(size) {
		return 0, fmt.Errorf("size %v for stop distance %v: %w", size, stopDistance, ports.ErrInvalidStopDistance)
	}
	return size, nil
}

// Plan sizes a long entry at entryClose with a stop derived from atr.
// Size and stop come from the same close and the same ATR reading.
// A stop at or below zero is rejected as an invalid stop distance.
func (s *Sizer) Plan(equity, entryClose, atr float64) (Plan, error) {
	if !positive(entryClose) {
		return Plan{}, fmt.Errorf("entry price %v: %w", entryClose, ports.ErrInvalidStopDistance)
	}
	distance := s.StopDistance(atr)
	size, err := s.Size(equity, distance)
	if err != nil {
		return Plan{}, err
	}
	stop := entryClose - distance
	if !positive(stop) {
		return Plan{}, fmt.Errorf("stop %v below zero for entry %v: %w", stop, entryClose, ports.ErrInvalidStopDistance)
	}
	return Plan{
		Size:         size,
		StopPrice:    stop,
		StopDistance: distance,
		RiskAmount:   equity * s.config.RiskFraction,
	}, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
