package domain

import (
	"math"
	"sort"
	"time"
)

// Bar represents a single OHLCV observation for a fixed interval.
type Bar struct {
	Time     time.Time // Start of the interval, timezone-aware
	Symbol   string    // Instrument symbol (e.g., "SPY")
	Interval string    // Bar interval (e.g., "1h", "1d")
	Open     float64   // Opening price
	High     float64   // Highest price
	Low      float64   // Lowest price
	Close    float64   // Closing price
	Volume   float64   // Traded volume
}

// Valid reports whether the bar carries usable prices.
// A zero timestamp, a non-positive or non-finite price, or a negative volume make the bar unusable.
func (b *Bar) Valid() bool {
	if b == nil || b.Time.IsZero() {
		return false
	}
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return b.Volume >= 0 && !math.IsNaN(b.Volume)
}

// SortAndDedupe orders bars by time and keeps the first bar seen for each timestamp.
// The input slice is reordered and reused.
func SortAndDedupe(bars []*Bar) []*Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && b.Time.Equal(out[n-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out
}
