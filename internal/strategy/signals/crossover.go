// Package signals detects crossover and threshold events on indicator series.
// All functions are stateless and read only indices i and i-1.
package signals

import (
	"sessionTrader/internal/strategy/indicators"
)

// Cross is the crossover event between two series at one index.
type Cross int

const (
	CrossNone Cross = iota
	CrossUp         // a moved from below b to at-or-above b
	CrossDown       // a moved from above b to at-or-below b
)

func (c Cross) String() string {
	switch c {
	case CrossUp:
		return "up"
	case CrossDown:
		return "down"
	default:
		return "none"
	}
}

// pair returns a[i-1], b[i-1], a[i], b[i] and whether all four are defined.
func pair(a, b indicators.Series, i int) (prevA, prevB, curA, curB float64, ok bool) {
	if i < 1 || !a.Defined(i) || !b.Defined(i) || !a.Defined(i-1) || !b.Defined(i-1) {
		return 0, 0, 0, 0, false
	}
	return a[i-1].Unwrap(), b[i-1].Unwrap(), a[i].Unwrap(), b[i].Unwrap(), true
}

// CrossedAbove is true iff a[i] >= b[i] and a[i-1] < b[i-1], with all four values defined.
func CrossedAbove(a, b indicators.Series, i int) bool {
	prevA, prevB, curA, curB, ok := pair(a, b, i)
	return ok && curA >= curB && prevA < prevB
}

// CrossedBelow is true iff a[i] <= b[i] and a[i-1] > b[i-1], with all four values defined.
func CrossedBelow(a, b indicators.Series, i int) bool {
	prevA, prevB, curA, curB, ok := pair(a, b, i)
	return ok && curA <= curB && prevA > prevB
}

// Crossover classifies index i. CrossedAbove and CrossedBelow need opposite strict
// orderings at i-1, so at most one of them holds.
func Crossover(a, b indicators.Series, i int) Cross {
	switch {
	case CrossedAbove(a, b, i):
		return CrossUp
	case CrossedBelow(a, b, i):
		return CrossDown
	default:
		return CrossNone
	}
}

// CrossedAboveLast reports CrossedAbove at the final index.
func CrossedAboveLast(a, b indicators.Series) bool {
	return CrossedAbove(a, b, lastIndex(a, b))
}

// CrossedBelowLast reports CrossedBelow at the final index.
func CrossedBelowLast(a, b indicators.Series) bool {
	return CrossedBelow(a, b, lastIndex(a, b))
}

func lastIndex(a, b indicators.Series) int {
	return min(len(a), len(b)) - 1
}
