package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"sessionTrader/internal/strategy/indicators"
)

func TestCrossover(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name  string
		a     []float64
		b     []float64
		index int
		want  Cross
	}{
		{name: "strict cross up", a: []float64{1, 3}, b: []float64{2, 2}, index: 1, want: CrossUp},
		{name: "touch from below counts as up", a: []float64{1, 2}, b: []float64{2, 2}, index: 1, want: CrossUp},
		{name: "strict cross down", a: []float64{3, 1}, b: []float64{2, 2}, index: 1, want: CrossDown},
		{name: "touch from above counts as down", a: []float64{3, 2}, b: []float64{2, 2}, index: 1, want: CrossDown},
		{name: "leaving a touch upward is not a cross", a: []float64{2, 3}, b: []float64{2, 2}, index: 1, want: CrossNone},
		{name: "leaving a touch downward is not a cross", a: []float64{2, 1}, b: []float64{2, 2}, index: 1, want: CrossNone},
		{name: "stays above", a: []float64{3, 4}, b: []float64{2, 2}, index: 1, want: CrossNone},
		{name: "index zero has no previous", a: []float64{3}, b: []float64{2}, index: 0, want: CrossNone},
		{name: "undefined previous during warm-up", a: []float64{nan, 3}, b: []float64{2, 2}, index: 1, want: CrossNone},
		{name: "undefined current", a: []float64{1, 3}, b: []float64{2, nan}, index: 1, want: CrossNone},
		{name: "index out of range", a: []float64{1, 3}, b: []float64{2, 2}, index: 5, want: CrossNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := indicators.FromValues(tt.a...)
			b := indicators.FromValues(tt.b...)
			assert.Equal(t, tt.want, Crossover(a, b, tt.index))
			assert.Equal(t, tt.want == CrossUp, CrossedAbove(a, b, tt.index))
			assert.Equal(t, tt.want == CrossDown, CrossedBelow(a, b, tt.index))
		})
	}
}

func TestCrossover_MutuallyExclusive(t *testing.T) {
	a := indicators.FromValues(1, 2, 2, 3, 2, 1, 1, 2, 3, 3, 2)
	b := indicators.FromValues(2, 2, 2, 2, 2, 2, 1, 1, 2, 3, 3)
	for i := range a {
		if CrossedAbove(a, b, i) && CrossedBelow(a, b, i) {
			t.Fatalf("both crossings reported at index %d", i)
		}
	}
}

func TestCrossedLast(t *testing.T) {
	fast := indicators.FromValues(9, 10, 11)
	slow := indicators.FromValues(10, 10.5, 10.8)
	assert.True(t, CrossedAboveLast(fast, slow))
	assert.False(t, CrossedBelowLast(fast, slow))

	assert.False(t, CrossedAboveLast(indicators.Series{}, indicators.Series{}))
}

func TestCross_String(t *testing.T) {
	assert.Equal(t, "up", CrossUp.String())
	assert.Equal(t, "down", CrossDown.String())
	assert.Equal(t, "none", CrossNone.String())
}
