package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSortAndDedupe(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	at := func(minutes int, close float64) *Bar {
		return &Bar{Time: t0.Add(time.Duration(minutes) * time.Minute), Close: close}
	}

	tests := []struct {
		name  string
		bars  []*Bar
		want  []float64
		times []int
	}{
		{name: "empty", bars: nil, want: []float64{}, times: []int{}},
		{name: "already ordered", bars: []*Bar{at(0, 1), at(1, 2), at(2, 3)}, want: []float64{1, 2, 3}, times: []int{0, 1, 2}},
		{name: "out of order", bars: []*Bar{at(2, 3), at(0, 1), at(1, 2)}, want: []float64{1, 2, 3}, times: []int{0, 1, 2}},
		{name: "first duplicate wins", bars: []*Bar{at(0, 1), at(1, 2), at(1, 9), at(2, 3)}, want: []float64{1, 2, 3}, times: []int{0, 1, 2}},
		{name: "duplicate after reorder", bars: []*Bar{at(1, 2), at(0, 1), at(1, 9)}, want: []float64{1, 2}, times: []int{0, 1}},
		{
			name:  "same instant in another zone",
			bars:  []*Bar{at(0, 1), {Time: t0.In(time.FixedZone("EST", -5*3600)), Close: 9}},
			want:  []float64{1},
			times: []int{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortAndDedupe(tt.bars)
			closes := make([]float64, 0, len(got))
			for i, b := range got {
				closes = append(closes, b.Close)
				assert.True(t, b.Time.Equal(t0.Add(time.Duration(tt.times[i])*time.Minute)))
			}
			assert.Equal(t, tt.want, closes)
		})
	}
}
