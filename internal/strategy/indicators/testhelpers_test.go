package indicators

import (
	"time"

	"sessionTrader/internal/domain"
)

func barsFromCloses(closes ...float64) []*domain.Bar {
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	bars := make([]*domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = &domain.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + float64(i),
		}
	}
	return bars
}
