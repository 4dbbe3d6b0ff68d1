package csvfeed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

// Source implements ports.BarProvider over CSV files on disk.
type Source struct {
	// Path is either a single CSV file or a directory holding files named by FileName.
	Path string
	// Location interprets timestamps that carry no zone. Defaults to UTC.
	Location *time.Location
	Logger   ports.Logger
}

var _ ports.BarProvider = (*Source)(nil)

// NewSource creates a CSV bar source rooted at path.
func NewSource(path string, logger ports.Logger) *Source {
	if logger == nil {
		logger = ports.NopLogger{}
	}
	return &Source{Path: path, Location: time.UTC, Logger: logger}
}

func (s *Source) resolve(symbol, interval string) (string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return "", fmt.Errorf("csv source %s: %v: %w", s.Path, err, ports.ErrDataSourceUnavailable)
	}
	if !info.IsDir() {
		return s.Path, nil
	}
	return filepath.Join(s.Path, FileName(symbol, interval)), nil
}

// FetchBars reads the file for symbol and interval and returns the valid bars with
// start <= time < end, sorted and without duplicate timestamps. A zero start or end leaves that side open.
// Rows naming another symbol are skipped; rows without a symbol or interval inherit the requested ones.
func (s *Source) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error) {
	logger := s.Logger
	if logger == nil {
		logger = ports.NopLogger{}
	}
	path, err := s.resolve(symbol, interval)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %v: %w", path, err, ports.ErrDataSourceUnavailable)
	}
	defer file.Close()

	raw, err := ReadBars(file, s.Location)
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("csv source %s: %w", path, ports.ErrContextCanceled)
	}

	bars := make([]*domain.Bar, 0, len(raw))
	var skipped int
	for _, b := range raw {
		if b.Symbol != "" && symbol != "" && b.Symbol != symbol {
			continue
		}
		if (!start.IsZero() && b.Time.Before(start)) || (!end.IsZero() && !b.Time.Before(end)) {
			continue
		}
		if !b.Valid() {
			skipped++
			continue
		}
		if b.Symbol == "" {
			b.Symbol = symbol
		}
		if b.Interval == "" {
			b.Interval = interval
		}
		bars = append(bars, b)
	}
	bars = domain.SortAndDedupe(bars)

	if skipped > 0 {
		logger.Warn(ctx, "Skipped malformed CSV rows", map[string]interface{}{"path": path, "count": skipped})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("csv source %s: %s %s: %w", path, symbol, interval, ports.ErrNoData)
	}
	logger.Debug(ctx, "Loaded bars from CSV", map[string]interface{}{"path": path, "count": len(bars)})
	return bars, nil
}
