// Package csvfeed reads and writes OHLCV bars as CSV files.
package csvfeed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

// Header is the column layout written by WriteBars.
var Header = []string{"time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// timeLayouts are tried in order; layouts without a zone are read in the reader's location.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// columns maps the accepted header names onto bar fields.
var columns = map[string]string{
	"time":      "time",
	"timestamp": "time",
	"date":      "time",
	"datetime":  "time",
	"open_time": "time",
	"symbol":    "symbol",
	"ticker":    "symbol",
	"interval":  "interval",
	"open":      "open",
	"high":      "high",
	"low":       "low",
	"close":     "close",
	"volume":    "volume",
}

// ParseTime parses a CSV timestamp. Date-only and zone-less values are interpreted in loc.
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ReadBars parses bars from r. The first row must be a header naming at least
// time, open, high, low and close columns; symbol, interval and volume are optional.
// Rows are returned in file order.
func ReadBars(r io.Reader, loc *time.Location) ([]*domain.Bar, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv: %w", ports.ErrNoData)
		}
		return nil, fmt.Errorf("reading csv header: %v: %w", err, ports.ErrMalformedBar)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if field, ok := columns[key]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	for _, required := range []string{"time", "open", "high", "low", "close"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv header lacks a %q column: %w", required, ports.ErrMalformedBar)
		}
	}

	get := func(record []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	number := func(record []string, field string, line int) (float64, error) {
		raw := get(record, field)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("line %d: %s %q: %w", line, field, raw, ports.ErrMalformedBar)
		}
		return v, nil
	}

	var bars []*domain.Bar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, ports.ErrMalformedBar)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		ts, err := ParseTime(get(record, "time"), loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", line, err, ports.ErrMalformedBar)
		}
		bar := &domain.Bar{
			Time:     ts,
			Symbol:   get(record, "symbol"),
			Interval: get(record, "interval"),
		}
		if bar.Open, err = number(record, "open", line); err != nil {
			return nil, err
		}
		if bar.High, err = number(record, "high", line); err != nil {
			return nil, err
		}
		if bar.Low, err = number(record, "low", line); err != nil {
			return nil, err
		}
		if bar.Close, err = number(record, "close", line); err != nil {
			return nil, err
		}
		if _, ok := index["volume"]; ok && get(record, "volume") != "" {
			if bar.Volume, err = number(record, "volume", line); err != nil {
				return nil, err
			}
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// WriteBars writes bars to w using Header. Times are written as RFC 3339 with their offset.
func WriteBars(w io.Writer, bars []*domain.Bar) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, b := range bars {
		if b == nil {
			continue
		}
		if err := writer.Write([]string{
			b.Time.Format(time.RFC3339),
			b.Symbol,
			b.Interval,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes bars to filename, creating parent directories as needed.
func WriteFile(filename string, bars []*domain.Bar) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", filename, err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteBars(file, bars); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return file.Close()
}

// FileName is the conventional file name for one symbol and interval inside a data directory.
func FileName(symbol, interval string) string {
	return fmt.Sprintf("%s_%s.csv", strings.ToUpper(symbol), interval)
}
