package csvfeed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

func TestParseTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		in   string
		loc  *time.Location
		want time.Time
	}{
		{in: "2024-12-26T14:30:00Z", loc: time.UTC, want: time.Date(2024, 12, 26, 14, 30, 0, 0, time.UTC)},
		{in: "2024-12-26T09:30:00-05:00", loc: time.UTC, want: time.Date(2024, 12, 26, 14, 30, 0, 0, time.UTC)},
		{in: "2024-12-26 09:30:00-05:00", loc: time.UTC, want: time.Date(2024, 12, 26, 14, 30, 0, 0, time.UTC)},
		{in: "2024-12-26", loc: time.UTC, want: time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)},
		{in: "2024-12-26 09:30:00", loc: ny, want: time.Date(2024, 12, 26, 14, 30, 0, 0, time.UTC)},
		{in: "1735223400000", loc: time.UTC, want: time.Date(2024, 12, 26, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTime(tt.in, tt.loc)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}

	_, err = ParseTime("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestWriteThenReadBars(t *testing.T) {
	start := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	bars := []*domain.Bar{
		{Time: start, Symbol: "SPY", Interval: "1h", Open: 470.1, High: 471, Low: 469.5, Close: 470.75, Volume: 1200},
		{Time: start.Add(time.Hour), Symbol: "SPY", Interval: "1h", Open: 470.75, High: 472, Low: 470, Close: 471.9, Volume: 900},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBars(&buf, bars))
	assert.True(t, strings.HasPrefix(buf.String(), "time,symbol,interval,open,high,low,close,volume\n"))

	got, err := ReadBars(&buf, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range bars {
		assert.True(t, bars[i].Time.Equal(got[i].Time))
		assert.Equal(t, bars[i].Symbol, got[i].Symbol)
		assert.Equal(t, bars[i].Close, got[i].Close)
		assert.Equal(t, bars[i].Volume, got[i].Volume)
	}
}

func TestReadBars_YahooLayout(t *testing.T) {
	in := "Date,Open,High,Low,Close,Adj Close,Volume\n" +
		"2023-12-26,475.0,476.5,474.2,475.6,470.1,55387000\n" +
		"\n" +
		"2023-12-27,475.4,476.7,474.9,476.5,471.0,68000300\n"

	bars, err := ReadBars(strings.NewReader(in), time.UTC)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2023, 12, 26, 0, 0, 0, 0, time.UTC), bars[0].Time)
	assert.Equal(t, 475.6, bars[0].Close)
	assert.Equal(t, 55387000.0, bars[0].Volume)
	assert.Empty(t, bars[0].Symbol)
}

func TestReadBars_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
		wantMsg string
	}{
		{name: "empty", in: "", wantErr: ports.ErrNoData},
		{name: "missing close column", in: "time,open,high,low\n", wantErr: ports.ErrMalformedBar, wantMsg: `"close"`},
		{name: "bad number", in: "time,open,high,low,close\n2024-01-02,1,2,x,1\n", wantErr: ports.ErrMalformedBar, wantMsg: "line 2: low"},
		{name: "bad time", in: "time,open,high,low,close\nsoon,1,2,1,1\n", wantErr: ports.ErrMalformedBar, wantMsg: "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBars(strings.NewReader(tt.in), time.UTC)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestSource_FetchBars(t *testing.T) {
	dir := t.TempDir()
	in := "time,symbol,open,high,low,close,volume\n" +
		"2024-01-04,SPY,3,4,2,3.5,10\n" +
		"2024-01-02,SPY,1,2,0.5,1.5,10\n" +
		"2024-01-03,QQQ,9,9,9,9,10\n" +
		"2024-01-03,SPY,2,3,1.5,2.5,10\n" +
		"2024-01-03,SPY,2,3,1.5,2.6,10\n" +
		"2024-01-05,SPY,0,0,0,0,10\n" +
		"2024-01-08,SPY,5,6,4,5.5,10\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName("spy", "1d")), []byte(in), 0644))

	src := NewSource(dir, nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	bars, err := src.FetchBars(context.Background(), "SPY", "1d", start, end)
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, 1.5, bars[0].Close)
	assert.Equal(t, 2.5, bars[1].Close, "first row of a duplicated timestamp wins")
	assert.Equal(t, 3.5, bars[2].Close)
	assert.Equal(t, "1d", bars[0].Interval)

	open, err := src.FetchBars(context.Background(), "SPY", "1d", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, open, 4)

	_, err = src.FetchBars(context.Background(), "SPY", "1d", end, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	assert.NoError(t, err)

	_, err = src.FetchBars(context.Background(), "SPY", "1h", start, end)
	assert.ErrorIs(t, err, ports.ErrDataSourceUnavailable)

	_, err = NewSource(filepath.Join(dir, "missing"), nil).FetchBars(context.Background(), "SPY", "1d", start, end)
	assert.ErrorIs(t, err, ports.ErrDataSourceUnavailable)

	_, err = src.FetchBars(context.Background(), "SPY", "1d", start.AddDate(1, 0, 0), end.AddDate(1, 0, 0))
	assert.ErrorIs(t, err, ports.ErrNoData)
}

func TestSource_SingleFileAndWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bars.csv")
	bars := []*domain.Bar{
		{Time: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Symbol: "SPY", Interval: "1d", Open: 1, High: 2, Low: 1, Close: 2, Volume: 5},
	}
	require.NoError(t, WriteFile(path, bars))

	got, err := NewSource(path, ports.NopLogger{}).FetchBars(context.Background(), "SPY", "1d", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Close)
}
