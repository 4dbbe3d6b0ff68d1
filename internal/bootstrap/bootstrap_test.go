package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionTrader/config"
	"sessionTrader/internal/adapters/binanceclient"
	"sessionTrader/internal/adapters/csvfeed"
	"sessionTrader/internal/adapters/logger"
	"sessionTrader/internal/adapters/polygonfeed"
	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
)

func baseConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DataSource:     config.DataSourceCSV,
		DataPath:       dir,
		Symbol:         "SPY",
		Interval:       "1d",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialEquity:  10000,
		Commission:     0.002,
		FillOnNextOpen: true,
		PeriodsPerYear: 252,
		Variants:       []string{strategy.PresetSMACrossover},
		DBPath:         filepath.Join(dir, "runs.db"),
		LogLevel:       logger.LevelError,
		LogFormat:      config.LogFormatText,
		RequestTimeout: time.Second,
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{format: config.LogFormatText, want: &logger.StdLogger{}},
		{format: config.LogFormatJSON, want: &logger.ZapLogger{}},
		{format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := baseConfig(t)
			cfg.LogFormat = tt.format
			log, flush, err := NewLogger(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, ports.ErrConfigurationInvalid)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, log)
			flush()
		})
	}
}

func TestNewBarProvider(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		want    interface{}
		wantErr error
	}{
		{name: "csv", mutate: func(*config.Config) {}, want: &csvfeed.Source{}},
		{name: "binance", mutate: func(c *config.Config) { c.DataSource = config.DataSourceBinance }, want: &binanceclient.Client{}},
		{
			name: "polygon",
			mutate: func(c *config.Config) {
				c.DataSource = config.DataSourcePolygon
				c.PolygonAPIKey = "key"
			},
			want: &polygonfeed.Client{},
		},
		{
			name:    "polygon without key",
			mutate:  func(c *config.Config) { c.DataSource = config.DataSourcePolygon },
			wantErr: ports.ErrConfigurationInvalid,
		},
		{
			name:    "unknown",
			mutate:  func(c *config.Config) { c.DataSource = "ftp" },
			wantErr: ports.ErrConfigurationInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig(t)
			tt.mutate(cfg)
			provider, err := NewBarProvider(cfg, ports.NopLogger{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, provider)
		})
	}
}

func TestNewService_EndToEnd(t *testing.T) {
	cfg := baseConfig(t)

	bars := make([]*domain.Bar, 0, 120)
	c := 100.0
	for i := 0; i < 120; i++ {
		switch {
		case i == 0:
		case i < 49:
			c -= 0.5
		case i < 80:
			c += 3
		default:
			c -= 4
		}
		bars = append(bars, &domain.Bar{
			Time:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Symbol:   "SPY",
			Interval: "1d",
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000,
		})
	}
	require.NoError(t, csvfeed.WriteFile(filepath.Join(cfg.DataPath, csvfeed.FileName("SPY", "1d")), bars))

	svc, err := NewService(cfg, Options{Journal: true})
	require.NoError(t, err)
	defer svc.Close()

	summaries, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	runs, err := svc.Report(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, summaries[0].Run.ID, runs[0].ID)

	run, trades, err := svc.RunDetails(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, strategy.PresetSMACrossover, run.Variant)
	assert.Len(t, trades, len(summaries[0].Trades))
}

func TestNewService_Errors(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Variants = []string{"missing"}
	_, err := NewService(cfg, Options{})
	assert.ErrorIs(t, err, ports.ErrNotFound)

	svc, err := NewService(cfg, Options{SkipVariants: true})
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Report(context.Background(), 10)
	assert.ErrorIs(t, err, ports.ErrConfigurationInvalid, "journal was not requested")
}
