package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sessionTrader/config"
	"sessionTrader/internal/domain"
	"sessionTrader/internal/mocks"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
	"sessionTrader/internal/strategy/optimization"
)

// Mock implementations
type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

func testConfig() *config.Config {
	return &config.Config{
		DataSource:     config.DataSourceCSV,
		Symbol:         "SPY",
		Interval:       "1d",
		StartDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		InitialEquity:  10000,
		Commission:     0.002,
		FillOnNextOpen: true,
		PeriodsPerYear: 252,
	}
}

// trendBars declines, rallies and falls again so the SMA(20)/SMA(50) pair crosses both ways.
func trendBars() []*domain.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
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
			Time:     start.AddDate(0, 0, i),
			Symbol:   "SPY",
			Interval: "1d",
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000,
		})
	}
	return bars
}

func presets(t *testing.T, names ...string) []strategy.Config {
	t.Helper()
	out := make([]strategy.Config, 0, len(names))
	for _, name := range names {
		cfg, err := strategy.Preset(name)
		require.NoError(t, err)
		out = append(out, cfg)
	}
	return out
}

func TestNewBacktestService(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)

	badEquity := testConfig()
	badEquity.InitialEquity = 0
	badRange := testConfig()
	badRange.EndDate = badRange.StartDate

	tests := []struct {
		name     string
		cfg      *config.Config
		logger   ports.Logger
		provider ports.BarProvider
		wantErr  error
	}{
		{name: "valid", cfg: testConfig(), logger: &mockLogger{}, provider: provider},
		{name: "missing config", logger: &mockLogger{}, provider: provider, wantErr: ports.ErrConfigurationInvalid},
		{name: "missing logger", cfg: testConfig(), provider: provider, wantErr: ports.ErrConfigurationInvalid},
		{name: "missing provider", cfg: testConfig(), logger: &mockLogger{}, wantErr: ports.ErrConfigurationInvalid},
		{name: "non-positive equity", cfg: badEquity, logger: &mockLogger{}, provider: provider, wantErr: ports.ErrInvalidEquity},
		{name: "empty date range", cfg: badRange, logger: &mockLogger{}, provider: provider, wantErr: ports.ErrConfigurationInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewBacktestService(tt.cfg, tt.logger, tt.provider, nil, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, svc)
		})
	}
}

func TestBacktestService_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)
	repo := mocks.NewMockRunRepository(ctrl)
	cfg := testConfig()
	bars := trendBars()

	provider.EXPECT().
		FetchBars(gomock.Any(), "SPY", "1d", cfg.StartDate, cfg.EndDate).
		Return(bars, nil).
		Times(1)

	var mu sync.Mutex
	saved := map[string]*domain.BacktestRun{}
	savedTrades := map[string][]*domain.Trade{}
	repo.EXPECT().CreateRun(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, run *domain.BacktestRun) error {
			mu.Lock()
			defer mu.Unlock()
			saved[run.ID] = run
			return nil
		}).Times(2)
	repo.EXPECT().SaveTrades(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, runID string, trades []*domain.Trade) error {
			mu.Lock()
			defer mu.Unlock()
			savedTrades[runID] = trades
			return nil
		}).Times(2)

	logger := &mockLogger{}
	variants := presets(t, strategy.PresetSMACrossover, strategy.PresetNYEReversion)
	svc, err := NewBacktestService(cfg, logger, provider, repo, variants)
	require.NoError(t, err)

	progress := map[string]int{}
	svc.SetProgress(func(variant string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, len(bars), total)
		progress[variant] = done
	})

	summaries, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, strategy.PresetSMACrossover, summaries[0].Run.Variant)
	assert.Equal(t, strategy.PresetNYEReversion, summaries[1].Run.Variant)
	assert.NotEqual(t, summaries[0].Run.ID, summaries[1].Run.ID)

	for _, s := range summaries {
		run := s.Run
		assert.Same(t, run, saved[run.ID])
		assert.Equal(t, s.Trades, savedTrades[run.ID])
		assert.Equal(t, "SPY", run.Symbol)
		assert.Equal(t, "1d", run.Interval)
		assert.Equal(t, len(bars), run.Bars)
		assert.Equal(t, bars[0].Time, run.FirstBar)
		assert.Equal(t, bars[len(bars)-1].Time, run.LastBar)
		assert.Equal(t, 10000.0, run.InitialEquity)
		assert.Equal(t, len(s.Trades), run.TotalTrades)
		assert.InDelta(t, (run.FinalEquity/run.InitialEquity-1)*100, run.ReturnPct, 1e-9)
		assert.Contains(t, run.Params, "name: "+run.Variant)
		assert.False(t, run.FinishedAt.Before(run.StartedAt))
		for _, trade := range s.Trades {
			assert.Equal(t, run.ID, trade.RunID)
		}
		assert.Equal(t, len(bars), progress[run.Variant])
	}

	// The rally produces a crossover entry; the reversion preset never trades outside late December.
	assert.NotEmpty(t, summaries[0].Trades)
	assert.Empty(t, summaries[1].Trades)
	assert.Empty(t, logger.errorMsgs)
}

func TestBacktestService_RunWithoutJournal(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)
	provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(trendBars(), nil)

	svc, err := NewBacktestService(testConfig(), &mockLogger{}, provider, nil, presets(t, strategy.PresetSMACrossover))
	require.NoError(t, err)

	summaries, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotEmpty(t, summaries[0].Run.ID)
}

func TestBacktestService_RunErrors(t *testing.T) {
	invalid := presets(t, strategy.PresetSMACrossover)
	invalid[0].FastWindow = 80

	tests := []struct {
		name     string
		variants []strategy.Config
		setup    func(provider *mocks.MockBarProvider, repo *mocks.MockRunRepository)
		wantErr  error
	}{
		{
			name:     "no variants",
			variants: nil,
			setup:    func(*mocks.MockBarProvider, *mocks.MockRunRepository) {},
			wantErr:  ports.ErrConfigurationInvalid,
		},
		{
			name:     "invalid variant is rejected before loading data",
			variants: invalid,
			setup:    func(*mocks.MockBarProvider, *mocks.MockRunRepository) {},
			wantErr:  ports.ErrConfigurationInvalid,
		},
		{
			name:     "provider failure",
			variants: presets(t, strategy.PresetSMACrossover),
			setup: func(provider *mocks.MockBarProvider, _ *mocks.MockRunRepository) {
				provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, ports.ErrNoData)
			},
			wantErr: ports.ErrNoData,
		},
		{
			name:     "journal failure",
			variants: presets(t, strategy.PresetSMACrossover, strategy.PresetNYSESession),
			setup: func(provider *mocks.MockBarProvider, repo *mocks.MockRunRepository) {
				provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(trendBars(), nil)
				repo.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Return(ports.ErrDuplicateEntry).MinTimes(1)
			},
			wantErr: ports.ErrDuplicateEntry,
		},
		{
			name:     "trade journal failure",
			variants: presets(t, strategy.PresetSMACrossover),
			setup: func(provider *mocks.MockBarProvider, repo *mocks.MockRunRepository) {
				provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(trendBars(), nil)
				repo.EXPECT().CreateRun(gomock.Any(), gomock.Any()).Return(nil)
				repo.EXPECT().SaveTrades(gomock.Any(), gomock.Any(), gomock.Any()).Return(ports.ErrQueryFailed)
			},
			wantErr: ports.ErrQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockBarProvider(ctrl)
			repo := mocks.NewMockRunRepository(ctrl)
			tt.setup(provider, repo)

			svc, err := NewBacktestService(testConfig(), &mockLogger{}, provider, repo, tt.variants)
			require.NoError(t, err)

			summaries, err := svc.Run(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, summaries)
		})
	}
}

func TestBacktestService_RunCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)
	provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(trendBars(), nil)

	svc, err := NewBacktestService(testConfig(), &mockLogger{}, provider, nil, presets(t, strategy.PresetSMACrossover))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	svc.SetProgress(func(_ string, done, _ int) {
		if done == 10 {
			cancel()
		}
	})

	_, err = svc.Run(ctx)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
}

func TestBacktestService_Optimize(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)
	provider.EXPECT().FetchBars(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(trendBars(), nil)

	svc, err := NewBacktestService(testConfig(), &mockLogger{}, provider, nil, nil)
	require.NoError(t, err)

	base, err := strategy.Preset(strategy.PresetSMACrossover)
	require.NoError(t, err)

	var calls int
	results, err := svc.Optimize(context.Background(), base,
		[]optimization.ParameterRange{{Name: optimization.ParamFastWindow, Min: 10, Max: 20, Step: 10}},
		1, func(done, total int) { calls++ })
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)

	_, err = svc.Optimize(context.Background(), base, nil, 1, nil)
	assert.ErrorIs(t, err, ports.ErrConfigurationInvalid)
}

func TestBacktestService_Report(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockBarProvider(ctrl)
	repo := mocks.NewMockRunRepository(ctrl)

	runs := []*domain.BacktestRun{{ID: "b", Variant: "sma_crossover"}, {ID: "a", Variant: "nyse_session"}}
	trades := []*domain.Trade{{ID: 1, RunID: "b"}}
	repo.EXPECT().ListRuns(gomock.Any(), 10).Return(runs, nil)
	repo.EXPECT().FindRun(gomock.Any(), "b").Return(runs[0], nil)
	repo.EXPECT().FindTradesByRun(gomock.Any(), "b").Return(trades, nil)
	repo.EXPECT().FindRun(gomock.Any(), "missing").Return(nil, ports.ErrNotFound)

	svc, err := NewBacktestService(testConfig(), &mockLogger{}, provider, repo, nil)
	require.NoError(t, err)

	got, err := svc.Report(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, runs, got)

	run, gotTrades, err := svc.RunDetails(context.Background(), "b")
	require.NoError(t, err)
	assert.Same(t, runs[0], run)
	assert.Equal(t, trades, gotTrades)

	_, _, err = svc.RunDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	noJournal, err := NewBacktestService(testConfig(), &mockLogger{}, provider, nil, nil)
	require.NoError(t, err)
	_, err = noJournal.Report(context.Background(), 10)
	assert.ErrorIs(t, err, ports.ErrConfigurationInvalid)
}
