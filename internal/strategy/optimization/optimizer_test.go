package optimization

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
	"sessionTrader/internal/strategy/analytics"
	"sessionTrader/internal/strategy/backtesting"
)

// trendBars declines, rallies and sells off, giving one 20/50 crossover in each direction.
func trendBars() []*domain.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, 0, 120)
	price := 0.0
	for i := 0; i < 120; i++ {
		switch {
		case i < 49:
			price = 100 - 0.5*float64(i)
		case i < 80:
			price += 3
		default:
			price -= 4
		}
		bars = append(bars, &domain.Bar{
			Time:   start.AddDate(0, 0, i),
			Symbol: "SPY",
			Open:   price,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
		})
	}
	return bars
}

func crossoverBase(t *testing.T) strategy.Config {
	t.Helper()
	cfg, err := strategy.Preset(strategy.PresetSMACrossover)
	require.NoError(t, err)
	return cfg
}

func TestNewOptimizer(t *testing.T) {
	tests := []struct {
		name    string
		ranges  []ParameterRange
		wantErr string
	}{
		{name: "valid", ranges: []ParameterRange{{Name: ParamFastWindow, Min: 5, Max: 10, Step: 5}}},
		{name: "no ranges", ranges: nil, wantErr: "at least one parameter range"},
		{name: "unknown parameter", ranges: []ParameterRange{{Name: "leverage", Min: 1, Max: 2, Step: 1}}, wantErr: `unknown parameter "leverage"`},
		{name: "zero step", ranges: []ParameterRange{{Name: ParamATRPeriod, Min: 1, Max: 2}}, wantErr: "positive step"},
		{name: "inverted range", ranges: []ParameterRange{{Name: ParamATRPeriod, Min: 5, Max: 2, Step: 1}}, wantErr: "min <= max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOptimizer(OptimizerConfig{ParameterRanges: tt.ranges})
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotNil(t, o.config.ScoreFunction)
				assert.NotNil(t, o.config.Logger)
				return
			}
			assert.ErrorIs(t, err, ports.ErrConfigurationInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGenerateParameterCombinations(t *testing.T) {
	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{
			{Name: ParamATRPeriod, Min: 10, Max: 14.6, Step: 2.3},
			{Name: ParamRiskFraction, Min: 0.1, Max: 0.3, Step: 0.1},
		},
	})
	require.NoError(t, err)

	combinations := o.generateParameterCombinations()
	require.Len(t, combinations, 9)

	seen := map[float64]bool{}
	for _, c := range combinations {
		seen[c[ParamATRPeriod]] = true
		assert.Contains(t, []float64{0.1, 0.2, 0.3}, c[ParamRiskFraction])
	}
	// 10, 12.3 and 14.6 round to whole periods.
	assert.Equal(t, map[float64]bool{10: true, 12: true, 15: true}, seen)
}

func TestApplyParams(t *testing.T) {
	base := crossoverBase(t)
	cfg := applyParams(base, map[string]float64{
		ParamSlowWindow:        30,
		ParamFastWindow:        10,
		ParamStopATRMultiplier: 1.5,
	})

	assert.Equal(t, 10, cfg.FastWindow)
	assert.Equal(t, 30, cfg.SlowWindow)
	assert.Equal(t, 1.5, cfg.StopATRMultiplier)
	assert.Equal(t, base.RiskFraction, cfg.RiskFraction)
	assert.Equal(t, "sma_crossover[fast_window=10,slow_window=30,stop_atr_multiplier=1.5]", cfg.Name)
	assert.Equal(t, 20, base.FastWindow, "base config must not change")
}

func TestOptimize(t *testing.T) {
	var mu sync.Mutex
	var progress []int

	o, err := NewOptimizer(OptimizerConfig{
		// 50 and 60 are not below the slow window and are skipped.
		ParameterRanges: []ParameterRange{{Name: ParamFastWindow, Min: 10, Max: 60, Step: 10}},
		Backtest: backtesting.BacktestConfig{
			InitialEquity:  10000,
			Commission:     backtesting.DefaultCommission,
			FillOnNextOpen: true,
			PeriodsPerYear: 252,
		},
		Workers: 2,
		Progress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 6, total)
			progress = append(progress, done)
		},
	})
	require.NoError(t, err)

	results, err := o.Optimize(context.Background(), crossoverBase(t), trendBars())
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Less(t, r.Config.FastWindow, r.Config.SlowWindow)
		assert.True(t, strings.HasPrefix(r.Config.Name, "sma_crossover[fast_window="), r.Config.Name)
		assert.Equal(t, float64(r.Config.FastWindow), r.Parameters[ParamFastWindow])
		require.NotNil(t, r.Metrics)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Score, r.Score)
		}
	}
	assert.Len(t, progress, 6)
	assert.Contains(t, progress, 6)
}

func TestOptimize_Errors(t *testing.T) {
	o, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: ParamFastWindow, Min: 10, Max: 20, Step: 10}},
		Backtest:        backtesting.BacktestConfig{InitialEquity: 10000},
	})
	require.NoError(t, err)

	_, err = o.Optimize(context.Background(), crossoverBase(t), nil)
	assert.ErrorIs(t, err, ports.ErrNoData)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Optimize(ctx, crossoverBase(t), trendBars())
	assert.ErrorIs(t, err, ports.ErrContextCanceled)

	log := &warnRecorder{}
	bad, err := NewOptimizer(OptimizerConfig{
		ParameterRanges: []ParameterRange{{Name: ParamFastWindow, Min: 10, Max: 20, Step: 10}},
		Logger:          log,
	})
	require.NoError(t, err)
	_, err = bad.Optimize(context.Background(), crossoverBase(t), trendBars())
	assert.ErrorIs(t, err, ports.ErrInvalidEquity)

	require.Len(t, log.warns, 2)
	for _, fields := range log.warns {
		assert.Contains(t, fields["strategy"], "sma_crossover[fast_window=")
		assert.Contains(t, fields["error"], "initial equity")
	}
}

// warnRecorder keeps the fields of every Warn call.
type warnRecorder struct {
	ports.NopLogger
	mu    sync.Mutex
	warns []map[string]interface{}
}

func (r *warnRecorder) Warn(_ context.Context, _ string, fields ...map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(fields) > 0 {
		r.warns = append(r.warns, fields[0])
	}
}

func TestDefaultScoreFunction(t *testing.T) {
	metrics := &analytics.PerformanceMetrics{
		TotalTrades:     5,
		WinRate:         0.6,
		ProfitFactor:    2.0,
		MaxDrawdown:     0.2,
		ReturnOnEquity:  0.5,
		RiskRewardRatio: 2.0,
	}

	expected := 0.6*0.3 + 2.0*0.2 + 0.8*0.2 + 0.5*0.2 + 2.0*0.1
	assert.InDelta(t, expected, DefaultScoreFunction(metrics), 1e-12)
	assert.Zero(t, DefaultScoreFunction(&analytics.PerformanceMetrics{}))
	assert.Zero(t, DefaultScoreFunction(nil))
	assert.Equal(t, 1.3, SharpeScore(&analytics.PerformanceMetrics{SharpeRatio: 1.3}))
}
