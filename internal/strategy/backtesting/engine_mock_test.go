package backtesting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/mocks"
)

func TestBacktest_DrivesEngineContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockDecisionEngine(ctrl)

	bars := ohlc(
		[4]float64{100, 101, 99, 100},
		[4]float64{100, 103, 99, 102},
		[4]float64{102, 103, 101, 102},
	)

	windowOf := func(n int) gomock.Matcher {
		return gomock.Cond(func(x any) bool {
			w, ok := x.([]*domain.Bar)
			return ok && len(w) == n
		})
	}
	open := domain.PositionSnapshot{Open: true, EntryPrice: 100, Size: 10, StopPrice: 95}

	engine.EXPECT().Name().Return("mocked").AnyTimes()
	engine.EXPECT().Lookback().Return(2).AnyTimes()
	gomock.InOrder(
		engine.EXPECT().Decide(gomock.Any(), windowOf(1), domain.PositionSnapshot{}, 10000.0).
			Return(domain.Buy(10, 95, domain.EntryReasonCrossover)),
		engine.EXPECT().Decide(gomock.Any(), windowOf(2), open, 9000.0+1020).
			Return(domain.Close(domain.CloseReasonTrendReversal)),
		engine.EXPECT().Decide(gomock.Any(), windowOf(2), domain.PositionSnapshot{}, 10020.0).
			Return(domain.NoAction()),
	)

	result, err := Run(context.Background(), engine, bars, BacktestConfig{
		InitialEquity:  10000,
		Commission:     0,
		PeriodsPerYear: 252,
	})
	require.NoError(t, err)
	assert.Equal(t, "mocked", result.Strategy)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, 100.0, result.Trades[0].EntryPrice)
	assert.Equal(t, 102.0, result.Trades[0].ExitPrice)
	assert.InDelta(t, 20, result.Trades[0].PNL, 1e-9)
	assert.Equal(t, 2, result.Intents)
}
