package backtesting

import (
	"context"
	"fmt"
	"math"
	"time"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy/analytics"
)

// DefaultCommission is charged on the notional of each fill.
const DefaultCommission = 0.002

// BacktestConfig holds configuration for backtesting
type BacktestConfig struct {
	RunID          string
	Symbol         string
	InitialEquity  float64
	Commission     float64 // fraction of notional per side
	FillOnNextOpen bool    // fill intents at the next bar's open instead of the deciding bar's close
	PeriodsPerYear float64 // used to annualise the Sharpe ratio
	Logger         ports.Logger
	Progress       func(done, total int)
}

// BacktestResult holds the results of a backtest
type BacktestResult struct {
	Strategy       string
	Trades         []*domain.Trade
	EquityCurve    []analytics.EquityPoint
	Metrics        *analytics.PerformanceMetrics
	FinalEquity    float64
	Bars           int
	FirstBar       time.Time
	LastBar        time.Time
	Intents        int // non-NoAction intents emitted by the engine
	RejectedOrders int // intents that could not be executed
}

// simulator tracks cash and the single long position of one run.
type simulator struct {
	cfg      BacktestConfig
	cash     float64
	position *domain.Position
	nextID   int64
	trades   []*domain.Trade
	rejected int
}

// Run drives engine bar by bar over bars and simulates fills.
//
// For each bar, a pending intent from the previous bar is filled at the open, then a standing
// stop is triggered if the low reaches it (filled at the stop, or at the open on a gap through it),
// then the engine decides on the trailing window ending at the bar. Any position still open after
// the last bar is closed at its close with reason END_OF_DATA.
func Run(ctx context.Context, engine ports.DecisionEngine, bars []*domain.Bar, cfg BacktestConfig) (*BacktestResult, error) {
	if engine == nil {
		return nil, fmt.Errorf("decision engine is required: %w", ports.ErrInvalidRequest)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("backtest %s: %w", engine.Name(), ports.ErrNoData)
	}
	if !(cfg.InitialEquity > 0) {
		return nil, fmt.Errorf("initial equity %v: %w", cfg.InitialEquity, ports.ErrInvalidEquity)
	}
	if cfg.Commission < 0 || cfg.Commission >= 1 {
		return nil, fmt.Errorf("commission %v must be in [0, 1): %w", cfg.Commission, ports.ErrInvalidRequest)
	}
	if cfg.Logger == nil {
		cfg.Logger = ports.NopLogger{}
	}

	sim := &simulator{cfg: cfg, cash: cfg.InitialEquity}
	result := &BacktestResult{
		Strategy:    engine.Name(),
		EquityCurve: make([]analytics.EquityPoint, 0, len(bars)),
		Bars:        len(bars),
	}
	lookback := max(engine.Lookback(), 1)

	var pending *domain.OrderIntent
	var lastValid *domain.Bar

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest %s stopped at bar %d: %w", engine.Name(), i, ports.ErrContextCanceled)
		}
		if cfg.Progress != nil {
			cfg.Progress(i+1, len(bars))
		}
		if !bar.Valid() {
			cfg.Logger.Warn(ctx, "Skipping malformed bar", map[string]interface{}{"index": i, "strategy": engine.Name()})
			continue
		}
		if result.FirstBar.IsZero() {
			result.FirstBar = bar.Time
		}
		lastValid = bar

		if pending != nil {
			sim.execute(ctx, *pending, bar.Open, bar.Time)
			pending = nil
		}
		sim.checkStop(ctx, bar)

		window := bars[max(0, i-lookback+1) : i+1]
		intent := engine.Decide(ctx, window, sim.position.Snapshot(), sim.equity(bar.Close))
		if !intent.IsNoAction() {
			result.Intents++
			if cfg.FillOnNextOpen {
				pending = &intent
			} else {
				sim.execute(ctx, intent, bar.Close, bar.Time)
			}
		}

		result.EquityCurve = append(result.EquityCurve, analytics.EquityPoint{
			Time:       bar.Time,
			Value:      sim.equity(bar.Close),
			InPosition: sim.position.IsOpen(),
		})
	}

	if lastValid == nil {
		return nil, fmt.Errorf("backtest %s: no valid bars: %w", engine.Name(), ports.ErrNoData)
	}
	if sim.position.IsOpen() {
		sim.closePosition(ctx, lastValid.Close, lastValid.Time, domain.CloseReasonEndOfData)
		result.EquityCurve[len(result.EquityCurve)-1].Value = sim.cash
		result.EquityCurve[len(result.EquityCurve)-1].InPosition = false
	}

	result.LastBar = lastValid.Time
	result.Trades = sim.trades
	result.FinalEquity = sim.cash
	result.RejectedOrders = sim.rejected
	result.Metrics = analytics.AnalyzePerformance(sim.trades, cfg.InitialEquity, result.EquityCurve, cfg.PeriodsPerYear)
	return result, nil
}

func (s *simulator) equity(price float64) float64 {
	if !s.position.IsOpen() {
		return s.cash
	}
	return s.cash + s.position.Quantity*price
}

func (s *simulator) execute(ctx context.Context, intent domain.OrderIntent, price float64, at time.Time) {
	switch intent.Action {
	case domain.ActionBuy:
		s.openPosition(ctx, intent, price, at)
	case domain.ActionClose:
		if !s.position.IsOpen() {
			s.rejected++
			return
		}
		s.closePosition(ctx, price, at, intent.CloseReason)
	}
}

func (s *simulator) openPosition(ctx context.Context, intent domain.OrderIntent, price float64, at time.Time) {
	if s.position.IsOpen() {
		s.rejected++
		return
	}
	notional := intent.Size * price
	fee := notional * s.cfg.Commission
	if !(intent.Size > 0) || math.IsInf(notional, 0) || notional+fee > s.cash {
		s.cfg.Logger.Debug(ctx, "Rejecting unaffordable order", map[string]interface{}{
			"size":  intent.Size,
			"price": price,
			"cash":  s.cash,
		})
		s.rejected++
		return
	}

	s.nextID++
	s.cash -= notional + fee
	s.position = &domain.Position{
		ID:         s.nextID,
		RunID:      s.cfg.RunID,
		Symbol:     s.cfg.Symbol,
		EntryPrice: price,
		Quantity:   intent.Size,
		StopLoss:   intent.StopPrice,
		EntryTime:  at,
		Status:     domain.StatusOpen,
		Commission: fee,
	}
	s.cfg.Logger.Debug(ctx, "Position opened", map[string]interface{}{
		"positionID": s.position.ID,
		"price":      price,
		"size":       intent.Size,
		"stopLoss":   intent.StopPrice,
	})
}

// checkStop fills a standing stop when the bar trades through it.
func (s *simulator) checkStop(ctx context.Context, bar *domain.Bar) {
	if !s.position.IsOpen() || s.position.StopLoss <= 0 || bar.Low > s.position.StopLoss {
		return
	}
	s.closePosition(ctx, math.Min(bar.Open, s.position.StopLoss), bar.Time, domain.CloseReasonStopLoss)
}

func (s *simulator) closePosition(ctx context.Context, price float64, at time.Time, reason domain.CloseReason) {
	pos := s.position
	proceeds := pos.Quantity * price
	fee := proceeds * s.cfg.Commission
	s.cash += proceeds - fee

	pos.ExitPrice = price
	pos.ExitTime = at
	pos.Status = domain.StatusClosed
	pos.Commission += fee
	pos.PNL = (price-pos.EntryPrice)*pos.Quantity - pos.Commission
	pos.CloseReason = reason

	s.trades = append(s.trades, &domain.Trade{
		RunID:       pos.RunID,
		PositionID:  pos.ID,
		Symbol:      pos.Symbol,
		EntryPrice:  pos.EntryPrice,
		ExitPrice:   price,
		Quantity:    pos.Quantity,
		StopLoss:    pos.StopLoss,
		PNL:         pos.PNL,
		Commission:  pos.Commission,
		EntryTime:   pos.EntryTime,
		ExitTime:    at,
		CloseReason: reason,
	})
	s.cfg.Logger.Debug(ctx, "Position closed", map[string]interface{}{
		"positionID": pos.ID,
		"price":      price,
		"pnl":        pos.PNL,
		"reason":     reason,
	})
	s.position = nil
}
