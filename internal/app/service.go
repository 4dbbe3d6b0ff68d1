package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"sessionTrader/config"
	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
	"sessionTrader/internal/strategy/analytics"
	"sessionTrader/internal/strategy/backtesting"
	"sessionTrader/internal/strategy/optimization"
)

// ProgressFunc reports how many bars of a variant's run have been processed.
type ProgressFunc func(variant string, done, total int)

// RunSummary is the outcome of one variant over the configured history.
type RunSummary struct {
	Run            *domain.BacktestRun
	Metrics        *analytics.PerformanceMetrics
	Trades         []*domain.Trade
	Intents        int
	RejectedOrders int
}

// BacktestService orchestrates data loading, strategy evaluation and journaling.
type BacktestService struct {
	cfg      *config.Config
	logger   ports.Logger
	provider ports.BarProvider
	repo     ports.RunRepository // nil disables journaling
	variants []strategy.Config

	progressMu sync.Mutex
	progress   ProgressFunc
}

// NewBacktestService creates a new application service instance.
func NewBacktestService(
	cfg *config.Config,
	logger ports.Logger,
	provider ports.BarProvider,
	repo ports.RunRepository,
	variants []strategy.Config,
) (*BacktestService, error) {
	if cfg == nil || logger == nil || provider == nil {
		return nil, fmt.Errorf("missing required dependencies for BacktestService: %w", ports.ErrConfigurationInvalid)
	}
	if cfg.InitialEquity <= 0 {
		return nil, fmt.Errorf("configuration InitialEquity must be positive: %w", ports.ErrInvalidEquity)
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		return nil, fmt.Errorf("configuration StartDate must be before EndDate: %w", ports.ErrConfigurationInvalid)
	}

	return &BacktestService{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		repo:     repo,
		variants: variants,
	}, nil
}

// SetProgress installs a per-bar progress callback. It is called from concurrent runs.
func (s *BacktestService) SetProgress(fn ProgressFunc) {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	s.progress = fn
}

func (s *BacktestService) reportProgress(variant string) func(done, total int) {
	s.progressMu.Lock()
	fn := s.progress
	s.progressMu.Unlock()
	if fn == nil {
		return nil
	}
	return func(done, total int) { fn(variant, done, total) }
}

// FetchBars loads the configured symbol, interval and date range from the provider.
func (s *BacktestService) FetchBars(ctx context.Context) ([]*domain.Bar, error) {
	s.logger.Info(ctx, "Loading bars", map[string]interface{}{
		"symbol":   s.cfg.Symbol,
		"interval": s.cfg.Interval,
		"start":    s.cfg.StartDate.Format(config.DateLayout),
		"end":      s.cfg.EndDate.Format(config.DateLayout),
	})
	bars, err := s.provider.FetchBars(ctx, s.cfg.Symbol, s.cfg.Interval, s.cfg.StartDate, s.cfg.EndDate)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to load bars", map[string]interface{}{"symbol": s.cfg.Symbol})
		return nil, fmt.Errorf("loading %s %s bars: %w", s.cfg.Symbol, s.cfg.Interval, err)
	}
	s.logger.Info(ctx, "Loaded bars", map[string]interface{}{"count": len(bars)})
	return bars, nil
}

func (s *BacktestService) backtestConfig(runID string) backtesting.BacktestConfig {
	return backtesting.BacktestConfig{
		RunID:          runID,
		Symbol:         s.cfg.Symbol,
		InitialEquity:  s.cfg.InitialEquity,
		Commission:     s.cfg.Commission,
		FillOnNextOpen: s.cfg.FillOnNextOpen,
		PeriodsPerYear: s.cfg.PeriodsPerYear,
		Logger:         s.logger,
	}
}

// Run evaluates every configured variant over the same history, concurrently, and journals
// each run. Results are returned in variant order. The first failure cancels the remaining runs.
func (s *BacktestService) Run(ctx context.Context) ([]*RunSummary, error) {
	if len(s.variants) == 0 {
		return nil, fmt.Errorf("no strategy variants configured: %w", ports.ErrConfigurationInvalid)
	}

	// Build every engine before touching the data source so a bad variant fails fast.
	engines := make([]*strategy.Engine, 0, len(s.variants))
	for _, v := range s.variants {
		engine, err := strategy.New(v, nil, s.logger)
		if err != nil {
			return nil, fmt.Errorf("building variant %q: %w", v.Name, err)
		}
		engines = append(engines, engine)
	}

	bars, err := s.FetchBars(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]*RunSummary, len(engines))
	g, gctx := errgroup.WithContext(ctx)
	for i, engine := range engines {
		i, engine := i, engine
		g.Go(func() error {
			summary, err := s.runVariant(gctx, engine, bars)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("backtest run: %w", ports.ErrContextCanceled)
		}
		return nil, err
	}
	return summaries, nil
}

func (s *BacktestService) runVariant(ctx context.Context, engine *strategy.Engine, bars []*domain.Bar) (*RunSummary, error) {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()

	btCfg := s.backtestConfig(runID)
	btCfg.Progress = s.reportProgress(engine.Name())

	s.logger.Info(ctx, "Starting backtest", map[string]interface{}{"runID": runID, "strategy": engine.Name()})
	result, err := backtesting.Run(ctx, engine, bars, btCfg)
	if err != nil {
		s.logger.Error(ctx, err, "Backtest failed", map[string]interface{}{"runID": runID, "strategy": engine.Name()})
		return nil, fmt.Errorf("variant %q: %w", engine.Name(), err)
	}

	params, err := yaml.Marshal(engine.Config())
	if err != nil {
		return nil, fmt.Errorf("encoding variant %q parameters: %v: %w", engine.Name(), err, ports.ErrUnknown)
	}

	m := result.Metrics
	run := &domain.BacktestRun{
		ID:            runID,
		Variant:       engine.Name(),
		Symbol:        s.cfg.Symbol,
		Interval:      s.cfg.Interval,
		Params:        string(params),
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
		FirstBar:      result.FirstBar,
		LastBar:       result.LastBar,
		Bars:          result.Bars,
		InitialEquity: s.cfg.InitialEquity,
		FinalEquity:   result.FinalEquity,
		ReturnPct:     m.ReturnOnEquity * 100,
		SharpeRatio:   m.SharpeRatio,
		MaxDrawdown:   m.MaxDrawdown,
		WinRate:       m.WinRate,
		TotalTrades:   m.TotalTrades,
	}

	if s.repo != nil {
		if err := s.repo.CreateRun(ctx, run); err != nil {
			s.logger.Error(ctx, err, "Failed to save backtest run", map[string]interface{}{"runID": runID})
			return nil, fmt.Errorf("saving run %s: %w", runID, err)
		}
		if err := s.repo.SaveTrades(ctx, runID, result.Trades); err != nil {
			s.logger.Error(ctx, err, "Failed to save trades", map[string]interface{}{"runID": runID, "trades": len(result.Trades)})
			return nil, fmt.Errorf("saving trades of run %s: %w", runID, err)
		}
	}

	s.logger.Info(ctx, "Backtest finished", map[string]interface{}{
		"runID":       runID,
		"strategy":    engine.Name(),
		"trades":      m.TotalTrades,
		"returnPct":   run.ReturnPct,
		"maxDrawdown": m.MaxDrawdown,
		"sharpe":      m.SharpeRatio,
	})

	return &RunSummary{
		Run:            run,
		Metrics:        m,
		Trades:         result.Trades,
		Intents:        result.Intents,
		RejectedOrders: result.RejectedOrders,
	}, nil
}

// Optimize grid-searches ranges around base over the configured history.
// Results are sorted best first.
func (s *BacktestService) Optimize(ctx context.Context, base strategy.Config, ranges []optimization.ParameterRange, workers int, progress func(done, total int)) ([]optimization.Result, error) {
	opt, err := optimization.NewOptimizer(optimization.OptimizerConfig{
		ParameterRanges: ranges,
		Backtest:        s.backtestConfig(""),
		Workers:         workers,
		Logger:          s.logger,
		Progress:        progress,
	})
	if err != nil {
		return nil, err
	}

	bars, err := s.FetchBars(ctx)
	if err != nil {
		return nil, err
	}
	return opt.Optimize(ctx, base, bars)
}

// Report lists the most recent journaled runs, newest first.
func (s *BacktestService) Report(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("run journal is not configured: %w", ports.ErrConfigurationInvalid)
	}
	return s.repo.ListRuns(ctx, limit)
}

// RunDetails loads one journaled run and its trades.
func (s *BacktestService) RunDetails(ctx context.Context, id string) (*domain.BacktestRun, []*domain.Trade, error) {
	if s.repo == nil {
		return nil, nil, fmt.Errorf("run journal is not configured: %w", ports.ErrConfigurationInvalid)
	}
	run, err := s.repo.FindRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	trades, err := s.repo.FindTradesByRun(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return run, trades, nil
}
