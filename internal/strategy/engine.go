// Package strategy holds the per-bar decision engine shared by every trading variant.
package strategy

import (
	"context"
	"fmt"
	"math"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/risk"
	"sessionTrader/internal/session"
	"sessionTrader/internal/strategy/indicators"
	"sessionTrader/internal/strategy/signals"
)

// Engine turns a trailing window of bars into one order intent per bar.
// It holds only immutable configuration, so one Engine may serve many independent runs.
type Engine struct {
	cfg    Config
	gate   session.Gate
	sizer  *risk.Sizer
	logger ports.Logger
}

var _ ports.DecisionEngine = (*Engine)(nil)

// New validates cfg and builds an engine.
// A nil gate is built from cfg.Session and cfg.Seasonal; a non-nil gate replaces them.
func New(cfg Config, gate session.Gate, logger ports.Logger) (*Engine, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for strategy: %w", ports.ErrConfigurationInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sizer, err := risk.NewSizer(cfg.SizerConfig)
	if err != nil {
		return nil, err
	}
	if gate == nil {
		gate, err = session.Build(cfg.Session, cfg.Seasonal)
		if err != nil {
			return nil, fmt.Errorf("strategy %q: %w", cfg.Name, err)
		}
	}
	return &Engine{cfg: cfg, gate: gate, sizer: sizer, logger: logger}, nil
}

// Name returns the variant name.
func (e *Engine) Name() string {
	return e.cfg.Name
}

// Config returns the variant configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Lookback returns the number of trailing bars Decide reads.
func (e *Engine) Lookback() int {
	return e.cfg.Lookback()
}

// readings are the indicator values at the current bar (and the bar before, for crossovers).
type readings struct {
	bar       *domain.Bar
	fast      indicators.Series
	slow      indicators.Series
	rsi       indicators.Series
	atr       indicators.Series
	volume    indicators.Series
	volumeMA  indicators.Series
	last      int
	crossUp   bool
	crossDown bool
}

func (e *Engine) read(window []*domain.Bar) readings {
	closes := indicators.Closes(window)
	r := readings{
		bar:  window[len(window)-1],
		last: len(window) - 1,
		atr:  indicators.ATR(indicators.Highs(window), indicators.Lows(window), closes, e.cfg.ATRPeriod),
	}
	switch e.cfg.Rule {
	case RuleCrossover:
		r.fast = indicators.RollingMean(closes, e.cfg.FastWindow)
		r.slow = indicators.RollingMean(closes, e.cfg.SlowWindow)
		r.crossUp = signals.CrossedAbove(r.fast, r.slow, r.last)
		r.crossDown = signals.CrossedBelow(r.fast, r.slow, r.last)
	case RuleOversoldReversion:
		r.rsi = indicators.RSI(closes, e.cfg.RSIPeriod)
	}
	if e.cfg.VolumeWindow > 0 {
		volumes := indicators.Volumes(window)
		r.volume = indicators.FromValues(volumes...)
		r.volumeMA = indicators.RollingMean(volumes, e.cfg.VolumeWindow)
	}
	return r
}

// Decide returns the intent for the last bar of window.
//
// FLAT: a Buy is emitted when the gate is open, the rule's entry condition holds and the
// sizer accepts the stop derived from the current ATR. LONG: a Close is emitted on the
// rule's exit condition while the gate is open, or on a closed gate when ExitOnGateClose
// is set. An unclassifiable timestamp, missing history or a bad bar yield NoAction.
// Standing stops are enforced by the execution engine, not here.
func (e *Engine) Decide(ctx context.Context, window []*domain.Bar, position domain.PositionSnapshot, equity float64) domain.OrderIntent {
	if len(window) == 0 {
		return domain.NoAction()
	}
	if n := e.Lookback(); len(window) > n {
		window = window[len(window)-n:]
	}
	bar := window[len(window)-1]
	if !bar.Valid() {
		e.logger.Debug(ctx, "Skipping malformed bar", map[string]interface{}{"strategy": e.cfg.Name})
		return domain.NoAction()
	}

	status := e.gate.Status(bar.Time)
	if status == session.StatusUnknown {
		e.logger.Debug(ctx, "Session status unresolvable, holding", map[string]interface{}{
			"strategy": e.cfg.Name,
			"time":     bar.Time,
		})
		return domain.NoAction()
	}

	if position.Open {
		return e.decideExit(ctx, window, status)
	}
	if status != session.StatusOpen {
		return domain.NoAction()
	}
	return e.decideEntry(ctx, window, equity)
}

func (e *Engine) decideExit(ctx context.Context, window []*domain.Bar, status session.Status) domain.OrderIntent {
	bar := window[len(window)-1]
	if status == session.StatusClosed {
		if e.cfg.ExitOnGateClose {
			e.logger.Info(ctx, "Session window closed, exiting position", map[string]interface{}{
				"strategy": e.cfg.Name,
				"time":     bar.Time,
				"close":    bar.Close,
			})
			return domain.Close(domain.CloseReasonSessionClose)
		}
		return domain.NoAction()
	}

	r := e.read(window)
	switch e.cfg.Rule {
	case RuleCrossover:
		if r.crossDown {
			e.logger.Info(ctx, "Fast SMA crossed below slow SMA, exiting position", map[string]interface{}{
				"strategy": e.cfg.Name,
				"time":     bar.Time,
				"fast":     r.fast.Last().TakeOr(math.NaN()),
				"slow":     r.slow.Last().TakeOr(math.NaN()),
			})
			return domain.Close(domain.CloseReasonTrendReversal)
		}
	case RuleOversoldReversion:
		if signals.AboveAt(r.rsi, r.last, e.cfg.RSIOverbought) {
			e.logger.Info(ctx, "RSI overbought, exiting position", map[string]interface{}{
				"strategy": e.cfg.Name,
				"time":     bar.Time,
				"rsi":      r.rsi.Last().TakeOr(math.NaN()),
			})
			return domain.Close(domain.CloseReasonOverbought)
		}
	}
	return domain.NoAction()
}

func (e *Engine) decideEntry(ctx context.Context, window []*domain.Bar, equity float64) domain.OrderIntent {
	r := e.read(window)

	var reason domain.EntryReason
	switch e.cfg.Rule {
	case RuleCrossover:
		if !r.crossUp {
			return domain.NoAction()
		}
		reason = domain.EntryReasonCrossover
	case RuleOversoldReversion:
		if !signals.BelowAt(r.rsi, r.last, e.cfg.RSIOversold) {
			return domain.NoAction()
		}
		reason = domain.EntryReasonOversoldLowVolume
	default:
		return domain.NoAction()
	}

	if e.cfg.VolumeWindow > 0 && !signals.BelowScaled(r.volume, r.volumeMA, r.last, e.cfg.VolumeThreshold) {
		e.logger.Debug(ctx, "Entry signal filtered by volume", map[string]interface{}{
			"strategy": e.cfg.Name,
			"volume":   r.bar.Volume,
			"volumeMA": r.volumeMA.Last().TakeOr(math.NaN()),
		})
		return domain.NoAction()
	}

	atr, err := r.atr.Last().Take()
	if err != nil {
		e.logger.Debug(ctx, "Entry suppressed, ATR undefined", map[string]interface{}{"strategy": e.cfg.Name})
		return domain.NoAction()
	}
	plan, err := e.sizer.Plan(equity, r.bar.Close, atr)
	if err != nil {
		e.logger.Debug(ctx, "Entry suppressed by risk sizer", map[string]interface{}{
			"strategy": e.cfg.Name,
			"atr":      atr,
			"equity":   equity,
			"reason":   err.Error(),
		})
		return domain.NoAction()
	}

	e.logger.Info(ctx, "Entry conditions met", map[string]interface{}{
		"strategy":     e.cfg.Name,
		"time":         r.bar.Time,
		"close":        r.bar.Close,
		"atr":          atr,
		"size":         plan.Size,
		"stopPrice":    plan.StopPrice,
		"stopDistance": plan.StopDistance,
		"reason":       reason,
	})
	return domain.Buy(plan.Size, plan.StopPrice, reason)
}
