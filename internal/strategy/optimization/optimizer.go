package optimization

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
	"sessionTrader/internal/strategy/analytics"
	"sessionTrader/internal/strategy/backtesting"
)

// Parameter names accepted in a ParameterRange.
const (
	ParamFastWindow        = "fast_window"
	ParamSlowWindow        = "slow_window"
	ParamRSIPeriod         = "rsi_period"
	ParamRSIOversold       = "rsi_oversold"
	ParamRSIOverbought     = "rsi_overbought"
	ParamVolumeWindow      = "volume_window"
	ParamVolumeThreshold   = "volume_threshold"
	ParamATRPeriod         = "atr_period"
	ParamStopATRMultiplier = "stop_atr_multiplier"
	ParamRiskFraction      = "risk_fraction"
)

// setters write one named parameter into a variant config.
var setters = map[string]func(*strategy.Config, float64){
	ParamFastWindow:        func(c *strategy.Config, v float64) { c.FastWindow = int(v) },
	ParamSlowWindow:        func(c *strategy.Config, v float64) { c.SlowWindow = int(v) },
	ParamRSIPeriod:         func(c *strategy.Config, v float64) { c.RSIPeriod = int(v) },
	ParamRSIOversold:       func(c *strategy.Config, v float64) { c.RSIOversold = v },
	ParamRSIOverbought:     func(c *strategy.Config, v float64) { c.RSIOverbought = v },
	ParamVolumeWindow:      func(c *strategy.Config, v float64) { c.VolumeWindow = int(v) },
	ParamVolumeThreshold:   func(c *strategy.Config, v float64) { c.VolumeThreshold = v },
	ParamATRPeriod:         func(c *strategy.Config, v float64) { c.ATRPeriod = int(v) },
	ParamStopATRMultiplier: func(c *strategy.Config, v float64) { c.StopATRMultiplier = v },
	ParamRiskFraction:      func(c *strategy.Config, v float64) { c.RiskFraction = v },
}

// integer parameters are rounded before they are applied.
var integer = map[string]bool{
	ParamFastWindow:   true,
	ParamSlowWindow:   true,
	ParamRSIPeriod:    true,
	ParamVolumeWindow: true,
	ParamATRPeriod:    true,
}

// ParameterRange defines a range for a parameter to optimize
type ParameterRange struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Result holds the outcome of one parameter combination
type Result struct {
	Parameters map[string]float64
	Config     strategy.Config
	Metrics    *analytics.PerformanceMetrics
	Score      float64
}

// OptimizerConfig holds configuration for the optimizer
type OptimizerConfig struct {
	ParameterRanges []ParameterRange
	Backtest        backtesting.BacktestConfig
	ScoreFunction   func(*analytics.PerformanceMetrics) float64

	// Workers bounds the number of concurrent backtests; zero means one per combination.
	Workers  int
	Logger   ports.Logger
	Progress func(done, total int)
}

// Optimizer implements strategy parameter optimization
type Optimizer struct {
	config OptimizerConfig
}

// NewOptimizer creates a new optimizer instance
func NewOptimizer(config OptimizerConfig) (*Optimizer, error) {
	if len(config.ParameterRanges) == 0 {
		return nil, fmt.Errorf("at least one parameter range is required: %w", ports.ErrConfigurationInvalid)
	}
	var errs []string
	for _, r := range config.ParameterRanges {
		if _, ok := setters[r.Name]; !ok {
			errs = append(errs, fmt.Sprintf("unknown parameter %q", r.Name))
			continue
		}
		if r.Step <= 0 || r.Max < r.Min {
			errs = append(errs, fmt.Sprintf("parameter %q needs min <= max and a positive step", r.Name))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(errs, "; "), ports.ErrConfigurationInvalid)
	}
	if config.ScoreFunction == nil {
		config.ScoreFunction = DefaultScoreFunction
	}
	if config.Logger == nil {
		config.Logger = ports.NopLogger{}
	}
	return &Optimizer{config: config}, nil
}

// Optimize runs one independent engine per parameter combination over bars and returns
// the results ordered by descending score. Combinations that fail validation are skipped.
// A failed backtest is logged and counted; its error is returned only when no combination succeeded.
func (o *Optimizer) Optimize(ctx context.Context, base strategy.Config, bars []*domain.Bar) ([]Result, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("optimize %s: %w", base.Name, ports.ErrNoData)
	}
	combinations := o.generateParameterCombinations()

	workers := o.config.Workers
	if workers <= 0 || workers > len(combinations) {
		workers = len(combinations)
	}
	sem := make(chan struct{}, workers)
	resultChan := make(chan Result, len(combinations))

	var wg sync.WaitGroup
	var mu sync.Mutex
	var done, skipped, failed int
	var firstErr error

	for _, params := range combinations {
		wg.Add(1)
		go func(params map[string]float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer func() {
				mu.Lock()
				done++
				if o.config.Progress != nil {
					o.config.Progress(done, len(combinations))
				}
				mu.Unlock()
			}()

			cfg := applyParams(base, params)
			engine, err := strategy.New(cfg, nil, ports.NopLogger{})
			if err != nil {
				mu.Lock()
				skipped++
				mu.Unlock()
				return
			}

			btCfg := o.config.Backtest
			btCfg.Progress = nil
			btCfg.Logger = ports.NopLogger{}
			result, err := backtesting.Run(ctx, engine, bars, btCfg)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				failed++
				mu.Unlock()
				if !errors.Is(err, ports.ErrContextCanceled) {
					o.config.Logger.Warn(ctx, "Backtest failed for parameter combination", map[string]interface{}{
						"strategy": cfg.Name,
						"error":    err.Error(),
					})
				}
				return
			}

			resultChan <- Result{
				Parameters: params,
				Config:     cfg,
				Metrics:    result.Metrics,
				Score:      o.config.ScoreFunction(result.Metrics),
			}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(combinations))
	for result := range resultChan {
		results = append(results, result)
	}

	if errors.Is(firstErr, ports.ErrContextCanceled) || ctx.Err() != nil {
		return nil, fmt.Errorf("optimize %s: %w", base.Name, ports.ErrContextCanceled)
	}
	if firstErr != nil && len(results) == 0 {
		return nil, fmt.Errorf("optimize %s: %w", base.Name, firstErr)
	}

	sortResultsByScore(results)

	o.config.Logger.Info(ctx, "Optimization finished", map[string]interface{}{
		"strategy":     base.Name,
		"combinations": len(combinations),
		"evaluated":    len(results),
		"skipped":      skipped,
		"failed":       failed,
	})
	return results, nil
}

// generateParameterCombinations generates all possible parameter combinations
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	currentCombination := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.config.ParameterRanges) {
			combination := make(map[string]float64, len(currentCombination))
			for k, v := range currentCombination {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.config.ParameterRanges[paramIndex]
		steps := int(math.Floor((param.Max-param.Min)/param.Step + 1e-9))
		for i := 0; i <= steps; i++ {
			value := param.Min + float64(i)*param.Step
			if integer[param.Name] {
				value = math.Round(value)
			} else {
				value = math.Round(value*1e9) / 1e9
			}
			currentCombination[param.Name] = value
			generate(paramIndex + 1)
		}
	}

	generate(0)
	return combinations
}

// applyParams returns a copy of base with params applied and a name that identifies them.
func applyParams(base strategy.Config, params map[string]float64) strategy.Config {
	cfg := base
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		setters[name](&cfg, params[name])
		parts = append(parts, fmt.Sprintf("%s=%g", name, params[name]))
	}
	cfg.Name = fmt.Sprintf("%s[%s]", base.Name, strings.Join(parts, ","))
	return cfg
}

// sortResultsByScore sorts optimization results by score in descending order
func sortResultsByScore(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Config.Name < results[j].Config.Name
	})
}

// DefaultScoreFunction provides a default scoring function for optimization
func DefaultScoreFunction(metrics *analytics.PerformanceMetrics) float64 {
	if metrics == nil || metrics.TotalTrades == 0 {
		return 0
	}
	score := 0.0

	score += metrics.WinRate * 0.3
	score += math.Min(metrics.ProfitFactor, 10) * 0.2
	score += (1 - metrics.MaxDrawdown) * 0.2
	score += metrics.ReturnOnEquity * 0.2
	score += math.Min(metrics.RiskRewardRatio, 10) * 0.1

	return score
}

// SharpeScore ranks combinations by annualised Sharpe ratio.
func SharpeScore(metrics *analytics.PerformanceMetrics) float64 {
	if metrics == nil {
		return 0
	}
	return metrics.SharpeRatio
}
