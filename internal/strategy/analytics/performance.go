package analytics

import (
	"math"
	"sort"
	"time"

	"sessionTrader/internal/domain"
)

// PerformanceMetrics holds performance statistics for one backtest run
type PerformanceMetrics struct {
	// Basic Metrics
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64 // fraction of trades with positive net PNL
	TotalProfit    float64
	GrossProfit    float64
	GrossLoss      float64 // positive number
	TotalFees      float64
	MaxDrawdown    float64 // fraction of peak equity
	ProfitFactor   float64 // gross profit / gross loss
	AverageWin     float64
	AverageLoss    float64 // negative number
	SharpeRatio    float64 // annualised from per-bar equity returns
	FinalBalance   float64
	ReturnOnEquity float64 // (final - initial) / initial
	BestTrade      float64 // highest trade return, fraction of entry notional
	WorstTrade     float64

	// Advanced Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AverageTradeDuration time.Duration
	Exposure             float64 // fraction of bars with an open position
	RecoveryFactor       float64
	Expectancy           float64
	RiskRewardRatio      float64
	MonthlyReturns       map[string]float64
	Drawdowns            []Drawdown
	EquityCurve          []EquityPoint
}

// Drawdown represents a drawdown period
type Drawdown struct {
	StartTime  time.Time
	EndTime    time.Time
	StartValue float64
	EndValue   float64
	Depth      float64
	Duration   time.Duration
}

// EquityPoint is the marked-to-market account value at the close of one bar
type EquityPoint struct {
	Time       time.Time
	Value      float64
	Drawdown   float64
	InPosition bool
}

// AnalyzePerformance calculates performance metrics from closed trades and the bar-by-bar equity curve.
// When curve is empty, drawdowns are measured on realised equity after each trade and the
// Sharpe ratio is left at zero. periodsPerYear annualises the Sharpe ratio (e.g. 252 for daily bars).
func AnalyzePerformance(trades []*domain.Trade, initialBalance float64, curve []EquityPoint, periodsPerYear float64) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance:   initialBalance,
		MonthlyReturns: make(map[string]float64),
		Drawdowns:      make([]Drawdown, 0),
		EquityCurve:    make([]EquityPoint, 0, len(curve)),
	}

	sorted := make([]*domain.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EntryTime.Before(sorted[j].EntryTime)
	})

	analyzeTrades(metrics, sorted, initialBalance)

	if len(curve) == 0 {
		curve = realisedCurve(sorted, initialBalance)
	} else {
		metrics.FinalBalance = curve[len(curve)-1].Value
		metrics.SharpeRatio = SharpeRatio(Returns(curve), periodsPerYear)
		metrics.Exposure = exposure(curve)
	}
	trackDrawdowns(metrics, curve, initialBalance)

	if initialBalance > 0 {
		metrics.ReturnOnEquity = (metrics.FinalBalance - initialBalance) / initialBalance
		if metrics.MaxDrawdown > 0 {
			metrics.RecoveryFactor = metrics.TotalProfit / (initialBalance * metrics.MaxDrawdown)
		}
	}
	return metrics
}

func analyzeTrades(metrics *PerformanceMetrics, trades []*domain.Trade, initialBalance float64) {
	var consecutiveWins, consecutiveLosses int
	var totalDuration time.Duration
	balance := initialBalance

	for i, trade := range trades {
		metrics.TotalTrades++
		metrics.TotalFees += trade.Commission
		if trade.PNL > 0 {
			metrics.WinningTrades++
			metrics.GrossProfit += trade.PNL
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			metrics.LosingTrades++
			metrics.GrossLoss -= trade.PNL
			consecutiveLosses++
			consecutiveWins = 0
		}
		metrics.MaxConsecutiveWins = max(metrics.MaxConsecutiveWins, consecutiveWins)
		metrics.MaxConsecutiveLosses = max(metrics.MaxConsecutiveLosses, consecutiveLosses)

		r := trade.ReturnPct()
		if i == 0 || r > metrics.BestTrade {
			metrics.BestTrade = r
		}
		if i == 0 || r < metrics.WorstTrade {
			metrics.WorstTrade = r
		}

		balance += trade.PNL
		metrics.TotalProfit += trade.PNL
		metrics.MonthlyReturns[trade.ExitTime.Format("2006-01")] += trade.PNL
		totalDuration += trade.Duration()
	}
	metrics.FinalBalance = balance

	if metrics.TotalTrades == 0 {
		return
	}
	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	if metrics.WinningTrades > 0 {
		metrics.AverageWin = metrics.GrossProfit / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AverageLoss = -metrics.GrossLoss / float64(metrics.LosingTrades)
	}
	if metrics.GrossLoss > 0 {
		metrics.ProfitFactor = metrics.GrossProfit / metrics.GrossLoss
	}
	if metrics.AverageLoss != 0 {
		metrics.RiskRewardRatio = metrics.AverageWin / -metrics.AverageLoss
	}
	metrics.Expectancy = (metrics.WinRate * metrics.AverageWin) + ((1 - metrics.WinRate) * metrics.AverageLoss)
	metrics.AverageTradeDuration = totalDuration / time.Duration(metrics.TotalTrades)
}

// realisedCurve is the equity after each trade exit, used when no bar curve is available.
func realisedCurve(trades []*domain.Trade, initialBalance float64) []EquityPoint {
	curve := make([]EquityPoint, 0, len(trades))
	balance := initialBalance
	for _, trade := range trades {
		balance += trade.PNL
		curve = append(curve, EquityPoint{Time: trade.ExitTime, Value: balance})
	}
	return curve
}

func trackDrawdowns(metrics *PerformanceMetrics, curve []EquityPoint, initialBalance float64) {
	if len(curve) == 0 {
		return
	}
	peak := initialBalance
	if peak <= 0 {
		peak = curve[0].Value
	}
	var current *Drawdown

	for _, p := range curve {
		if p.Value >= peak {
			if current != nil {
				current.EndTime = p.Time
				current.EndValue = p.Value
				current.Duration = current.EndTime.Sub(current.StartTime)
				metrics.Drawdowns = append(metrics.Drawdowns, *current)
				current = nil
			}
			peak = p.Value
		} else if peak > 0 {
			depth := (peak - p.Value) / peak
			if current == nil {
				current = &Drawdown{StartTime: p.Time, StartValue: peak, Depth: depth}
			} else {
				current.Depth = math.Max(current.Depth, depth)
			}
			metrics.MaxDrawdown = math.Max(metrics.MaxDrawdown, depth)
		}

		point := p
		if peak > 0 {
			point.Drawdown = (peak - p.Value) / peak
		}
		metrics.EquityCurve = append(metrics.EquityCurve, point)
	}

	// Close any open drawdown
	if current != nil {
		last := curve[len(curve)-1]
		current.EndTime = last.Time
		current.EndValue = last.Value
		current.Duration = current.EndTime.Sub(current.StartTime)
		metrics.Drawdowns = append(metrics.Drawdowns, *current)
	}
}

// Returns converts an equity curve into simple per-bar returns.
func Returns(curve []EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev == 0 {
			continue
		}
		returns = append(returns, curve[i].Value/prev-1)
	}
	return returns
}

// SharpeRatio is mean / sample standard deviation of returns, scaled by sqrt(periodsPerYear).
// A risk-free rate of zero is assumed. Flat or too-short series return zero.
func SharpeRatio(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}
	if periodsPerYear <= 0 {
		periodsPerYear = 1
	}
	return mean / stdDev * math.Sqrt(periodsPerYear)
}

func exposure(curve []EquityPoint) float64 {
	if len(curve) == 0 {
		return 0
	}
	in := 0
	for _, p := range curve {
		if p.InPosition {
			in++
		}
	}
	return float64(in) / float64(len(curve))
}

// GetMonthlyReturns returns the monthly returns as a sorted slice
func (m *PerformanceMetrics) GetMonthlyReturns() []MonthlyReturn {
	returns := make([]MonthlyReturn, 0, len(m.MonthlyReturns))
	for month, profit := range m.MonthlyReturns {
		date, _ := time.Parse("2006-01", month)
		returns = append(returns, MonthlyReturn{
			Month:  date,
			Return: profit,
		})
	}
	sort.Slice(returns, func(i, j int) bool {
		return returns[i].Month.Before(returns[j].Month)
	})
	return returns
}

// MonthlyReturn represents a monthly return value
type MonthlyReturn struct {
	Month  time.Time
	Return float64
}
