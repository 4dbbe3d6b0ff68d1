package domain

import "time"

// BacktestRun is the journal record of one variant evaluated over one bar history.
type BacktestRun struct {
	ID            string
	Variant       string
	Symbol        string
	Interval      string
	Params        string // Variant configuration, YAML encoded
	StartedAt     time.Time
	FinishedAt    time.Time
	FirstBar      time.Time
	LastBar       time.Time
	Bars          int
	InitialEquity float64
	FinalEquity   float64
	ReturnPct     float64
	SharpeRatio   float64
	MaxDrawdown   float64
	WinRate       float64
	TotalTrades   int
}
