package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os/signal"
	"syscall"

	"sessionTrader/config"
	"sessionTrader/internal/bootstrap"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Wire logger, market data, variants and the run journal
	svc, err := bootstrap.NewService(cfg, bootstrap.Options{Journal: true})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize backtest service: %v", err)
	}
	defer svc.Close()

	// 3. Run every configured variant, stopping early on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summaries, err := svc.Run(ctx)
	if err != nil {
		svc.Logger.Error(ctx, err, "Backtest run failed")
		svc.Close()
		log.Fatalf("FATAL: Backtest run failed: %v", err)
	}

	for _, s := range summaries {
		svc.Logger.Info(ctx, "Backtest result", map[string]interface{}{
			"runID":       s.Run.ID,
			"strategy":    s.Run.Variant,
			"trades":      s.Metrics.TotalTrades,
			"winRate":     s.Metrics.WinRate * 100,
			"returnPct":   s.Run.ReturnPct,
			"maxDrawdown": s.Metrics.MaxDrawdown * 100,
			"sharpe":      s.Metrics.SharpeRatio,
			"finalEquity": s.Run.FinalEquity,
		})
	}
	svc.Logger.Info(ctx, "Application finished gracefully.")
}
