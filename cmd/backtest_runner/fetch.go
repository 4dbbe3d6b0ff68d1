package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sessionTrader/config"
	"sessionTrader/internal/adapters/csvfeed"
	"sessionTrader/internal/bootstrap"
	"sessionTrader/internal/ports"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download bars from Binance or Polygon into the CSV data directory",
	Example: `  backtest_runner fetch --source polygon --symbol SPY --interval 1h --start 2024-01-01 --end 2024-07-01
  backtest_runner fetch --source binance --symbol BTCUSDT --interval 4h --out ./data`,
	RunE: runFetch,
}

var fetchOut string

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOut, "out", "o", "", "output directory (defaults to DATA_PATH)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DataSource == config.DataSourceCSV {
		return fmt.Errorf("fetch needs a remote source, use --source binance or --source polygon: %w", ports.ErrInvalidRequest)
	}

	svc, err := bootstrap.NewService(cfg, bootstrap.Options{SkipVariants: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	out := fetchOut
	if out == "" {
		out = cfg.DataPath
	}

	spinner := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s %s from %s", cfg.Symbol, cfg.Interval, cfg.DataSource)),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
	)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
	}()

	bars, err := svc.FetchBars(cmd.Context())
	close(done)
	_ = spinner.Finish()
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	filename := filepath.Join(out, csvfeed.FileName(cfg.Symbol, cfg.Interval))
	if err := csvfeed.WriteFile(filename, bars); err != nil {
		return err
	}
	svc.Logger.Info(cmd.Context(), "Saved bars", map[string]interface{}{"filename": filename, "count": len(bars)})
	fmt.Printf("Saved %d bars to %s\n", len(bars), filename)
	return nil
}
