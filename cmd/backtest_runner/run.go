package main

import (
	"fmt"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sessionTrader/internal/app"
	"sessionTrader/internal/bootstrap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every configured variant over the same history and journal the results",
	Example: `  backtest_runner run --symbol SPY --interval 1d --start 2020-01-01 --end 2025-01-01
  backtest_runner run --variants sma_crossover,nyse_session --no-journal`,
	RunE: runBacktests,
}

var (
	runNoJournal bool
	runQuiet     bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runNoJournal, "no-journal", false, "do not record runs in the SQLite journal")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "hide the progress bar")
}

func runBacktests(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd, bootstrap.Options{Journal: !runNoJournal})
	if err != nil {
		return err
	}
	defer svc.Close()

	if !runQuiet {
		svc.SetProgress(variantProgress(len(svc.Config.Variants)))
	}

	summaries, err := svc.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)
	printSummaries(summaries)
	return nil
}

// variantProgress drives one bar over all concurrent runs. The total is only known once the
// first callback reports the bar count.
func variantProgress(variants int) app.ProgressFunc {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)
	return func(_ string, done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if bar == nil {
			bar = progressbar.NewOptions(total*variants,
				progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %d variants", variants)),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(100*time.Millisecond),
			)
		}
		_ = bar.Add(1)
	}
}

func printSummaries(summaries []*app.RunSummary) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Variant\tRun\tTrades\tWinRate%\tReturn%\tMaxDD%\tSharpe\tPF\tFinal\tRejected\t")
	for _, s := range summaries {
		m := s.Metrics
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t\n",
			s.Run.Variant,
			shortID(s.Run.ID),
			m.TotalTrades,
			m.WinRate*100,
			s.Run.ReturnPct,
			m.MaxDrawdown*100,
			m.SharpeRatio,
			m.ProfitFactor,
			s.Run.FinalEquity,
			s.RejectedOrders,
		)
	}
	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
