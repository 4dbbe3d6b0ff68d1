package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"sessionTrader/internal/bootstrap"
	"sessionTrader/internal/domain"
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "List journaled runs, or show the trades of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReport,
}

var reportLimit int

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportLimit, "limit", "n", 20, "number of runs to list (0 = all)")
}

func runReport(cmd *cobra.Command, args []string) error {
	svc, err := newService(cmd, bootstrap.Options{Journal: true, SkipVariants: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	if len(args) == 1 {
		run, trades, err := svc.RunDetails(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printRun(run, trades)
		return nil
	}

	runs, err := svc.Report(cmd.Context(), reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs journaled yet. Use `backtest_runner run` first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Run\tStarted\tVariant\tSymbol\tInterval\tBars\tTrades\tWinRate%\tReturn%\tMaxDD%\tSharpe\t")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%.1f\t%.2f\t%.2f\t%.2f\t\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Variant,
			r.Symbol,
			r.Interval,
			r.Bars,
			r.TotalTrades,
			r.WinRate*100,
			r.ReturnPct,
			r.MaxDrawdown*100,
			r.SharpeRatio,
		)
	}
	return w.Flush()
}

func printRun(run *domain.BacktestRun, trades []*domain.Trade) {
	fmt.Printf("Run %s: %s on %s %s\n", run.ID, run.Variant, run.Symbol, run.Interval)
	fmt.Printf("  Bars: %d (%s to %s)\n", run.Bars, run.FirstBar.Format(time.DateTime), run.LastBar.Format(time.DateTime))
	fmt.Printf("  Equity: %.2f -> %.2f (%.2f%%)\n", run.InitialEquity, run.FinalEquity, run.ReturnPct)
	fmt.Printf("  Max drawdown: %.2f%%  Sharpe: %.2f  Win rate: %.1f%%\n\n", run.MaxDrawdown*100, run.SharpeRatio, run.WinRate*100)
	fmt.Printf("Parameters:\n%s\n", run.Params)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tEntry\tExit\tQty\tEntryPx\tExitPx\tStop\tPNL\tReason\t")
	for i, t := range trades {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.4f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t\n",
			i+1,
			t.EntryTime.Format(time.DateTime),
			t.ExitTime.Format(time.DateTime),
			t.Quantity,
			t.EntryPrice,
			t.ExitPrice,
			t.StopLoss,
			t.PNL,
			t.CloseReason,
		)
	}
	w.Flush()
}
