package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sessionTrader/config"
	"sessionTrader/internal/bootstrap"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy/optimization"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Grid-search the parameters of one variant",
	Long: `optimize runs one backtest per combination of the given parameter ranges,
starting from the named variant, and prints the best scoring combinations.

Parameters: fast_window, slow_window, rsi_period, rsi_oversold, rsi_overbought,
volume_window, volume_threshold, atr_period, stop_atr_multiplier, risk_fraction.`,
	Example: `  backtest_runner optimize --variant sma_crossover --param fast_window=10:30:5 --param slow_window=40:100:10`,
	RunE:    runOptimize,
}

var (
	optVariant string
	optParams  []string
	optWorkers int
	optTop     int
	optScore   string
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVar(&optVariant, "variant", "sma_crossover", "variant to start from")
	optimizeCmd.Flags().StringArrayVarP(&optParams, "param", "p", nil, "parameter range as name=min:max:step (repeatable)")
	optimizeCmd.Flags().IntVarP(&optWorkers, "workers", "w", 0, "concurrent backtests (0 = one per combination)")
	optimizeCmd.Flags().IntVar(&optTop, "top", 10, "number of results to print")
	optimizeCmd.Flags().StringVar(&optScore, "score", "default", "ranking: default or sharpe")

	optimizeCmd.MarkFlagRequired("param")
}

// parseRange parses "name=min:max:step".
func parseRange(s string) (optimization.ParameterRange, error) {
	name, bounds, ok := strings.Cut(s, "=")
	parts := strings.Split(bounds, ":")
	if !ok || name == "" || len(parts) != 3 {
		return optimization.ParameterRange{}, fmt.Errorf("parameter range %q must look like name=min:max:step: %w", s, ports.ErrInvalidRequest)
	}
	values := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return optimization.ParameterRange{}, fmt.Errorf("parameter range %q: %v: %w", s, err, ports.ErrInvalidRequest)
		}
		values[i] = v
	}
	return optimization.ParameterRange{Name: strings.TrimSpace(name), Min: values[0], Max: values[1], Step: values[2]}, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ranges := make([]optimization.ParameterRange, 0, len(optParams))
	for _, p := range optParams {
		r, err := parseRange(p)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}

	svc, err := newService(cmd, bootstrap.Options{SkipVariants: true})
	if err != nil {
		return err
	}
	defer svc.Close()

	catalog, err := config.LoadVariants(svc.Config.VariantsFile)
	if err != nil {
		return err
	}
	base, ok := catalog[optVariant]
	if !ok {
		return fmt.Errorf("unknown variant %q: %w", optVariant, ports.ErrNotFound)
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Optimizing "+base.Name),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
			)
		}
		_ = bar.Set(done)
	}

	results, err := svc.Optimize(cmd.Context(), base, ranges, optWorkers, progress)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr)

	if optScore == "sharpe" {
		for i := range results {
			results[i].Score = optimization.SharpeScore(results[i].Metrics)
		}
		sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	}
	printResults(results, ranges, optTop)
	return nil
}

func printResults(results []optimization.Result, ranges []optimization.ParameterRange, top int) {
	if top > 0 && len(results) > top {
		results = results[:top]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{"#"}
	for _, r := range ranges {
		header = append(header, r.Name)
	}
	header = append(header, "Trades", "WinRate%", "Return%", "MaxDD%", "Sharpe", "Score")
	fmt.Fprintln(w, strings.Join(header, "\t")+"\t")

	for i, res := range results {
		row := []string{strconv.Itoa(i + 1)}
		for _, r := range ranges {
			row = append(row, strconv.FormatFloat(res.Parameters[r.Name], 'f', -1, 64))
		}
		m := res.Metrics
		row = append(row,
			strconv.Itoa(m.TotalTrades),
			fmt.Sprintf("%.1f", m.WinRate*100),
			fmt.Sprintf("%.2f", m.ReturnOnEquity*100),
			fmt.Sprintf("%.2f", m.MaxDrawdown*100),
			fmt.Sprintf("%.2f", m.SharpeRatio),
			fmt.Sprintf("%.4f", res.Score),
		)
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t")
	}
	w.Flush()
}
