package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sessionTrader/config"
	"sessionTrader/internal/adapters/logger"
	"sessionTrader/internal/bootstrap"
)

var rootCmd = &cobra.Command{
	Use:   "backtest_runner",
	Short: "Backtest, optimize and journal session-gated trading variants",
	Long: `backtest_runner evaluates strategy variants over historical bars.

Configuration is read from the environment (and a .env file); the flags below
override it for a single invocation.

Commands:
  run       run every configured variant and journal the results
  optimize  grid-search the parameters of one variant
  fetch     download bars from Binance or Polygon into the CSV data directory
  report    list journaled runs or show the trades of one run`,
	SilenceUsage: true,
}

var (
	flagSource       string
	flagDataPath     string
	flagSymbol       string
	flagInterval     string
	flagStart        string
	flagEnd          string
	flagVariants     []string
	flagVariantsFile string
	flagDBPath       string
	flagLogLevel     string
	flagLogFormat    string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagSource, "source", "", "market data source: csv, binance or polygon (DATA_SOURCE)")
	pf.StringVar(&flagDataPath, "data", "", "CSV file or directory (DATA_PATH)")
	pf.StringVarP(&flagSymbol, "symbol", "s", "", "symbol to load (SYMBOL)")
	pf.StringVarP(&flagInterval, "interval", "i", "", "bar interval, e.g. 1d or 1h (INTERVAL)")
	pf.StringVar(&flagStart, "start", "", "first day, inclusive, YYYY-MM-DD (START_DATE)")
	pf.StringVar(&flagEnd, "end", "", "last day, exclusive, YYYY-MM-DD (END_DATE)")
	pf.StringSliceVarP(&flagVariants, "variants", "v", nil, "comma separated variant names (VARIANTS)")
	pf.StringVar(&flagVariantsFile, "variants-file", "", "YAML file with extra or overriding variants (VARIANTS_FILE)")
	pf.StringVar(&flagDBPath, "db", "", "SQLite run journal (DB_PATH)")
	pf.StringVar(&flagLogLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (LOG_LEVEL)")
	pf.StringVar(&flagLogFormat, "log-format", "", "text or json (LOG_FORMAT)")
}

// loadConfig reads the environment and applies any flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.DataSource = flagSource
	}
	if flags.Changed("data") {
		cfg.DataPath = flagDataPath
	}
	if flags.Changed("symbol") {
		cfg.Symbol = flagSymbol
	}
	if flags.Changed("interval") {
		cfg.Interval = flagInterval
	}
	if flags.Changed("start") {
		if cfg.StartDate, err = time.Parse(config.DateLayout, flagStart); err != nil {
			return nil, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if flags.Changed("end") {
		if cfg.EndDate, err = time.Parse(config.DateLayout, flagEnd); err != nil {
			return nil, fmt.Errorf("invalid --end: %w", err)
		}
	}
	if flags.Changed("variants") {
		cfg.Variants = flagVariants
	}
	if flags.Changed("variants-file") {
		cfg.VariantsFile = flagVariantsFile
	}
	if flags.Changed("db") {
		cfg.DBPath = flagDBPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logger.ParseLevel(flagLogLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	return cfg, nil
}

// newService loads configuration and wires the backtest service for cmd.
func newService(cmd *cobra.Command, opts bootstrap.Options) (*bootstrap.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewService(cfg, opts)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
