package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sessionTrader/internal/adapters/logger" // Import the logger package for LogLevel
	"sessionTrader/internal/strategy"
)

// Data source names accepted in DATA_SOURCE.
const (
	DataSourceCSV     = "csv"
	DataSourceBinance = "binance"
	DataSourcePolygon = "polygon"
)

// Log formats accepted in LOG_FORMAT.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// DateLayout is the format of START_DATE and END_DATE.
const DateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	// Market data
	DataSource string // csv, binance or polygon
	DataPath   string // CSV file or directory
	Symbol     string
	Interval   string    // e.g. "1d", "1h"
	StartDate  time.Time // inclusive, UTC midnight
	EndDate    time.Time // exclusive, UTC midnight

	// Backtest
	InitialEquity  float64
	Commission     float64 // fraction of notional per fill
	FillOnNextOpen bool
	PeriodsPerYear float64 // bars per year, annualises the Sharpe ratio

	// Variants
	Variants     []string // variant names to run, in order
	VariantsFile string   // optional YAML file extending or overriding the presets

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel // Use the LogLevel type from the logger adapter
	LogFormat string

	// Binance API
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Polygon API
	PolygonAPIKey string

	// Connection Settings
	RequestTimeout time.Duration
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Market data
	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", DataSourceCSV))
	switch cfg.DataSource {
	case DataSourceCSV, DataSourceBinance, DataSourcePolygon:
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be one of csv, binance, polygon (got %q)", cfg.DataSource))
	}
	cfg.DataPath = getEnv("DATA_PATH", "./data")

	cfg.Symbol = getEnv("SYMBOL", "SPY")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.Interval = getEnv("INTERVAL", "1d")

	cfg.StartDate, err = getEnvAsDateRequired("START_DATE", "2020-01-01")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid START_DATE: %v", err))
	}
	cfg.EndDate, err = getEnvAsDateRequired("END_DATE", "2025-01-01")
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid END_DATE: %v", err))
	}
	if !cfg.StartDate.IsZero() && !cfg.EndDate.IsZero() && !cfg.StartDate.Before(cfg.EndDate) {
		errs = append(errs, "START_DATE must be before END_DATE")
	}

	// Backtest
	cfg.InitialEquity, err = getEnvAsFloatRequired("INITIAL_EQUITY", 10000)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INITIAL_EQUITY: %v", err))
	} else if cfg.InitialEquity <= 0 {
		errs = append(errs, "INITIAL_EQUITY must be positive")
	}

	cfg.Commission, err = getEnvAsFloatRequired("COMMISSION", 0.002)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COMMISSION: %v", err))
	} else if cfg.Commission < 0 || cfg.Commission >= 1 {
		errs = append(errs, "COMMISSION must be between 0.0 (inclusive) and 1.0 (exclusive)")
	}

	cfg.FillOnNextOpen = getEnvAsBool("FILL_ON_NEXT_OPEN", true)

	cfg.PeriodsPerYear, err = getEnvAsFloatRequired("PERIODS_PER_YEAR", 252)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PERIODS_PER_YEAR: %v", err))
	} else if cfg.PeriodsPerYear <= 0 {
		errs = append(errs, "PERIODS_PER_YEAR must be positive")
	}

	// Variants
	cfg.Variants = getEnvAsList("VARIANTS", strategy.PresetNames())
	if len(cfg.Variants) == 0 {
		errs = append(errs, "VARIANTS must name at least one variant")
	}
	cfg.VariantsFile = getEnv("VARIANTS_FILE", "")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/backtests.db")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", LogFormatText))
	if cfg.LogFormat != LogFormatText && cfg.LogFormat != LogFormatJSON {
		errs = append(errs, "LOG_FORMAT must be text or json")
	}

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Polygon API
	cfg.PolygonAPIKey = getEnv("POLYGON_API_KEY", "")
	if cfg.DataSource == DataSourcePolygon && cfg.PolygonAPIKey == "" {
		errs = append(errs, "POLYGON_API_KEY must be set when DATA_SOURCE is polygon")
	}

	// Connection Settings
	timeoutSeconds := getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 30)
	if timeoutSeconds <= 0 {
		errs = append(errs, "REQUEST_TIMEOUT_SECONDS must be positive")
	}
	cfg.RequestTimeout = time.Duration(timeoutSeconds) * time.Second

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDateRequired(key, defaultValue string) (time.Time, error) {
	valueStr := getEnv(key, defaultValue)
	value, err := time.ParseInLocation(DateLayout, valueStr, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' for key %s, want YYYY-MM-DD: %w", valueStr, key, err)
	}
	return value, nil
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
