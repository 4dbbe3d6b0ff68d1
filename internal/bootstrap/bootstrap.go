// Package bootstrap wires configuration to concrete adapters for the command-line entry points.
package bootstrap

import (
	"context"
	"fmt"

	"sessionTrader/config"
	"sessionTrader/internal/adapters/binanceclient"
	"sessionTrader/internal/adapters/csvfeed"
	"sessionTrader/internal/adapters/logger"
	"sessionTrader/internal/adapters/polygonfeed"
	"sessionTrader/internal/adapters/sqlite"
	"sessionTrader/internal/app"
	"sessionTrader/internal/ports"
	"sessionTrader/internal/strategy"
)

// NewLogger builds the logger selected by LOG_FORMAT. The returned func flushes buffered output.
func NewLogger(cfg *config.Config) (ports.Logger, func(), error) {
	switch cfg.LogFormat {
	case config.LogFormatJSON:
		zl, err := logger.NewZapLogger(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing zap logger: %v: %w", err, ports.ErrConfigurationInvalid)
		}
		return zl, func() { _ = zl.Sync() }, nil
	case config.LogFormatText, "":
		return logger.NewStdLogger(cfg.LogLevel), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown log format %q: %w", cfg.LogFormat, ports.ErrConfigurationInvalid)
	}
}

// NewBarProvider builds the market data adapter selected by DATA_SOURCE.
func NewBarProvider(cfg *config.Config, log ports.Logger) (ports.BarProvider, error) {
	switch cfg.DataSource {
	case config.DataSourceCSV:
		return csvfeed.NewSource(cfg.DataPath, log), nil
	case config.DataSourceBinance:
		client, err := binanceclient.New(binanceclient.Config{
			APIKey:         cfg.APIKey,
			SecretKey:      cfg.SecretKey,
			UseTestnet:     cfg.IsTestnet,
			Logger:         log,
			RequestTimeout: cfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.DataSourcePolygon:
		client, err := polygonfeed.New(cfg.PolygonAPIKey, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown data source %q: %w", cfg.DataSource, ports.ErrConfigurationInvalid)
	}
}

// Service is a fully wired BacktestService together with the resources it owns.
type Service struct {
	*app.BacktestService
	Config *config.Config
	Logger ports.Logger

	repo  *sqlite.Repository
	flush func()
}

// Options select which optional parts NewService wires.
type Options struct {
	// Journal opens the SQLite run journal at cfg.DBPath.
	Journal bool
	// SkipVariants leaves the variant list empty, for commands that never call Run.
	SkipVariants bool
}

// NewService builds the logger, bar provider, variant list and, optionally, the run journal.
func NewService(cfg *config.Config, opts Options) (*Service, error) {
	log, flush, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	log.Info(ctx, "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})
	s := &Service{Config: cfg, Logger: log, flush: flush}

	provider, err := NewBarProvider(cfg, log)
	if err != nil {
		log.Error(ctx, err, "Failed to initialize market data provider", map[string]interface{}{"source": cfg.DataSource})
		s.Close()
		return nil, err
	}

	var variants []strategy.Config
	if !opts.SkipVariants {
		variants, err = config.ResolveVariants(cfg.Variants, cfg.VariantsFile)
		if err != nil {
			log.Error(ctx, err, "Failed to resolve strategy variants", map[string]interface{}{"variants": cfg.Variants})
			s.Close()
			return nil, err
		}
	}

	var repo ports.RunRepository
	if opts.Journal {
		s.repo, err = sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: log})
		if err != nil {
			log.Error(ctx, err, "Failed to initialize database repository")
			s.Close()
			return nil, err
		}
		repo = s.repo
		log.Info(ctx, "Database repository initialized", map[string]interface{}{"path": cfg.DBPath})
	}

	s.BacktestService, err = app.NewBacktestService(cfg, log, provider, repo, variants)
	if err != nil {
		log.Error(ctx, err, "Failed to initialize backtest service")
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the journal and flushes the logger.
func (s *Service) Close() {
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.Logger.Error(context.Background(), err, "Error closing database repository")
		}
		s.repo = nil
	}
	if s.flush != nil {
		s.flush()
	}
}
