package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"sessionTrader/internal/domain"
	"sessionTrader/internal/ports"
)

// Repository implements the ports.RunRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	sq     sq.StatementBuilderType
	logger ports.Logger
}

var _ ports.RunRepository = (*Repository)(nil)

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

var runColumns = []string{
	"id", "variant", "symbol", "interval", "params", "started_at", "finished_at",
	"first_bar", "last_bar", "bars", "initial_equity", "final_equity",
	"return_pct", "sharpe_ratio", "max_drawdown", "win_rate", "total_trades",
}

var tradeColumns = []string{
	"id", "run_id", "position_id", "symbol", "entry_price", "exit_price", "quantity",
	"stop_loss", "pnl", "commission", "entry_time", "exit_time", "close_reason",
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationInvalid)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db" // Default path
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode lets the report command read while a run is being written.
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Concurrent variant runs share this handle; a single connection serialises their writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{
		db:     db,
		sq:     sq.StatementBuilder.PlaceholderFormat(sq.Question),
		logger: cfg.Logger,
	}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Debug(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_runs (
		id TEXT PRIMARY KEY,
		variant TEXT NOT NULL,
		symbol TEXT NOT NULL,
		interval TEXT NOT NULL,
		params TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		first_bar TIMESTAMP NOT NULL,
		last_bar TIMESTAMP NOT NULL,
		bars INTEGER NOT NULL,
		initial_equity REAL NOT NULL,
		final_equity REAL NOT NULL,
		return_pct REAL NOT NULL,
		sharpe_ratio REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		win_rate REAL NOT NULL,
		total_trades INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES backtest_runs (id) ON DELETE CASCADE,
		position_id INTEGER NULL,
		symbol TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL NOT NULL,
		quantity REAL NOT NULL,
		stop_loss REAL NOT NULL,
		pnl REAL NOT NULL,
		commission REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP NOT NULL,
		close_reason TEXT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_backtest_runs_started_at ON backtest_runs (started_at);
	CREATE INDEX IF NOT EXISTS idx_trades_run_entry_time ON trades (run_id, entry_time);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Debug(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// CreateRun saves a new run record.
func (r *Repository) CreateRun(ctx context.Context, run *domain.BacktestRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("run ID is required: %w", ports.ErrInvalidRequest)
	}
	query, args, err := r.sq.
		Insert("backtest_runs").
		Columns(runColumns...).
		Values(
			run.ID, run.Variant, run.Symbol, run.Interval, run.Params, run.StartedAt, run.FinishedAt,
			run.FirstBar, run.LastBar, run.Bars, run.InitialEquity, run.FinalEquity,
			run.ReturnPct, run.SharpeRatio, run.MaxDrawdown, run.WinRate, run.TotalTrades,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert for run %s: %w", run.ID, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, mapError(err))
	}
	r.logger.Debug(ctx, "Backtest run created", map[string]interface{}{"runID": run.ID, "variant": run.Variant})
	return nil
}

// SaveTrades stores the trades of a run in one transaction and assigns their IDs.
func (r *Repository) SaveTrades(ctx context.Context, runID string, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for run %s: %w", runID, mapError(err))
	}
	defer tx.Rollback()

	for _, trade := range trades {
		var positionID sql.NullInt64
		if trade.PositionID != 0 {
			positionID = sql.NullInt64{Int64: trade.PositionID, Valid: true}
		}
		query, args, err := r.sq.
			Insert("trades").
			Columns(tradeColumns[1:]...).
			Values(
				runID, positionID, trade.Symbol, trade.EntryPrice, trade.ExitPrice, trade.Quantity,
				trade.StopLoss, trade.PNL, trade.Commission, trade.EntryTime, trade.ExitTime, string(trade.CloseReason),
			).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build trade insert for run %s: %w", runID, err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert trade for run %s: %w", runID, mapError(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert ID for trade of run %s: %w", runID, err)
		}
		trade.ID = id
		trade.RunID = runID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trades for run %s: %w", runID, mapError(err))
	}
	r.logger.Debug(ctx, "Trades saved", map[string]interface{}{"runID": runID, "count": len(trades)})
	return nil
}

// FindRun retrieves a run by ID.
func (r *Repository) FindRun(ctx context.Context, id string) (*domain.BacktestRun, error) {
	query, args, err := r.sq.
		Select(runColumns...).
		From("backtest_runs").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run query: %w", err)
	}

	run, err := scanRun(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query run %s: %w", id, mapError(err))
	}
	return run, nil
}

// ListRuns retrieves the most recent runs, newest first, up to a limit.
// A non-positive limit returns every run.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*domain.BacktestRun, error) {
	builder := r.sq.
		Select(runColumns...).
		From("backtest_runs").
		OrderBy("started_at DESC", "variant ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build run list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", mapError(err))
	}
	defer rows.Close()

	runs := make([]*domain.BacktestRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run during ListRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// FindTradesByRun retrieves the trades of a run ordered by entry time.
func (r *Repository) FindTradesByRun(ctx context.Context, runID string) ([]*domain.Trade, error) {
	query, args, err := r.sq.
		Select(tradeColumns...).
		From("trades").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("entry_time ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for run %s: %w", runID, mapError(err))
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindTradesByRun: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// mapError translates driver errors into port errors.
func mapError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey,
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%v: %w", err, ports.ErrDuplicateEntry)
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked,
			sqliteErr.Code == sqlite3.ErrCantOpen:
			return fmt.Errorf("%v: %w", err, ports.ErrDBConnection)
		}
		return fmt.Errorf("%v: %w", err, ports.ErrQueryFailed)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%v: %w", err, ports.ErrContextCanceled)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, ports.ErrTimeout)
	}
	return err
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun scans a row into a domain.BacktestRun struct.
func scanRun(s scanner) (*domain.BacktestRun, error) {
	run := &domain.BacktestRun{}
	err := s.Scan(
		&run.ID, &run.Variant, &run.Symbol, &run.Interval, &run.Params, &run.StartedAt, &run.FinishedAt,
		&run.FirstBar, &run.LastBar, &run.Bars, &run.InitialEquity, &run.FinalEquity,
		&run.ReturnPct, &run.SharpeRatio, &run.MaxDrawdown, &run.WinRate, &run.TotalTrades)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	return run, nil
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	th := &domain.Trade{}
	var positionID sql.NullInt64
	var closeReason sql.NullString
	err := s.Scan(
		&th.ID, &th.RunID, &positionID, &th.Symbol, &th.EntryPrice, &th.ExitPrice, &th.Quantity,
		&th.StopLoss, &th.PNL, &th.Commission, &th.EntryTime, &th.ExitTime, &closeReason)
	if err != nil {
		return nil, err
	}
	if positionID.Valid {
		th.PositionID = positionID.Int64
	}
	if closeReason.Valid && closeReason.String != "" {
		th.CloseReason = domain.CloseReason(closeReason.String)
	} else {
		th.CloseReason = domain.CloseReasonUnknown
	}
	return th, nil
}
