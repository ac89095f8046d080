package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS trades (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			action TEXT NOT NULL,
			price REAL NOT NULL,
			size REAL NOT NULL,
			amount REAL NOT NULL,
			logged_at DATETIME NOT NULL,
			reason TEXT,
			profit_loss REAL,
			percent_gain_loss REAL,
			result TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trades_symbol_interval ON trades(symbol, interval);`,
		`CREATE TABLE IF NOT EXISTS backtest_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			strategy TEXT NOT NULL,
			symbol TEXT NOT NULL,
			interval TEXT NOT NULL,
			parent_interval TEXT,
			duration INTEGER NOT NULL,
			total_trades INTEGER NOT NULL,
			win_trades INTEGER NOT NULL,
			loss_trades INTEGER NOT NULL,
			win_rate REAL NOT NULL,
			profit_factor REAL NOT NULL,
			total_profit_loss REAL NOT NULL,
			total_profit_loss_pct REAL NOT NULL,
			final_balance REAL NOT NULL,
			finished_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_backtest_results_strategy ON backtest_results(strategy, symbol);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}

	return nil
}

// TradeRepository Implementation

func (s *SQLiteStore) SaveTrade(ctx context.Context, rec *domain.TradeRecord) error {
	query := `INSERT INTO trades (symbol, interval, timestamp, action, price, size, amount, logged_at, reason, profit_loss, percent_gain_loss, result)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		rec.Symbol, string(rec.Interval), rec.Timestamp, string(rec.Action), rec.Price,
		rec.Size, rec.Amount, rec.LoggedAt, rec.Reason, rec.ProfitLoss, rec.PercentGainLoss, string(rec.Result))
	return err
}

func (s *SQLiteStore) ListTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	query := `SELECT symbol, interval, timestamp, action, price, size, amount, logged_at, reason, profit_loss, percent_gain_loss, result
			  FROM trades ORDER BY timestamp DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*domain.TradeRecord
	for rows.Next() {
		var rec domain.TradeRecord
		var interval, action, result string
		if err := rows.Scan(&rec.Symbol, &interval, &rec.Timestamp, &action, &rec.Price,
			&rec.Size, &rec.Amount, &rec.LoggedAt, &rec.Reason, &rec.ProfitLoss, &rec.PercentGainLoss, &result); err != nil {
			return nil, err
		}
		rec.Interval = domain.Interval(interval)
		rec.Action = domain.TradeAction(action)
		rec.Result = domain.TradeResult(result)
		trades = append(trades, &rec)
	}
	return trades, rows.Err()
}

// An unbounded profit factor (no losing trades) is stored as a sentinel
// because SQLite has no literal for infinity.
const profitFactorUnbounded = -1

func (s *SQLiteStore) SaveBacktestResult(ctx context.Context, res *domain.BacktestResult) error {
	profitFactor := res.Metrics.ProfitFactor
	if math.IsInf(profitFactor, 1) {
		profitFactor = profitFactorUnbounded
	}

	query := `INSERT INTO backtest_results (strategy, symbol, interval, parent_interval, duration,
			  total_trades, win_trades, loss_trades, win_rate, profit_factor,
			  total_profit_loss, total_profit_loss_pct, final_balance, finished_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		res.StrategyName, res.Symbol, string(res.Interval), string(res.ParentInterval), res.Duration,
		res.Metrics.TotalTrades, res.Metrics.WinTrades, res.Metrics.LossTrades,
		res.Metrics.WinRate, profitFactor,
		res.Metrics.TotalProfitLoss, res.Metrics.TotalProfitLossPct, res.FinalBalance, res.FinishedAt)
	return err
}

func (s *SQLiteStore) ListBacktestResults(ctx context.Context, limit int) ([]*domain.BacktestResult, error) {
	query := `SELECT strategy, symbol, interval, parent_interval, duration,
			  total_trades, win_trades, loss_trades, win_rate, profit_factor,
			  total_profit_loss, total_profit_loss_pct, final_balance, finished_at
			  FROM backtest_results ORDER BY finished_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.BacktestResult
	for rows.Next() {
		var res domain.BacktestResult
		var interval, parentInterval string
		if err := rows.Scan(&res.StrategyName, &res.Symbol, &interval, &parentInterval, &res.Duration,
			&res.Metrics.TotalTrades, &res.Metrics.WinTrades, &res.Metrics.LossTrades,
			&res.Metrics.WinRate, &res.Metrics.ProfitFactor,
			&res.Metrics.TotalProfitLoss, &res.Metrics.TotalProfitLossPct, &res.FinalBalance, &res.FinishedAt); err != nil {
			return nil, err
		}
		res.Interval = domain.Interval(interval)
		res.ParentInterval = domain.Interval(parentInterval)
		if res.Metrics.ProfitFactor == profitFactorUnbounded {
			res.Metrics.ProfitFactor = math.Inf(1)
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
