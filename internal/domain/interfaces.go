package domain

import "context"

// MarketDataProvider supplies OHLCV candle series for a symbol/interval.
// Candles must be returned in ascending timestamp order; an empty slice
// (or nil) means no data and is treated as a recoverable condition by
// callers.
type MarketDataProvider interface {
	GetCandles(ctx context.Context, symbol string, interval Interval, limit int) ([]Candle, error)
}

// TradeRepository persists executed trades and backtest summaries.
// Persistence failures never invalidate the in-memory engine state.
type TradeRepository interface {
	SaveTrade(ctx context.Context, rec *TradeRecord) error
	ListTrades(ctx context.Context, limit int) ([]*TradeRecord, error)

	SaveBacktestResult(ctx context.Context, res *BacktestResult) error
	ListBacktestResults(ctx context.Context, limit int) ([]*BacktestResult, error)
}

// Reporter renders an annotated series plus a backtest summary into a
// persisted artifact and returns its path. A render failure is logged by
// the caller but does not invalidate the backtest result.
type Reporter interface {
	Render(series *Series, res *BacktestResult) (string, error)
}
