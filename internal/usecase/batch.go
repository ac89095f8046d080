package usecase

import (
	"context"
	"sync"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

// RunBatch dispatches independent backtests to a bounded worker pool.
// Runs share no state; a panic or error in one is logged and does not
// affect the others. Results are returned in input order, with nil slots
// for failed runs.
func RunBatch(ctx context.Context, backtests []*Backtester, concurrency int, logger *zap.Logger) []*domain.BacktestResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]*domain.BacktestResult, len(backtests))
	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, bt := range backtests {
		wg.Add(1)
		go func(idx int, bt *Backtester) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			defer func() {
				if r := recover(); r != nil {
					logger.Error("backtest panicked",
						zap.String("strategy", bt.strategy.Name()),
						zap.String("symbol", bt.dm.Symbol()),
						zap.Any("panic", r))
				}
			}()

			res, err := bt.Run(ctx)
			if err != nil {
				logger.Error("backtest failed",
					zap.String("strategy", bt.strategy.Name()),
					zap.String("symbol", bt.dm.Symbol()),
					zap.String("interval", string(bt.dm.Interval())),
					zap.Error(err))
				return
			}
			results[idx] = res
		}(i, bt)
	}

	wg.Wait()
	return results
}
