package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

// DefaultBacktestOffset is the warm-up bar count reserved for indicator
// lookback before the first evaluated bar.
const DefaultBacktestOffset = 50

// Backtester replays a historical window bar-by-bar through the execution
// engine. At every step the strategy sees only the causally-valid prefix of
// the base series and the parent prefix up to the current bar's timestamp;
// no bar ever observes data newer than itself.
type Backtester struct {
	strategy Strategy
	engine   *Engine
	dm       *DataManager
	logger   *zap.Logger

	reporter domain.Reporter        // optional
	results  domain.TradeRepository // optional summary persistence

	duration int
	offset   int
	progress bool
}

func NewBacktester(strategy Strategy, engine *Engine, dm *DataManager, logger *zap.Logger, duration int) *Backtester {
	return &Backtester{
		strategy: strategy,
		engine:   engine,
		dm:       dm,
		logger:   logger,
		duration: duration,
		offset:   DefaultBacktestOffset,
	}
}

func (b *Backtester) WithOffset(offset int) *Backtester {
	b.offset = offset
	return b
}

func (b *Backtester) WithReporter(r domain.Reporter) *Backtester {
	b.reporter = r
	return b
}

func (b *Backtester) WithResultStore(s domain.TradeRepository) *Backtester {
	b.results = s
	return b
}

func (b *Backtester) WithProgress(show bool) *Backtester {
	b.progress = show
	return b
}

// Run executes the replay and returns the summary. A failing step aborts
// the loop, not the caller: whatever was accumulated up to the failure is
// still aggregated and reported.
func (b *Backtester) Run(ctx context.Context) (*domain.BacktestResult, error) {
	b.engine.Reset(b.engine.cfg.Balance)

	b.logger.Info("starting backtest",
		zap.String("strategy", b.strategy.Name()),
		zap.String("symbol", b.dm.Symbol()),
		zap.String("interval", string(b.dm.Interval())),
		zap.Int("duration", b.duration),
		zap.Int("offset", b.offset))

	if err := b.dm.Update(ctx, b.duration+b.offset); err != nil {
		return nil, err
	}

	original := b.dm.Data
	originalParent := b.dm.ParentData
	defer func() {
		b.dm.Data = original
		b.dm.ParentData = originalParent
	}()

	total := original.Len() - b.offset
	if total < 1 {
		return nil, fmt.Errorf("%w: %d candles fetched, %d reserved for warm-up",
			domain.ErrInsufficientData, original.Len(), b.offset)
	}
	if total > b.duration {
		total = b.duration
	}

	var bar *progressbar.ProgressBar
	if b.progress {
		bar = newProgressBar(total)
	}

	for i := 0; i < total; i++ {
		current := original.Candles[i+b.offset]

		b.dm.Data = original.Truncate(i + b.offset + 1)
		if originalParent != nil {
			b.dm.ParentData = originalParent.TruncateByTime(current.Timestamp)
			b.dm.Synchronize()
		}

		if err := runStep(b.strategy, b.engine, b.dm); err != nil {
			b.logger.Error("backtest step failed, aborting replay",
				zap.String("strategy", b.strategy.Name()),
				zap.String("symbol", b.dm.Symbol()),
				zap.String("interval", string(b.dm.Interval())),
				zap.Time("timestamp", current.Timestamp),
				zap.Error(err))
			break
		}

		// Preserve newly written annotations on the immutable original
		// series; SetX is write-once so replays never retro-edit a bar.
		ts := current.Timestamp
		if rec := b.dm.Data.Entry(ts); rec != nil {
			original.SetEntry(ts, rec)
		}
		if rec := b.dm.Data.Exit(ts); rec != nil {
			original.SetExit(ts, rec)
		}
		if rec := b.dm.Data.PartialClose(ts); rec != nil {
			original.SetPartialClose(ts, rec)
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	res := &domain.BacktestResult{
		StrategyName:   b.strategy.Name(),
		Symbol:         b.dm.Symbol(),
		Interval:       b.dm.Interval(),
		ParentInterval: b.dm.ParentInterval(),
		Duration:       total,
		Metrics:        b.engine.Metrics(),
		FinalBalance:   b.engine.Balance(),
		FinishedAt:     time.Now(),
	}

	b.logger.Info("backtest completed",
		zap.String("strategy", res.StrategyName),
		zap.String("symbol", res.Symbol),
		zap.String("interval", string(res.Interval)),
		zap.Int("total_trades", res.Metrics.TotalTrades),
		zap.Float64("win_rate", res.Metrics.WinRate),
		zap.Float64("profit_factor", res.Metrics.ProfitFactor),
		zap.Float64("total_profit_loss", res.Metrics.TotalProfitLoss),
		zap.Float64("final_balance", res.FinalBalance))

	if b.reporter != nil {
		if path, err := b.reporter.Render(original, res); err != nil {
			b.logger.Error("failed to render backtest report", zap.Error(err))
		} else {
			b.logger.Info("backtest report written", zap.String("path", path))
		}
	}
	if b.results != nil {
		if err := b.results.SaveBacktestResult(ctx, res); err != nil {
			b.logger.Error("failed to persist backtest result", zap.Error(err))
		}
	}
	return res, nil
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
