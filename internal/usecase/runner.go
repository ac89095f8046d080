package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// defaultFetchLimit is how many recent candles a live tick pulls; enough
// history for every shipped strategy's longest indicator warm-up.
const defaultFetchLimit = 180

// Runner drives one strategy instance in live/simulation mode. Each runner
// owns its data manager, engine and trade history; runners share nothing,
// so no synchronization between them is needed. A per-tick failure
// deactivates only this runner.
type Runner struct {
	strategy Strategy
	engine   *Engine
	dm       *DataManager
	logger   *zap.Logger

	active     atomic.Bool
	simulation atomic.Bool
	fetchLimit int
}

func NewRunner(strategy Strategy, engine *Engine, dm *DataManager, logger *zap.Logger) *Runner {
	r := &Runner{
		strategy:   strategy,
		engine:     engine,
		dm:         dm,
		logger:     logger,
		fetchLimit: defaultFetchLimit,
	}
	r.active.Store(true)
	r.simulation.Store(true)
	logStrategyConfig(logger, strategy.Name(), engine.cfg, dm.ParentInterval())
	return r
}

func (r *Runner) PutLive() {
	r.simulation.Store(false)
	r.active.Store(true)
}

func (r *Runner) PutLiveSimulation() {
	r.simulation.Store(true)
	r.active.Store(true)
}

func (r *Runner) PutInactive() {
	r.simulation.Store(false)
	r.active.Store(false)
}

func (r *Runner) Active() bool { return r.active.Load() }

func (r *Runner) Engine() *Engine { return r.engine }

// Run ticks on the interval-derived cadence until the context is cancelled
// or the runner deactivates. The active flag is checked at the top of each
// tick; there is no mid-step cancellation.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info("starting strategy runner",
		zap.String("strategy", r.strategy.Name()),
		zap.String("symbol", r.dm.Symbol()),
		zap.Duration("cadence", r.dm.SleepDuration()))

	ticker := time.NewTicker(r.dm.SleepDuration())
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("strategy runner stopped", zap.String("strategy", r.strategy.Name()))
			return
		case <-ticker.C:
			if !r.active.Load() {
				r.logger.Warn("strategy is not active, skipping run",
					zap.String("strategy", r.strategy.Name()))
				return
			}
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	if err := r.dm.Update(ctx, r.fetchLimit); err != nil {
		r.fail("data update failed", err)
		return
	}
	if err := runStep(r.strategy, r.engine, r.dm); err != nil {
		r.fail("strategy step failed", err)
	}
}

// fail deactivates this runner only; other instances in the process are
// unaffected.
func (r *Runner) fail(msg string, err error) {
	fields := []zap.Field{
		zap.String("strategy", r.strategy.Name()),
		zap.String("symbol", r.dm.Symbol()),
		zap.String("interval", string(r.dm.Interval())),
		zap.Error(err),
	}
	if r.dm.Data != nil {
		if last, ok := r.dm.Data.Last(); ok {
			fields = append(fields, zap.Time("timestamp", last.Timestamp))
		}
	}
	r.logger.Error(msg, fields...)
	r.PutInactive()
}
