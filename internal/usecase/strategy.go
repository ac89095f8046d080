package usecase

import (
	"errors"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

// Signal is an entry decision.
type Signal string

const (
	SignalNone  Signal = ""
	SignalLong  Signal = "long"
	SignalShort Signal = "short"
)

// Strategy is a stateless-per-call decision function over the data
// manager's current base/parent window. Implementations declare their own
// minimum history and return no-signal when it is not met; that is a
// precondition check, not an error. During a backtest the window is a
// causally truncated prefix, so a strategy can never read future bars.
type Strategy interface {
	Name() string
	CheckEntry() Signal
	CheckExit() bool
	// CheckPartialClose returns the percentage of the position to close,
	// or 0 for none.
	CheckPartialClose() float64
}

// runStep evaluates one bar exactly the same way in live and backtest
// operation: entry when flat, otherwise exit, trailing stop and partial
// close checks, in that order.
func runStep(strat Strategy, eng *Engine, dm *DataManager) error {
	series := dm.Data

	if eng.Position() == nil {
		switch strat.CheckEntry() {
		case SignalLong:
			return eng.OpenLong(series)
		case SignalShort:
			return eng.OpenShort(series)
		}
		return nil
	}

	if strat.CheckExit() {
		if err := eng.ClosePosition(series, reasonExit); err != nil && !errors.Is(err, domain.ErrNoOpenPosition) {
			return err
		}
	}
	if eng.Position() != nil {
		if err := eng.CheckTrailingStop(series); err != nil && !errors.Is(err, domain.ErrNoOpenPosition) {
			return err
		}
	}
	if eng.Position() != nil {
		if pct := strat.CheckPartialClose(); pct != 0 {
			err := eng.PartialClose(series, pct)
			// Invalid percentages and racing closes are recoverable: the
			// operation was skipped and logged, the step goes on.
			if err != nil && !errors.Is(err, domain.ErrInvalidPercentage) && !errors.Is(err, domain.ErrNoOpenPosition) {
				return err
			}
		}
	}
	return nil
}

func logStrategyConfig(logger *zap.Logger, name string, cfg EngineConfig, parent domain.Interval) {
	logger.Info("initialized strategy",
		zap.String("strategy", name),
		zap.String("symbol", cfg.Symbol),
		zap.String("interval", string(cfg.Interval)),
		zap.String("parent_interval", string(parent)),
		zap.Float64("balance", cfg.Balance),
		zap.Float64("risk_percentage", cfg.RiskPercentage),
		zap.Float64("stop_loss_percentage", cfg.StopLossPercentage),
		zap.Float64("trailing_stop_percentage", cfg.TrailingStopPercentage),
		zap.Float64("slippage_percentage", cfg.SlippagePercentage))
}
