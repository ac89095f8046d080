package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

const (
	reasonExit         = "exit"
	reasonTrailingStop = "trailing stop loss"
)

// EngineConfig carries the risk parameters of one strategy instance.
// When StopLossPercentage > 0 the position size is risk-per-unit-of-stop
// (riskAmount / (close * stop% / 100)); otherwise plain risk-amount sizing
// (riskAmount / close) is used.
type EngineConfig struct {
	Symbol                 string
	Interval               domain.Interval
	Balance                float64
	RiskPercentage         float64
	StopLossPercentage     float64
	TrailingStopPercentage float64
	SlippagePercentage     float64
}

// Engine applies entry/exit/partial-close decisions to the Flat/Long/Short
// position state machine: sizing, slippage, balance, trade history and
// performance metrics. All mutations are synchronous within the single
// tick or backtest step that triggered them.
type Engine struct {
	cfg    EngineConfig
	logger *zap.Logger
	trades domain.TradeRepository // optional persistence, may be nil

	balance  float64
	position *domain.Position
	history  []*domain.TradeRecord
	metrics  domain.PerformanceMetrics

	now func() time.Time
}

func NewEngine(cfg EngineConfig, logger *zap.Logger, trades domain.TradeRepository) *Engine {
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		trades:  trades,
		balance: cfg.Balance,
		now:     time.Now,
	}
}

func (e *Engine) Balance() float64                   { return e.balance }
func (e *Engine) Position() *domain.Position         { return e.position }
func (e *Engine) History() []*domain.TradeRecord     { return e.history }
func (e *Engine) Metrics() domain.PerformanceMetrics { return e.metrics }

// Reset restores the engine to a flat state with the given starting
// balance. Used by the backtest driver before a replay.
func (e *Engine) Reset(balance float64) {
	e.balance = balance
	e.position = nil
	e.history = nil
	e.metrics = domain.PerformanceMetrics{}
}

// OpenLong transitions Flat -> Long at the current close plus slippage.
func (e *Engine) OpenLong(series *domain.Series) error {
	return e.open(series, domain.SideLong, domain.ActionLong)
}

// OpenShort transitions Flat -> Short at the current close minus slippage.
func (e *Engine) OpenShort(series *domain.Series) error {
	return e.open(series, domain.SideShort, domain.ActionShort)
}

func (e *Engine) open(series *domain.Series, side domain.Side, action domain.TradeAction) error {
	if e.position != nil {
		e.logger.Warn("entry signal ignored, position already open",
			zap.String("symbol", e.cfg.Symbol), zap.String("side", string(e.position.Side)))
		return nil
	}
	last, ok := series.Last()
	if !ok {
		return fmt.Errorf("%w: cannot open %s position on empty series", domain.ErrInsufficientData, side)
	}

	size, err := e.positionSize(last.Close)
	if err != nil {
		return err
	}

	execPrice := e.entryPrice(last.Close, side)
	e.position = &domain.Position{
		Side:       side,
		EntryPrice: execPrice,
		Size:       size,
	}

	rec := e.record(last.Timestamp, action, execPrice, size, "")
	series.SetEntry(last.Timestamp, rec)
	e.append(rec)

	e.logger.Info("opened position",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("interval", string(e.cfg.Interval)),
		zap.Time("timestamp", last.Timestamp),
		zap.String("side", string(side)),
		zap.Float64("size", size),
		zap.Float64("price", execPrice))
	return nil
}

// ClosePosition transitions Long/Short -> Flat, realizing P&L at the
// current close with slippage against the trader.
func (e *Engine) ClosePosition(series *domain.Series, reason string) error {
	if e.position == nil {
		e.logger.Warn("attempted to close position, but no position is open",
			zap.String("symbol", e.cfg.Symbol))
		return domain.ErrNoOpenPosition
	}
	last, ok := series.Last()
	if !ok {
		return fmt.Errorf("%w: cannot close position on empty series", domain.ErrInsufficientData)
	}

	pos := e.position
	execPrice := e.exitPrice(last.Close, pos.Side)
	pnl, pct := e.realize(pos, execPrice, pos.Size)
	e.balance += pnl

	rec := e.record(last.Timestamp, domain.ActionClose, execPrice, pos.Size, reason)
	rec.ProfitLoss = pnl
	rec.PercentGainLoss = pct
	rec.Result = tradeResult(pnl)
	series.SetExit(last.Timestamp, rec)
	e.position = nil
	e.append(rec)

	e.logger.Info("closed position",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("interval", string(e.cfg.Interval)),
		zap.Time("timestamp", last.Timestamp),
		zap.String("reason", reason),
		zap.Float64("price", execPrice),
		zap.Float64("profit_loss", pnl),
		zap.Float64("percent_gain_loss", pct),
		zap.String("result", string(rec.Result)))
	return nil
}

// PartialClose reduces the open position by percentage of its size,
// realizing proportional P&L and re-basing the entry price so that the
// remaining unrealized cost basis is preserved.
func (e *Engine) PartialClose(series *domain.Series, percentage float64) error {
	if e.position == nil {
		e.logger.Warn("cannot partially close: no position open",
			zap.String("symbol", e.cfg.Symbol))
		return domain.ErrNoOpenPosition
	}
	if percentage <= 0 || percentage > 100 {
		e.logger.Warn("invalid percentage for partial close, skipping",
			zap.String("symbol", e.cfg.Symbol), zap.Float64("percentage", percentage))
		return fmt.Errorf("%w: %v", domain.ErrInvalidPercentage, percentage)
	}
	last, ok := series.Last()
	if !ok {
		return fmt.Errorf("%w: cannot partially close on empty series", domain.ErrInsufficientData)
	}

	pos := e.position
	sizeBefore := pos.Size
	closeSize := sizeBefore * percentage / 100

	execPrice := e.exitPrice(last.Close, pos.Side)
	pnl, pct := e.realize(pos, execPrice, closeSize)
	e.balance += pnl

	rec := e.record(last.Timestamp, domain.ActionPartialClose, execPrice, closeSize, "")
	rec.ProfitLoss = pnl
	rec.PercentGainLoss = pct
	rec.Result = tradeResult(pnl)
	series.SetPartialClose(last.Timestamp, rec)

	pos.Size = sizeBefore - closeSize
	if pos.Size > 0 {
		// Re-base the entry on the cost basis left in the position, so
		// that realized P&L over any split of closes telescopes to the
		// whole-position P&L.
		remainingCost := pos.EntryPrice*sizeBefore - pos.EntryPrice*closeSize
		pos.EntryPrice = remainingCost / pos.Size
	}
	e.append(rec)

	e.logger.Info("partially closed position",
		zap.String("symbol", e.cfg.Symbol),
		zap.String("interval", string(e.cfg.Interval)),
		zap.Time("timestamp", last.Timestamp),
		zap.Float64("percentage", percentage),
		zap.Float64("size", closeSize),
		zap.Float64("profit_loss", pnl),
		zap.Float64("entry_price", pos.EntryPrice))
	return nil
}

// CheckTrailingStop maintains the trailing stop ratchet and force-closes
// the position when the current close breaches the stop. The stop only
// ever tightens over the life of a position.
func (e *Engine) CheckTrailingStop(series *domain.Series) error {
	if e.cfg.TrailingStopPercentage <= 0 {
		return nil
	}
	if e.position == nil {
		return domain.ErrNoOpenPosition
	}
	last, ok := series.Last()
	if !ok {
		return nil
	}

	pos := e.position
	trail := e.cfg.TrailingStopPercentage / 100

	if pos.StopLossPrice == 0 {
		// First bar after entry: seed the stop and the extreme tracker.
		pos.ExtremePrice = pos.EntryPrice
		if pos.Side == domain.SideLong {
			pos.StopLossPrice = pos.EntryPrice * (1 - trail)
		} else {
			pos.StopLossPrice = pos.EntryPrice * (1 + trail)
		}
		e.logger.Info("seeded trailing stop",
			zap.String("symbol", e.cfg.Symbol),
			zap.Float64("stop_loss_price", pos.StopLossPrice))
		return nil
	}

	if series.Len() >= 2 {
		prevClose := series.Candles[series.Len()-2].Close
		if pos.Side == domain.SideLong && prevClose > pos.ExtremePrice {
			pos.ExtremePrice = prevClose
		}
		if pos.Side == domain.SideShort && prevClose < pos.ExtremePrice {
			pos.ExtremePrice = prevClose
		}
	}

	if pos.Side == domain.SideLong {
		if candidate := pos.ExtremePrice * (1 - trail); candidate > pos.StopLossPrice {
			pos.StopLossPrice = candidate
			e.logger.Info("raised trailing stop",
				zap.String("symbol", e.cfg.Symbol), zap.Float64("stop_loss_price", candidate))
		}
		if last.Close <= pos.StopLossPrice {
			return e.ClosePosition(series, reasonTrailingStop)
		}
	} else {
		if candidate := pos.ExtremePrice * (1 + trail); candidate < pos.StopLossPrice {
			pos.StopLossPrice = candidate
			e.logger.Info("lowered trailing stop",
				zap.String("symbol", e.cfg.Symbol), zap.Float64("stop_loss_price", candidate))
		}
		if last.Close >= pos.StopLossPrice {
			return e.ClosePosition(series, reasonTrailingStop)
		}
	}
	return nil
}

// positionSize computes the unit size from the configured risk parameters.
func (e *Engine) positionSize(close float64) (float64, error) {
	if close <= 0 {
		return 0, fmt.Errorf("%w: non-positive close price %v", domain.ErrExecution, close)
	}
	riskAmount := e.balance * e.cfg.RiskPercentage / 100
	if e.cfg.StopLossPercentage > 0 {
		stopAmount := close * e.cfg.StopLossPercentage / 100
		return riskAmount / stopAmount, nil
	}
	return riskAmount / close, nil
}

// entryPrice applies slippage against the trader on entry.
func (e *Engine) entryPrice(close float64, side domain.Side) float64 {
	slip := e.cfg.SlippagePercentage / 100
	if side == domain.SideLong {
		return close * (1 + slip)
	}
	return close * (1 - slip)
}

// exitPrice applies slippage against the trader on exit.
func (e *Engine) exitPrice(close float64, side domain.Side) float64 {
	slip := e.cfg.SlippagePercentage / 100
	if side == domain.SideLong {
		return close * (1 - slip)
	}
	return close * (1 + slip)
}

func (e *Engine) realize(pos *domain.Position, execPrice, size float64) (pnl, pct float64) {
	if pos.Side == domain.SideLong {
		pnl = (execPrice - pos.EntryPrice) * size
		pct = (execPrice/pos.EntryPrice - 1) * 100
	} else {
		pnl = (pos.EntryPrice - execPrice) * size
		pct = (pos.EntryPrice/execPrice - 1) * 100
	}
	return pnl, pct
}

func (e *Engine) record(ts time.Time, action domain.TradeAction, price, size float64, reason string) *domain.TradeRecord {
	return &domain.TradeRecord{
		Symbol:    e.cfg.Symbol,
		Interval:  e.cfg.Interval,
		Timestamp: ts,
		Action:    action,
		Price:     price,
		Size:      size,
		Amount:    size * price,
		LoggedAt:  e.now(),
		Reason:    reason,
	}
}

func (e *Engine) append(rec *domain.TradeRecord) {
	e.history = append(e.history, rec)
	e.metrics = ComputeMetrics(e.history, e.balance)
	if e.trades != nil {
		if err := e.trades.SaveTrade(context.Background(), rec); err != nil {
			e.logger.Error("failed to persist trade record",
				zap.String("symbol", rec.Symbol), zap.Error(err))
		}
	}
}

func tradeResult(pnl float64) domain.TradeResult {
	if pnl > 0 {
		return domain.ResultWin
	}
	return domain.ResultLoss
}
