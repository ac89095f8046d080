package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

// DataManager owns the base-timeframe series and the optional parent
// ("trend filter") series for one symbol. It performs incremental
// append-only updates, counter-gated parent refreshes and timestamp
// synchronization between the two timeframes.
type DataManager struct {
	provider domain.MarketDataProvider
	logger   *zap.Logger

	symbol         string
	interval       domain.Interval
	parentInterval domain.Interval // "" when no parent timeframe is configured

	// Exposed so the backtest driver can swap in causally truncated
	// prefixes, exactly like live operation would see them.
	Data       *domain.Series
	ParentData *domain.Series

	updateCounter      int
	parentUpdatePeriod int
	latestParent       *domain.Candle
}

func NewDataManager(provider domain.MarketDataProvider, logger *zap.Logger, symbol string, interval, parentInterval domain.Interval) (*DataManager, error) {
	if _, err := interval.Minutes(); err != nil {
		return nil, err
	}
	m := &DataManager{
		provider:       provider,
		logger:         logger,
		symbol:         symbol,
		interval:       interval,
		parentInterval: parentInterval,
	}
	if parentInterval != "" {
		period, err := domain.ParentUpdatePeriod(interval, parentInterval)
		if err != nil {
			return nil, err
		}
		m.parentUpdatePeriod = period
		if !domain.IsAligned(interval, parentInterval) {
			logger.Warn("parent interval is not an integer multiple of base interval",
				zap.String("symbol", symbol),
				zap.String("interval", string(interval)),
				zap.String("parent_interval", string(parentInterval)))
		}
	}
	return m, nil
}

func (m *DataManager) Symbol() string                  { return m.symbol }
func (m *DataManager) Interval() domain.Interval       { return m.interval }
func (m *DataManager) ParentInterval() domain.Interval { return m.parentInterval }
func (m *DataManager) HasParent() bool                 { return m.parentInterval != "" }

// Update fetches up to limit most-recent base candles and appends only the
// ones newer than the last known bar, then conditionally refreshes the
// parent series and re-synchronizes. Safe to call repeatedly: a re-fetch
// with no new upstream candles leaves the series unchanged.
func (m *DataManager) Update(ctx context.Context, limit int) error {
	candles, err := m.provider.GetCandles(ctx, m.symbol, m.interval, limit)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrProviderFailure, m.symbol, m.interval, err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("%w: provider returned no candles for %s %s", domain.ErrInsufficientData, m.symbol, m.interval)
	}

	if m.Data == nil {
		m.Data = domain.NewSeries(m.symbol, m.interval, candles)
	} else {
		m.Data.Append(candles)
	}
	ComputeSupportResistance(m.Data, 15, 0.005, 5, 1.2)

	if m.HasParent() {
		if err := m.refreshParent(ctx, limit); err != nil {
			return err
		}
	}

	m.Synchronize()
	return nil
}

// refreshParent re-fetches the parent series only every parentUpdatePeriod
// calls; the counter advances on every call regardless, wrapping at the
// period. This keeps a slow timeframe from being fetched on every fast tick.
func (m *DataManager) refreshParent(ctx context.Context, limit int) error {
	refresh := m.updateCounter%m.parentUpdatePeriod == 0
	m.updateCounter++
	if m.updateCounter >= m.parentUpdatePeriod {
		m.updateCounter = 0
	}
	if !refresh && m.ParentData != nil {
		return nil
	}

	candles, err := m.provider.GetCandles(ctx, m.symbol, m.parentInterval, limit)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrProviderFailure, m.symbol, m.parentInterval, err)
	}
	if len(candles) == 0 {
		return fmt.Errorf("%w: provider returned no candles for %s %s", domain.ErrInsufficientData, m.symbol, m.parentInterval)
	}

	if m.ParentData == nil {
		m.ParentData = domain.NewSeries(m.symbol, m.parentInterval, candles)
	} else {
		m.ParentData.Append(candles)
	}
	return nil
}

// Synchronize finds, for the current last base timestamp T, the most recent
// parent candle at Tp <= T and validates that T falls inside the window
// [Tp, Tp+parentDuration). On a gap or misalignment the cached parent candle
// is cleared and a warning is logged; this is recoverable, never fatal.
func (m *DataManager) Synchronize() {
	m.latestParent = nil
	if !m.HasParent() || m.ParentData == nil || m.Data == nil {
		return
	}
	last, ok := m.Data.Last()
	if !ok {
		return
	}

	parentDur, err := m.parentInterval.Duration()
	if err != nil {
		return
	}

	candles := m.ParentData.Candles
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Timestamp.After(last.Timestamp) {
			continue
		}
		if last.Timestamp.Before(candles[i].Timestamp.Add(parentDur)) {
			parent := candles[i]
			m.latestParent = &parent
			return
		}
		break
	}

	m.logger.Warn("no parent candle covers the current base timestamp",
		zap.String("symbol", m.symbol),
		zap.String("interval", string(m.interval)),
		zap.String("parent_interval", string(m.parentInterval)),
		zap.Time("timestamp", last.Timestamp))
}

// LatestParent returns the parent candle covering the last base bar, or nil
// when synchronization found a gap.
func (m *DataManager) LatestParent() *domain.Candle { return m.latestParent }

// SleepDuration is the live-mode tick cadence: the base interval length.
func (m *DataManager) SleepDuration() time.Duration {
	minutes, err := m.interval.Minutes()
	if err != nil {
		return time.Minute
	}
	return time.Duration(minutes*60) * time.Second
}
