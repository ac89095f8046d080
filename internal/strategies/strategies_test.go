package strategies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"github.com/vitos/crypto_strategy_bot/internal/usecase"
	"go.uber.org/zap"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func candlesFromCloses(start time.Time, step time.Duration, closes []float64) []domain.Candle {
	out := make([]domain.Candle, len(closes))
	for i, c := range closes {
		out[i] = domain.Candle{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return out
}

// stubProvider serves one fixed candle slice per interval.
type stubProvider struct {
	candles map[domain.Interval][]domain.Candle
}

func (p *stubProvider) GetCandles(_ context.Context, _ string, interval domain.Interval, limit int) ([]domain.Candle, error) {
	candles := p.candles[interval]
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func newTestDM(t *testing.T, interval, parent domain.Interval) *usecase.DataManager {
	t.Helper()
	dm, err := usecase.NewDataManager(&stubProvider{}, zap.NewNop(), "XBTUSD", interval, parent)
	if err != nil {
		t.Fatalf("NewDataManager: %v", err)
	}
	return dm
}

func newTestEngine(cfg usecase.EngineConfig) *usecase.Engine {
	cfg.Symbol = "XBTUSD"
	cfg.Interval = domain.Interval1h
	return usecase.NewEngine(cfg, zap.NewNop(), nil)
}

func TestRegistryNames(t *testing.T) {
	want := []string{"macd", "mfi_sma", "mfi_sma_parent_macd", "rsi_sma", "stoch_rsi"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRegistryUnknownStrategy(t *testing.T) {
	dm := newTestDM(t, domain.Interval1h, "")
	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100})
	if _, err := New("bollinger", dm, eng, zap.NewNop(), Params{}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestRegistryParentRequirement(t *testing.T) {
	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100})

	dm := newTestDM(t, domain.Interval1h, "")
	if _, err := New("mfi_sma_parent_macd", dm, eng, zap.NewNop(), Params{}); !errors.Is(err, domain.ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration without parent interval, got %v", err)
	}

	dm = newTestDM(t, domain.Interval1h, domain.Interval4h)
	strat, err := New("mfi_sma_parent_macd", dm, eng, zap.NewNop(), Params{})
	if err != nil {
		t.Fatalf("unexpected error with parent interval: %v", err)
	}
	if strat.Name() != "mfi_sma_parent_macd" {
		t.Errorf("Name = %s", strat.Name())
	}
}

func TestRegistryParamsPropagate(t *testing.T) {
	dm := newTestDM(t, domain.Interval1h, "")
	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100})

	strat, err := New("mfi_sma", dm, eng, zap.NewNop(), Params{TakeProfitGainPct: 5, TakeProfitClosePct: 50})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mfi, ok := strat.(*MFISMA)
	if !ok {
		t.Fatalf("expected *MFISMA, got %T", strat)
	}
	if mfi.TakeProfitGainPct != 5 || mfi.TakeProfitClosePct != 50 {
		t.Errorf("take-profit params = %v/%v, want 5/50", mfi.TakeProfitGainPct, mfi.TakeProfitClosePct)
	}
}

func TestMinimumHistoryGuards(t *testing.T) {
	dm := newTestDM(t, domain.Interval1h, "")
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i%5)
	}
	dm.Data = domain.NewSeries("XBTUSD", domain.Interval1h, candlesFromCloses(testStart, time.Hour, closes))

	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100})
	for _, strat := range []usecase.Strategy{
		NewRSISMA(dm, zap.NewNop()),
		NewMFISMA(dm, eng, zap.NewNop()),
		NewMACDCross(dm, eng, zap.NewNop()),
		NewStochRSICross(dm, eng, zap.NewNop()),
	} {
		if got := strat.CheckEntry(); got != usecase.SignalNone {
			t.Errorf("%s: CheckEntry on short history = %q, want no signal", strat.Name(), got)
		}
		if strat.CheckExit() {
			t.Errorf("%s: CheckExit on short history = true, want false", strat.Name())
		}
	}
}

func TestMFISMAPartialCloseOncePerPosition(t *testing.T) {
	dm := newTestDM(t, domain.Interval1h, "")
	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100})

	strat := NewMFISMA(dm, eng, zap.NewNop())
	strat.TakeProfitGainPct = 5
	strat.TakeProfitClosePct = 50

	series := domain.NewSeries("XBTUSD", domain.Interval1h,
		candlesFromCloses(testStart, time.Hour, []float64{100}))
	dm.Data = series
	if err := eng.OpenLong(series); err != nil {
		t.Fatalf("OpenLong: %v", err)
	}

	// Below the gain threshold: nothing to do.
	series.Append(candlesFromCloses(testStart.Add(time.Hour), time.Hour, []float64{103}))
	if pct := strat.CheckPartialClose(); pct != 0 {
		t.Errorf("CheckPartialClose below threshold = %v, want 0", pct)
	}

	// Threshold reached: fire once.
	series.Append(candlesFromCloses(testStart.Add(2*time.Hour), time.Hour, []float64{110}))
	if pct := strat.CheckPartialClose(); pct != 50 {
		t.Errorf("CheckPartialClose = %v, want 50", pct)
	}
	if err := eng.PartialClose(series, 50); err != nil {
		t.Fatalf("PartialClose: %v", err)
	}

	// Same position: the take-profit must not fire again.
	series.Append(candlesFromCloses(testStart.Add(3*time.Hour), time.Hour, []float64{120}))
	if pct := strat.CheckPartialClose(); pct != 0 {
		t.Errorf("CheckPartialClose after firing = %v, want 0", pct)
	}

	// A new position re-arms it.
	if err := eng.ClosePosition(series, "exit"); err != nil {
		t.Fatalf("ClosePosition: %v", err)
	}
	series.Append(candlesFromCloses(testStart.Add(4*time.Hour), time.Hour, []float64{100}))
	if err := eng.OpenLong(series); err != nil {
		t.Fatalf("OpenLong: %v", err)
	}
	series.Append(candlesFromCloses(testStart.Add(5*time.Hour), time.Hour, []float64{110}))
	if pct := strat.CheckPartialClose(); pct != 50 {
		t.Errorf("CheckPartialClose on new position = %v, want 50", pct)
	}
}

func TestRSISMABacktestEntersOnReversalAndExitsOnFade(t *testing.T) {
	// 50 falling bars (warm-up), 15 rising, 15 falling: the RSI crosses
	// above its SMA as the downtrend turns, and back below after the top.
	closes := make([]float64, 80)
	for i := range closes {
		switch {
		case i < 50:
			closes[i] = 150 - float64(i)
		case i < 65:
			closes[i] = 101 + 2*float64(i-49)
		default:
			closes[i] = 131 - 2*float64(i-64)
		}
	}

	provider := &stubProvider{candles: map[domain.Interval][]domain.Candle{
		domain.Interval1h: candlesFromCloses(testStart, time.Hour, closes),
	}}
	dm, err := usecase.NewDataManager(provider, zap.NewNop(), "XBTUSD", domain.Interval1h, "")
	if err != nil {
		t.Fatalf("NewDataManager: %v", err)
	}
	eng := newTestEngine(usecase.EngineConfig{Balance: 10000, RiskPercentage: 100, SlippagePercentage: 0.1})
	strat := NewRSISMA(dm, zap.NewNop())

	bt := usecase.NewBacktester(strat, eng, dm, zap.NewNop(), 30)
	res, err := bt.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	history := eng.History()
	if len(history) != 2 {
		t.Fatalf("history = %d records, want one entry and one close", len(history))
	}
	if history[0].Action != domain.ActionLong {
		t.Errorf("first record = %s, want long", history[0].Action)
	}
	if history[1].Action != domain.ActionClose {
		t.Errorf("second record = %s, want close", history[1].Action)
	}

	riseStart := testStart.Add(50 * time.Hour)
	fadeStart := testStart.Add(65 * time.Hour)
	if history[0].Timestamp.Before(riseStart) || !history[0].Timestamp.Before(fadeStart) {
		t.Errorf("entry at %v, want within the rising segment", history[0].Timestamp)
	}
	if history[1].Timestamp.Before(fadeStart) {
		t.Errorf("exit at %v, want within the fading segment", history[1].Timestamp)
	}
	if res.Metrics.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1", res.Metrics.TotalTrades)
	}
}
