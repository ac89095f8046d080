package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
	"go.uber.org/zap"
)

func TestRunnerModeTransitions(t *testing.T) {
	p := newFakeProvider()
	p.series[domain.Interval1h] = candlesAt(testStart, time.Hour, rampCloses(60, 100)...)
	dm, err := NewDataManager(p, zap.NewNop(), "XBTUSD", domain.Interval1h, "")
	if err != nil {
		t.Fatalf("NewDataManager: %v", err)
	}
	eng := NewEngine(EngineConfig{Symbol: "XBTUSD", Interval: domain.Interval1h, Balance: 10000, RiskPercentage: 100}, zap.NewNop(), nil)
	r := NewRunner(&probeStrategy{dm: dm}, eng, dm, zap.NewNop())

	if !r.Active() {
		t.Error("new runner should start active")
	}
	r.PutInactive()
	if r.Active() {
		t.Error("PutInactive should deactivate the runner")
	}
	r.PutLive()
	if !r.Active() {
		t.Error("PutLive should reactivate the runner")
	}
	r.PutLiveSimulation()
	if !r.Active() {
		t.Error("PutLiveSimulation should keep the runner active")
	}
}

func TestRunnerTickFailureDeactivates(t *testing.T) {
	p := newFakeProvider()
	p.err = errors.New("connection refused")
	dm, err := NewDataManager(p, zap.NewNop(), "XBTUSD", domain.Interval1h, "")
	if err != nil {
		t.Fatalf("NewDataManager: %v", err)
	}
	eng := NewEngine(EngineConfig{Symbol: "XBTUSD", Interval: domain.Interval1h, Balance: 10000, RiskPercentage: 100}, zap.NewNop(), nil)
	r := NewRunner(&probeStrategy{dm: dm}, eng, dm, zap.NewNop())

	r.tick(context.Background())
	if r.Active() {
		t.Error("a failed tick should deactivate the runner")
	}
}

func TestRunnerTickAdvancesStrategy(t *testing.T) {
	p := newFakeProvider()
	p.series[domain.Interval1h] = candlesAt(testStart, time.Hour, rampCloses(60, 100)...)
	dm, err := NewDataManager(p, zap.NewNop(), "XBTUSD", domain.Interval1h, "")
	if err != nil {
		t.Fatalf("NewDataManager: %v", err)
	}
	eng := NewEngine(EngineConfig{Symbol: "XBTUSD", Interval: domain.Interval1h, Balance: 10000, RiskPercentage: 100}, zap.NewNop(), nil)
	probe := &probeStrategy{dm: dm}
	r := NewRunner(probe, eng, dm, zap.NewNop())

	r.tick(context.Background())
	if !r.Active() {
		t.Error("healthy tick should leave the runner active")
	}
	if len(probe.lengths) != 1 {
		t.Errorf("strategy evaluated %d times, want 1", len(probe.lengths))
	}
	if dm.Data == nil || dm.Data.Len() != 60 {
		t.Errorf("data not loaded by tick")
	}
}
