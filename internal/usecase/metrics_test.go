package usecase

import (
	"math"
	"testing"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

func closeRecord(pnl float64) *domain.TradeRecord {
	rec := &domain.TradeRecord{Action: domain.ActionClose, ProfitLoss: pnl, Result: domain.ResultLoss}
	if pnl > 0 {
		rec.Result = domain.ResultWin
	}
	return rec
}

func TestComputeMetricsCountsOnlyFullCloses(t *testing.T) {
	history := []*domain.TradeRecord{
		{Action: domain.ActionLong},
		{Action: domain.ActionPartialClose, ProfitLoss: 50, Result: domain.ResultWin},
		closeRecord(300),
	}
	m := ComputeMetrics(history, 10000)
	if m.TotalTrades != 1 {
		t.Errorf("TotalTrades = %d, want 1 (entries and partial closes excluded)", m.TotalTrades)
	}
	if m.WinTrades != 1 || m.LossTrades != 0 {
		t.Errorf("win/loss = %d/%d, want 1/0", m.WinTrades, m.LossTrades)
	}
}

func TestComputeMetricsMixed(t *testing.T) {
	history := []*domain.TradeRecord{
		closeRecord(300),
		closeRecord(200),
		closeRecord(-250),
	}
	m := ComputeMetrics(history, 10000)

	if m.TotalTrades != 3 || m.WinTrades != 2 || m.LossTrades != 1 {
		t.Errorf("trade counts = %d/%d/%d, want 3/2/1", m.TotalTrades, m.WinTrades, m.LossTrades)
	}
	if !approx(m.WinRate, 2.0/3.0, 1e-9) {
		t.Errorf("WinRate = %v, want 2/3", m.WinRate)
	}
	if !approx(m.ProfitFactor, 2, 1e-9) {
		t.Errorf("ProfitFactor = %v, want 2", m.ProfitFactor)
	}
	if !approx(m.TotalProfitLoss, 250, 1e-9) {
		t.Errorf("TotalProfitLoss = %v, want 250", m.TotalProfitLoss)
	}
	if !approx(m.TotalProfitLossPct, 2.5, 1e-9) {
		t.Errorf("TotalProfitLossPct = %v, want 2.5", m.TotalProfitLossPct)
	}
}

func TestProfitFactorEdgeCases(t *testing.T) {
	// Only wins: unbounded profit factor.
	m := ComputeMetrics([]*domain.TradeRecord{closeRecord(100)}, 10000)
	if !math.IsInf(m.ProfitFactor, 1) {
		t.Errorf("ProfitFactor = %v, want +Inf with no losses", m.ProfitFactor)
	}

	// A single break-even close: both totals zero.
	m = ComputeMetrics([]*domain.TradeRecord{closeRecord(0)}, 10000)
	if m.ProfitFactor != 0 {
		t.Errorf("ProfitFactor = %v, want 0 when profit and loss are both zero", m.ProfitFactor)
	}

	// Empty history.
	m = ComputeMetrics(nil, 10000)
	if m.TotalTrades != 0 || m.ProfitFactor != 0 || m.WinRate != 0 {
		t.Errorf("empty history metrics = %+v, want zero value", m)
	}
}
