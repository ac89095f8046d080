package usecase

import (
	"math"

	"github.com/vitos/crypto_strategy_bot/internal/domain"
)

// ComputeMetrics derives performance metrics from the closed trades of a
// trade history. Partial closes contribute to balance but only full closes
// count as trades here.
func ComputeMetrics(history []*domain.TradeRecord, balance float64) domain.PerformanceMetrics {
	var m domain.PerformanceMetrics
	var totalProfit, totalLoss float64

	for _, rec := range history {
		if rec.Action != domain.ActionClose {
			continue
		}
		m.TotalTrades++
		if rec.Result == domain.ResultWin {
			m.WinTrades++
			totalProfit += rec.ProfitLoss
		} else {
			m.LossTrades++
			totalLoss += math.Abs(rec.ProfitLoss)
		}
	}

	if m.TotalTrades == 0 {
		return m
	}

	m.WinRate = float64(m.WinTrades) / float64(m.TotalTrades)

	switch {
	case totalLoss == 0 && totalProfit > 0:
		m.ProfitFactor = math.Inf(1)
	case totalLoss == 0:
		m.ProfitFactor = 0
	default:
		m.ProfitFactor = totalProfit / totalLoss
	}

	m.TotalProfitLoss = totalProfit - totalLoss
	if balance != 0 {
		m.TotalProfitLossPct = m.TotalProfitLoss / balance * 100
	}
	return m
}
