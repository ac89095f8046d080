package domain

import "time"

// PerformanceMetrics is derived from the closed trades of a trade history.
// ProfitFactor is +Inf when there are wins and no losses, 0 when there are
// neither.
type PerformanceMetrics struct {
	TotalTrades        int     `json:"total_trades"`
	WinTrades          int     `json:"win_trades"`
	LossTrades         int     `json:"loss_trades"`
	WinRate            float64 `json:"win_rate"`
	ProfitFactor       float64 `json:"profit_factor"`
	TotalProfitLoss    float64 `json:"total_profit_loss"`
	TotalProfitLossPct float64 `json:"total_profit_loss_percentage"`
}

// BacktestResult is the end-of-run summary of one backtest.
type BacktestResult struct {
	StrategyName   string             `json:"strategy_name"`
	Symbol         string             `json:"symbol"`
	Interval       Interval           `json:"interval"`
	ParentInterval Interval           `json:"parent_interval,omitempty"`
	Duration       int                `json:"duration"` // bars evaluated
	Metrics        PerformanceMetrics `json:"metrics"`
	FinalBalance   float64            `json:"final_balance"`
	FinishedAt     time.Time          `json:"finished_at"`
}
