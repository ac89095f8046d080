package domain

import "time"

type TradeAction string

const (
	ActionLong         TradeAction = "long"
	ActionShort        TradeAction = "short"
	ActionClose        TradeAction = "close"
	ActionPartialClose TradeAction = "partial_close"
)

type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

// TradeRecord is a single executed trade. Immutable once appended to the
// trade history. ProfitLoss, PercentGainLoss and Result are populated for
// close and partial-close actions only.
type TradeRecord struct {
	Symbol          string      `json:"symbol"`
	Interval        Interval    `json:"interval"`
	Timestamp       time.Time   `json:"timestamp"` // bar the trade executed on
	Action          TradeAction `json:"action"`
	Price           float64     `json:"price"` // execution price, post slippage
	Size            float64     `json:"size"`
	Amount          float64     `json:"amount"` // notional, size * price
	LoggedAt        time.Time   `json:"logged_at"`
	Reason          string      `json:"reason,omitempty"`
	ProfitLoss      float64     `json:"profit_loss,omitempty"`
	PercentGainLoss float64     `json:"percent_gain_loss,omitempty"`
	Result          TradeResult `json:"result,omitempty"`
}

// IsClosing reports whether the record realizes P&L.
func (r *TradeRecord) IsClosing() bool {
	return r.Action == ActionClose || r.Action == ActionPartialClose
}
