package models

import "time"

// OrderIntent is the immutable order request built from a confirmed pattern.
// It is created by the orchestrator and consumed exactly once by the executor.
type OrderIntent struct {
	Symbol     string
	Timeframe  string
	Side       Side
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Quantity   float64
	Pattern    PatternType
}

// TradeStatus is the lifecycle state of a trade.
type TradeStatus string

const (
	TradeOpen   TradeStatus = "open"
	TradeClosed TradeStatus = "closed"
)

// Trade is an executed order tracked by the risk manager's ledger.
type Trade struct {
	ID          string
	Symbol      string
	Timeframe   string
	Side        Side
	Entry       float64
	StopLoss    float64
	TakeProfit  float64
	Quantity    float64
	Pattern     PatternType
	Status      TradeStatus
	OpenedAt    time.Time
	ExitPrice   float64
	RealizedPnL float64
	ClosedAt    time.Time
}

// PnLAt computes the realized PnL for closing the trade at exit.
func (t *Trade) PnLAt(exit float64) float64 {
	if t.Side == SideBuy {
		return (exit - t.Entry) * t.Quantity
	}
	return (t.Entry - exit) * t.Quantity
}

// FillEvent is the close notification consumed from the fills topic. PnL is
// always recomputed from the exit price, so the event does not carry one.
type FillEvent struct {
	TradeID   string  `json:"trade_id"`
	ExitPrice float64 `json:"exit_price"`
	ClosedAt  int64   `json:"closed_at"` // unix seconds
}
