package models

import "time"

// Statistics is a read-only snapshot of the risk manager's ledger.
type Statistics struct {
	Timestamp    time.Time `json:"timestamp"`
	OpenCount    int       `json:"open_count"`
	TradesToday  int       `json:"trades_today"`
	DailyPnL     float64   `json:"daily_pnl"`
	TotalTrades  int       `json:"total_trades"`
	WinningCount int       `json:"winning_count"`
	LosingCount  int       `json:"losing_count"`
	WinRate      float64   `json:"win_rate"` // fraction of closed trades with positive pnl
	TotalPnL     float64   `json:"total_pnl"`
	AvgWin       float64   `json:"avg_win"`
	AvgLoss      float64   `json:"avg_loss"`
	LargestWin   float64   `json:"largest_win"`
	LargestLoss  float64   `json:"largest_loss"`
}
