package usecase

import (
	"fmt"
	"sync"
	"time"

	"TradeCore/internal/domain/models"
	"TradeCore/pkg/config"
	"TradeCore/pkg/util"
)

// RiskManager owns the trade ledger and the admission gates. All state
// transitions are serialized behind one mutex, so a permission granted by
// CanOpenTrade cannot be invalidated by a concurrent close or rollover
// between the check and RegisterTrade when both happen under the strategy
// loop's single goroutine.
type RiskManager struct {
	mu sync.Mutex

	maxConcurrent     int
	maxPerDay         int
	dailyLossLimitPct float64

	open   map[string]*models.Trade
	closed []*models.Trade

	dayKey      time.Time
	tradesToday int
	dailyPnL    float64
	lastBalance float64

	now func() time.Time
}

// NewRiskManager creates a RiskManager from the strategy config block.
func NewRiskManager(cfg *config.Config) *RiskManager {
	return &RiskManager{
		maxConcurrent:     cfg.Strategy.MaxConcurrentTrades,
		maxPerDay:         cfg.Strategy.MaxTradesPerDay,
		dailyLossLimitPct: cfg.Strategy.DailyLossLimitPct,
		open:              make(map[string]*models.Trade),
		now:               time.Now,
	}
}

// rollover resets the daily counters when the UTC day changes. Idempotent:
// calling it repeatedly within one day is a no-op. Open trades survive the
// rollover untouched.
func (r *RiskManager) rollover() {
	key := util.DayKey(r.now())
	if key.Equal(r.dayKey) {
		return
	}
	r.dayKey = key
	r.tradesToday = 0
	r.dailyPnL = 0
}

// Rollover applies the day boundary check. The strategy loop calls this at
// the top of every tick.
func (r *RiskManager) Rollover() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
}

// CanOpenTrade evaluates every admission gate and returns the first failing
// reason. The daily loss gate blocks only when the loss strictly exceeds
// balance * dailyLossLimitPct.
func (r *RiskManager) CanOpenTrade(balance float64, hasHighImpactNews bool) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()
	r.lastBalance = balance

	if len(r.open) >= r.maxConcurrent {
		return false, fmt.Sprintf("max concurrent trades reached (%d)", r.maxConcurrent)
	}
	if r.tradesToday >= r.maxPerDay {
		return false, fmt.Sprintf("max daily trades reached (%d)", r.maxPerDay)
	}
	maxLoss := balance * r.dailyLossLimitPct
	if r.dailyPnL < -maxLoss {
		return false, fmt.Sprintf("daily loss limit reached (%.2f / %.2f)", -r.dailyPnL, maxLoss)
	}
	if hasHighImpactNews {
		return false, "high-impact news nearby"
	}
	return true, "OK"
}

// RegisterTrade adds an executed trade to the open ledger and counts it
// against today's budget. Calling it while any admission gate is closed is
// a contract violation and fails with ErrCapacityExceeded. The loss gate
// re-checks against the balance seen at the most recent admission check.
func (r *RiskManager) RegisterTrade(t *models.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()

	if len(r.open) >= r.maxConcurrent {
		return models.ErrCapacityExceeded
	}
	if r.tradesToday >= r.maxPerDay {
		return models.ErrCapacityExceeded
	}
	if r.lastBalance > 0 && r.dailyPnL < -r.lastBalance*r.dailyLossLimitPct {
		return models.ErrCapacityExceeded
	}
	t.Status = models.TradeOpen
	if t.OpenedAt.IsZero() {
		t.OpenedAt = r.now()
	}
	r.open[t.ID] = t
	r.tradesToday++
	return nil
}

// CloseTrade settles an open trade at the exit price, realizes its PnL into
// today's ledger, and moves it to the closed list.
func (r *RiskManager) CloseTrade(id string, exitPrice float64, closedAt time.Time) (*models.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()

	t, ok := r.open[id]
	if !ok {
		return nil, fmt.Errorf("close %q: %w", id, models.ErrUnknownTrade)
	}
	delete(r.open, id)

	t.Status = models.TradeClosed
	t.ExitPrice = exitPrice
	t.RealizedPnL = t.PnLAt(exitPrice)
	if closedAt.IsZero() {
		closedAt = r.now()
	}
	t.ClosedAt = closedAt

	r.closed = append(r.closed, t)
	r.dailyPnL += t.RealizedPnL
	return t, nil
}

// OpenCount reports the number of currently open trades.
func (r *RiskManager) OpenCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.open)
}

// OpenTrades returns a snapshot of the open ledger.
func (r *RiskManager) OpenTrades() []*models.Trade {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Trade, 0, len(r.open))
	for _, t := range r.open {
		out = append(out, t)
	}
	return out
}

// Statistics builds a snapshot of the ledger.
func (r *RiskManager) Statistics() models.Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rollover()

	s := models.Statistics{
		Timestamp:   r.now(),
		OpenCount:   len(r.open),
		TradesToday: r.tradesToday,
		DailyPnL:    r.dailyPnL,
		TotalTrades: len(r.open) + len(r.closed),
	}

	var winSum, lossSum float64
	for _, t := range r.closed {
		s.TotalPnL += t.RealizedPnL
		switch {
		case t.RealizedPnL > 0:
			s.WinningCount++
			winSum += t.RealizedPnL
			if t.RealizedPnL > s.LargestWin {
				s.LargestWin = t.RealizedPnL
			}
		case t.RealizedPnL < 0:
			s.LosingCount++
			lossSum += t.RealizedPnL
			if t.RealizedPnL < s.LargestLoss {
				s.LargestLoss = t.RealizedPnL
			}
		}
	}
	if n := len(r.closed); n > 0 {
		s.WinRate = float64(s.WinningCount) / float64(n)
	}
	if s.WinningCount > 0 {
		s.AvgWin = winSum / float64(s.WinningCount)
	}
	if s.LosingCount > 0 {
		s.AvgLoss = lossSum / float64(s.LosingCount)
	}
	return s
}
