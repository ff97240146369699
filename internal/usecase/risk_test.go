package usecase

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
	"TradeCore/pkg/config"
)

func riskConfig(maxConcurrent, maxPerDay int, lossLimitPct float64) *config.Config {
	cfg := &config.Config{}
	cfg.Strategy.MaxConcurrentTrades = maxConcurrent
	cfg.Strategy.MaxTradesPerDay = maxPerDay
	cfg.Strategy.DailyLossLimitPct = lossLimitPct
	return cfg
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openTrade(id string, side models.Side, entry, qty float64) *models.Trade {
	return &models.Trade{
		ID: id, Symbol: "BTCUSDT", Side: side,
		Entry: entry, Quantity: qty,
	}
}

func TestDailyLossGateStrictInequality(t *testing.T) {
	day := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		dailyPnL float64
		want     bool
	}{
		{-1000.01, false}, // strictly beyond the limit
		{-1000.00, true},  // exactly at the limit still passes
		{-999.99, true},
	}
	for _, tc := range cases {
		r := NewRiskManager(riskConfig(3, 10, 0.10))
		r.now = fixedClock(day)
		r.Rollover()
		r.dailyPnL = tc.dailyPnL

		got, reason := r.CanOpenTrade(10000, false)
		if got != tc.want {
			t.Errorf("dailyPnL=%v: CanOpenTrade = %v (%s), want %v", tc.dailyPnL, got, reason, tc.want)
		}
	}
}

func TestConcurrentTradeGate(t *testing.T) {
	r := NewRiskManager(riskConfig(3, 10, 0.10))

	for i := 0; i < 3; i++ {
		if ok, reason := r.CanOpenTrade(10000, false); !ok {
			t.Fatalf("trade %d: gate closed early: %s", i, reason)
		}
		if err := r.RegisterTrade(openTrade(fmt.Sprintf("T%d", i), models.SideBuy, 100, 1)); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	if ok, _ := r.CanOpenTrade(10000, false); ok {
		t.Fatal("gate must close at max concurrent trades")
	}
	if err := r.RegisterTrade(openTrade("T3", models.SideBuy, 100, 1)); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("register beyond capacity: err = %v, want ErrCapacityExceeded", err)
	}

	// Closing one slot reopens the gate.
	if _, err := r.CloseTrade("T0", 101, time.Time{}); err != nil {
		t.Fatalf("close: %v", err)
	}
	if ok, reason := r.CanOpenTrade(10000, false); !ok {
		t.Fatalf("gate still closed after a close: %s", reason)
	}
}

func TestDailyTradeCountGate(t *testing.T) {
	r := NewRiskManager(riskConfig(10, 2, 0.10))

	for i := 0; i < 2; i++ {
		if err := r.RegisterTrade(openTrade(fmt.Sprintf("T%d", i), models.SideSell, 100, 1)); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	// The count gate holds even when every position is closed again.
	for i := 0; i < 2; i++ {
		if _, err := r.CloseTrade(fmt.Sprintf("T%d", i), 100, time.Time{}); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	if ok, _ := r.CanOpenTrade(10000, false); ok {
		t.Fatal("daily trade count gate must stay closed after closes")
	}
}

func TestRegisterTradeGuardsDailyCount(t *testing.T) {
	r := NewRiskManager(riskConfig(10, 1, 0.10))

	if err := r.RegisterTrade(openTrade("T0", models.SideBuy, 100, 1)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterTrade(openTrade("T1", models.SideBuy, 100, 1)); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("register beyond daily count: err = %v, want ErrCapacityExceeded", err)
	}
}

func TestRegisterTradeGuardsLossLimit(t *testing.T) {
	r := NewRiskManager(riskConfig(5, 10, 0.10))

	if ok, reason := r.CanOpenTrade(10000, false); !ok {
		t.Fatalf("gate closed on fresh day: %s", reason)
	}
	if err := r.RegisterTrade(openTrade("lose", models.SideBuy, 100, 40)); err != nil {
		t.Fatalf("register: %v", err)
	}
	// 100 -> 70 on qty 40 realizes -1200, past the 1000 limit.
	if _, err := r.CloseTrade("lose", 70, time.Time{}); err != nil {
		t.Fatalf("close: %v", err)
	}

	if ok, _ := r.CanOpenTrade(10000, false); ok {
		t.Fatal("loss gate must be closed")
	}
	if err := r.RegisterTrade(openTrade("late", models.SideBuy, 100, 1)); !errors.Is(err, models.ErrCapacityExceeded) {
		t.Fatalf("register past loss limit: err = %v, want ErrCapacityExceeded", err)
	}
}

func TestNewsGate(t *testing.T) {
	r := NewRiskManager(riskConfig(3, 10, 0.10))
	if ok, _ := r.CanOpenTrade(10000, true); ok {
		t.Fatal("news gate must block")
	}
	if ok, _ := r.CanOpenTrade(10000, false); !ok {
		t.Fatal("gate must open without news")
	}
}

func TestRolloverResetsDailyCountersOnly(t *testing.T) {
	day1 := time.Date(2024, 6, 3, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 4, 1, 0, 0, 0, time.UTC)

	r := NewRiskManager(riskConfig(3, 2, 0.10))
	r.now = fixedClock(day1)

	if err := r.RegisterTrade(openTrade("hold", models.SideBuy, 100, 40)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := r.RegisterTrade(openTrade("lose", models.SideBuy, 100, 40)); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := r.CloseTrade("lose", 95, day1); err != nil {
		t.Fatalf("close: %v", err)
	}

	if ok, _ := r.CanOpenTrade(10000, false); ok {
		t.Fatal("daily count gate should be closed before rollover")
	}

	r.now = fixedClock(day2)
	r.Rollover()

	stats := r.Statistics()
	if stats.TradesToday != 0 || stats.DailyPnL != 0 {
		t.Fatalf("daily counters not reset: %+v", stats)
	}
	if stats.OpenCount != 1 {
		t.Fatalf("open trades must survive rollover, got %d", stats.OpenCount)
	}
	if stats.TotalTrades != 2 || stats.TotalPnL != -200 {
		t.Fatalf("lifetime stats must survive rollover: %+v", stats)
	}
	if ok, reason := r.CanOpenTrade(10000, false); !ok {
		t.Fatalf("gates must reopen after rollover: %s", reason)
	}
}

func TestRolloverIdempotentWithinDay(t *testing.T) {
	day := time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)
	r := NewRiskManager(riskConfig(3, 10, 0.10))
	r.now = fixedClock(day)

	r.Rollover()
	if err := r.RegisterTrade(openTrade("T0", models.SideBuy, 100, 1)); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Repeated rollovers inside the same day must not clear the counters.
	r.now = fixedClock(day.Add(6 * time.Hour))
	r.Rollover()
	r.Rollover()

	if got := r.Statistics().TradesToday; got != 1 {
		t.Fatalf("TradesToday = %d after same-day rollovers, want 1", got)
	}
}

func TestCloseTradeRealizesPnL(t *testing.T) {
	r := NewRiskManager(riskConfig(3, 10, 0.10))

	if err := r.RegisterTrade(openTrade("buy", models.SideBuy, 100, 40)); err != nil {
		t.Fatalf("register: %v", err)
	}
	trade, err := r.CloseTrade("buy", 95, time.Time{})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if trade.RealizedPnL != -200 {
		t.Fatalf("buy pnl = %v, want -200", trade.RealizedPnL)
	}
	if trade.Status != models.TradeClosed {
		t.Fatalf("status = %v, want closed", trade.Status)
	}

	if err := r.RegisterTrade(openTrade("sell", models.SideSell, 100, 2)); err != nil {
		t.Fatalf("register: %v", err)
	}
	trade, err = r.CloseTrade("sell", 90, time.Time{})
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if trade.RealizedPnL != 20 {
		t.Fatalf("sell pnl = %v, want 20", trade.RealizedPnL)
	}
}

func TestCloseUnknownTrade(t *testing.T) {
	r := NewRiskManager(riskConfig(3, 10, 0.10))
	if _, err := r.CloseTrade("nope", 100, time.Time{}); !errors.Is(err, models.ErrUnknownTrade) {
		t.Fatalf("err = %v, want ErrUnknownTrade", err)
	}
}

func TestStatisticsAggregates(t *testing.T) {
	r := NewRiskManager(riskConfig(10, 100, 0.10))

	fills := []struct {
		id   string
		exit float64
	}{
		{"w1", 110}, // +10
		{"w2", 130}, // +30
		{"l1", 80},  // -20
	}
	for _, f := range fills {
		if err := r.RegisterTrade(openTrade(f.id, models.SideBuy, 100, 1)); err != nil {
			t.Fatalf("register: %v", err)
		}
		if _, err := r.CloseTrade(f.id, f.exit, time.Time{}); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	s := r.Statistics()
	if s.WinningCount != 2 || s.LosingCount != 1 {
		t.Fatalf("win/loss = %d/%d, want 2/1", s.WinningCount, s.LosingCount)
	}
	if s.WinRate != 2.0/3.0 {
		t.Fatalf("win rate = %v, want 2/3", s.WinRate)
	}
	if s.AvgWin != 20 || s.AvgLoss != -20 {
		t.Fatalf("avg win/loss = %v/%v, want 20/-20", s.AvgWin, s.AvgLoss)
	}
	if s.LargestWin != 30 || s.LargestLoss != -20 {
		t.Fatalf("largest win/loss = %v/%v", s.LargestWin, s.LargestLoss)
	}
	if s.TotalPnL != 20 {
		t.Fatalf("total pnl = %v, want 20", s.TotalPnL)
	}
}
