package repository

import (
	"context"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
)

func sampleTrade(id string, openedAt time.Time) *models.Trade {
	return &models.Trade{
		ID: id, Symbol: "BTCUSDT", Timeframe: "1h", Side: models.SideBuy,
		Entry: 100, StopLoss: 95, TakeProfit: 150, Quantity: 1,
		Pattern: models.InvertedHeadShoulders, Status: models.TradeOpen,
		OpenedAt: openedAt,
	}
}

func TestMemoryStoreReadTradesNewestFirst(t *testing.T) {
	m := NewMemoryTradeStore(0)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := m.StoreTrade(ctx, sampleTrade(id, t0.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("StoreTrade: %v", err)
		}
	}

	got, err := m.ReadTrades(ctx, "BTCUSDT", t0, t0.Add(24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ReadTrades: %v", err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMemoryStoreReplacesByID(t *testing.T) {
	m := NewMemoryTradeStore(0)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tr := sampleTrade("a", t0)
	if err := m.StoreTrade(ctx, tr); err != nil {
		t.Fatalf("StoreTrade: %v", err)
	}
	tr.Status = models.TradeClosed
	tr.RealizedPnL = 42
	if err := m.StoreTrade(ctx, tr); err != nil {
		t.Fatalf("StoreTrade update: %v", err)
	}

	got, err := m.ReadTrades(ctx, "BTCUSDT", t0.Add(-time.Hour), t0.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("ReadTrades: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want single record, got %d", len(got))
	}
	if got[0].Status != models.TradeClosed || got[0].RealizedPnL != 42 {
		t.Fatalf("update not applied: %+v", got[0])
	}
}

func TestMemoryStoreFiltersBySymbolAndWindow(t *testing.T) {
	m := NewMemoryTradeStore(0)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	in := sampleTrade("in", t0.Add(time.Hour))
	other := sampleTrade("other", t0.Add(time.Hour))
	other.Symbol = "ETHUSDT"
	early := sampleTrade("early", t0.Add(-48*time.Hour))
	for _, tr := range []*models.Trade{in, other, early} {
		if err := m.StoreTrade(ctx, tr); err != nil {
			t.Fatalf("StoreTrade: %v", err)
		}
	}

	got, err := m.ReadTrades(ctx, "BTCUSDT", t0, t0.Add(24*time.Hour), 10)
	if err != nil {
		t.Fatalf("ReadTrades: %v", err)
	}
	if len(got) != 1 || got[0].ID != "in" {
		t.Fatalf("filter failed: %+v", got)
	}
}

func TestMemoryStoreLatestSnapshot(t *testing.T) {
	m := NewMemoryTradeStore(0)
	ctx := context.Background()

	if _, ok := m.LatestSnapshot(); ok {
		t.Fatal("empty store must have no snapshot")
	}
	if err := m.StoreSnapshot(ctx, models.Statistics{TotalPnL: 1}); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}
	if err := m.StoreSnapshot(ctx, models.Statistics{TotalPnL: 2}); err != nil {
		t.Fatalf("StoreSnapshot: %v", err)
	}
	snap, ok := m.LatestSnapshot()
	if !ok || snap.TotalPnL != 2 {
		t.Fatalf("latest snapshot = %+v, ok = %v", snap, ok)
	}
}

func TestCompositeSinkFansOutAndReadsFirstNonEmpty(t *testing.T) {
	a := NewMemoryTradeStore(0)
	b := NewMemoryTradeStore(0)
	c := NewCompositeSink(a, b)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	if err := c.StoreTrade(ctx, sampleTrade("x", t0)); err != nil {
		t.Fatalf("StoreTrade: %v", err)
	}
	for _, m := range []*MemoryTradeStore{a, b} {
		got, err := m.ReadTrades(ctx, "BTCUSDT", t0.Add(-time.Hour), t0.Add(time.Hour), 10)
		if err != nil || len(got) != 1 {
			t.Fatalf("fan-out missed a sink: %v %v", got, err)
		}
	}

	got, err := c.ReadTrades(ctx, "BTCUSDT", t0.Add(-time.Hour), t0.Add(time.Hour), 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("composite read: %v %v", got, err)
	}
}
