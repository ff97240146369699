package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"
)

type fakeVenue struct {
	orderID   string
	fillPrice float64
	err       error
	submitted []models.OrderIntent
}

func (v *fakeVenue) SubmitOrder(ctx context.Context, intent models.OrderIntent) (string, float64, error) {
	if v.err != nil {
		return "", 0, v.err
	}
	v.submitted = append(v.submitted, intent)
	return v.orderID, v.fillPrice, nil
}

func newExecutor(t *testing.T, mode string, venue *fakeVenue) *Executor {
	t.Helper()
	cfg := &config.Config{}
	cfg.Strategy.TradeMode = mode
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	var port drepo.OrderVenue
	if venue != nil {
		port = venue
	}
	e, err := New(cfg, port, log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func sampleIntent() models.OrderIntent {
	return models.OrderIntent{
		Symbol: "BTCUSDT", Timeframe: "1h", Side: models.SideBuy,
		Entry: 100, StopLoss: 95, TakeProfit: 150, Quantity: 40,
		Pattern: models.InvertedHeadShoulders,
	}
}

func TestDryRunSimulatesFillAtEntry(t *testing.T) {
	e := newExecutor(t, "dry_run", nil)
	trade, err := e.PlaceOrder(context.Background(), sampleIntent())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !strings.HasPrefix(trade.ID, "DRY_") {
		t.Fatalf("trade id = %q, want DRY_ prefix", trade.ID)
	}
	if trade.Entry != 100 || trade.Quantity != 40 {
		t.Fatalf("trade = %+v", trade)
	}
	if trade.Status != models.TradeOpen {
		t.Fatalf("status = %v, want open", trade.Status)
	}
}

func TestLiveSubmitsToVenue(t *testing.T) {
	venue := &fakeVenue{orderID: "X1", fillPrice: 100.5}
	e := newExecutor(t, "live", venue)

	trade, err := e.PlaceOrder(context.Background(), sampleIntent())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if trade.ID != "X1" {
		t.Fatalf("trade id = %q, want venue order id", trade.ID)
	}
	if trade.Entry != 100.5 {
		t.Fatalf("entry = %v, want actual fill price", trade.Entry)
	}
	if len(venue.submitted) != 1 {
		t.Fatalf("venue submissions = %d, want 1", len(venue.submitted))
	}
}

func TestLiveRejectionPropagates(t *testing.T) {
	venue := &fakeVenue{err: &models.RejectedError{Reason: "insufficient funds"}}
	e := newExecutor(t, "live", venue)

	_, err := e.PlaceOrder(context.Background(), sampleIntent())
	var rej *models.RejectedError
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want RejectedError", err)
	}
}

func TestRejectsNonPositiveQuantity(t *testing.T) {
	e := newExecutor(t, "dry_run", nil)
	intent := sampleIntent()
	intent.Quantity = 0
	if _, err := e.PlaceOrder(context.Background(), intent); err == nil {
		t.Fatal("zero quantity must error")
	}
}

func TestLiveModeRequiresVenue(t *testing.T) {
	cfg := &config.Config{}
	cfg.Strategy.TradeMode = "live"
	log, _ := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if _, err := New(cfg, nil, log); err == nil {
		t.Fatal("live mode without venue must error")
	}
}
