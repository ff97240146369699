package executor

import (
	"context"
	"fmt"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"
)

// Executor turns order intents into trades. In dry_run mode orders are
// simulated and filled at the intent's entry price; in live mode they are
// submitted to the venue and the trade records the actual fill.
type Executor struct {
	venue drepo.OrderVenue
	mode  string
	log   *logger.Logger

	now func() time.Time
}

// New creates an Executor. venue may be nil in dry_run mode.
func New(cfg *config.Config, venue drepo.OrderVenue, log *logger.Logger) (*Executor, error) {
	mode := cfg.Strategy.TradeMode
	switch mode {
	case "dry_run":
		log.Info("executor in dry_run mode, no real orders will be placed")
	case "live":
		if venue == nil {
			return nil, fmt.Errorf("live mode requires an order venue")
		}
		log.Warn("LIVE TRADING MODE ENABLED, real money at risk")
	default:
		return nil, fmt.Errorf("unknown trade mode %q", mode)
	}
	return &Executor{venue: venue, mode: mode, log: log, now: time.Now}, nil
}

// PlaceOrder executes the intent and returns the opened trade.
func (e *Executor) PlaceOrder(ctx context.Context, intent models.OrderIntent) (*models.Trade, error) {
	if intent.Quantity <= 0 {
		return nil, fmt.Errorf("order quantity must be positive, got %v", intent.Quantity)
	}

	if e.mode == "dry_run" {
		return e.simulate(intent), nil
	}

	orderID, fillPrice, err := e.venue.SubmitOrder(ctx, intent)
	if err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}
	if fillPrice <= 0 {
		fillPrice = intent.Entry
	}

	e.log.Info("order placed",
		logger.String("order_id", orderID),
		logger.String("side", string(intent.Side)),
		logger.Float64("fill_price", fillPrice))

	return e.buildTrade(orderID, intent, fillPrice), nil
}

func (e *Executor) simulate(intent models.OrderIntent) *models.Trade {
	orderID := fmt.Sprintf("DRY_%d", e.now().UnixMilli())
	e.log.Info("[DRY RUN] simulated order placed",
		logger.String("order_id", orderID),
		logger.String("side", string(intent.Side)),
		logger.Float64("entry", intent.Entry),
		logger.Float64("qty", intent.Quantity))
	return e.buildTrade(orderID, intent, intent.Entry)
}

func (e *Executor) buildTrade(orderID string, intent models.OrderIntent, fillPrice float64) *models.Trade {
	return &models.Trade{
		ID:         orderID,
		Symbol:     intent.Symbol,
		Timeframe:  intent.Timeframe,
		Side:       intent.Side,
		Entry:      fillPrice,
		StopLoss:   intent.StopLoss,
		TakeProfit: intent.TakeProfit,
		Quantity:   intent.Quantity,
		Pattern:    intent.Pattern,
		Status:     models.TradeOpen,
		OpenedAt:   e.now().UTC(),
	}
}
