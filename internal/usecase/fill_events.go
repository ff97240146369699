package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/logger"
)

// FillHandler settles trades from fill events consumed off the fills topic.
// The venue (or the collaborator's fill simulator in dry_run) publishes one
// event per closed position.
type FillHandler struct {
	topic   string
	risk    *RiskManager
	sink    StrategySink
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewFillHandler(topic string, risk *RiskManager, sink StrategySink, metrics drepo.Metrics, log *logger.Logger) *FillHandler {
	return &FillHandler{topic: topic, risk: risk, sink: sink, metrics: metrics, log: log}
}

// Topic names the Kafka topic this handler consumes.
func (h *FillHandler) Topic() string { return h.topic }

// Handle decodes one fill-event message and realizes the close in the risk
// ledger. A fill for an unknown trade is logged and acknowledged rather
// than retried; redelivery cannot make it resolvable.
func (h *FillHandler) Handle(ctx context.Context, payload []byte) error {
	var ev models.FillEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		h.metrics.RecordError("fill_decode")
		return fmt.Errorf("decode fill event: %w", err)
	}
	if ev.TradeID == "" {
		h.metrics.RecordError("fill_decode")
		return fmt.Errorf("fill event missing trade_id")
	}

	var closedAt time.Time
	if ev.ClosedAt > 0 {
		closedAt = time.Unix(ev.ClosedAt, 0).UTC()
	}

	trade, err := h.risk.CloseTrade(ev.TradeID, ev.ExitPrice, closedAt)
	if err != nil {
		if errors.Is(err, models.ErrUnknownTrade) {
			h.log.Warn("fill for unknown trade",
				logger.String("trade_id", ev.TradeID))
			h.metrics.RecordError("unknown_fill")
			return nil
		}
		return fmt.Errorf("close trade: %w", err)
	}

	stats := h.risk.Statistics()
	h.metrics.RecordOpenTrades(stats.OpenCount)
	h.metrics.RecordDailyPnL(stats.DailyPnL)

	if h.sink != nil {
		h.sink.EnqueueTrade(trade)
	}

	h.log.Info("trade closed",
		logger.String("trade_id", trade.ID),
		logger.Float64("exit_price", trade.ExitPrice),
		logger.Float64("pnl", trade.RealizedPnL))
	return nil
}
