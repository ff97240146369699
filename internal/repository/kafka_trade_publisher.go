package repository

import (
	"context"
	"time"

	"TradeCore/internal/domain/models"
	pkgkafka "TradeCore/pkg/kafka"
)

// KafkaTradePublisher mirrors trade records and snapshots onto Kafka topics
// for downstream consumers. Reads are not supported on this sink.
type KafkaTradePublisher struct {
	producer       *pkgkafka.Producer
	tradesTopic    string
	snapshotsTopic string
}

func NewKafkaTradePublisher(producer *pkgkafka.Producer, tradesTopic, snapshotsTopic string) *KafkaTradePublisher {
	return &KafkaTradePublisher{
		producer:       producer,
		tradesTopic:    tradesTopic,
		snapshotsTopic: snapshotsTopic,
	}
}

func (p *KafkaTradePublisher) StoreTrade(ctx context.Context, t *models.Trade) error {
	return p.producer.Publish(ctx, p.tradesTopic, []byte(t.Symbol), map[string]interface{}{
		"id":          t.ID,
		"symbol":      t.Symbol,
		"timeframe":   t.Timeframe,
		"side":        string(t.Side),
		"pattern":     string(t.Pattern),
		"entry":       t.Entry,
		"stop_loss":   t.StopLoss,
		"take_profit": t.TakeProfit,
		"qty":         t.Quantity,
		"status":      string(t.Status),
		"opened_at":   t.OpenedAt.UnixMilli(),
		"pnl":         t.RealizedPnL,
	})
}

func (p *KafkaTradePublisher) StoreSnapshot(ctx context.Context, s models.Statistics) error {
	return p.producer.Publish(ctx, p.snapshotsTopic, []byte("stats"), s)
}

func (p *KafkaTradePublisher) ReadTrades(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Trade, error) {
	return nil, nil
}

func (p *KafkaTradePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
