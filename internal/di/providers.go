package di

import (
	"context"
	"fmt"
	"time"

	drepo "TradeCore/internal/domain/repository"
	"TradeCore/internal/handler/api"
	mid "TradeCore/internal/middleware"
	internalrepo "TradeCore/internal/repository"
	"TradeCore/internal/services/analytics"
	"TradeCore/internal/services/executor"
	"TradeCore/internal/services/market"
	"TradeCore/internal/services/news"
	"TradeCore/internal/services/patterns"
	"TradeCore/internal/usecase"
	"TradeCore/pkg/cache"
	pkgch "TradeCore/pkg/clickhouse"
	"TradeCore/pkg/config"
	xhttp "TradeCore/pkg/http"
	pkgkafka "TradeCore/pkg/kafka"
	applogger "TradeCore/pkg/logger"
	"TradeCore/pkg/metrics"
	"TradeCore/pkg/server"
)

// ProvideLogger creates the process logger from the logging config block.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideCache builds the cache service: layered over Redis when enabled,
// in-process memory otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvideMarketData creates the exchange REST client.
func ProvideMarketData(cfg *config.Config) drepo.MarketData {
	return market.New(cfg)
}

// ProvideOrderVenue creates the live order endpoint client.
func ProvideOrderVenue(cfg *config.Config) drepo.OrderVenue {
	return market.NewVenue(cfg)
}

// ProvideNewsCalendar creates the economic calendar client.
func ProvideNewsCalendar(cfg *config.Config, c cache.Service, l *applogger.Logger) drepo.NewsCalendar {
	return news.New(cfg, c, l)
}

// ProvideTrendDetector creates the trend voter.
func ProvideTrendDetector() *analytics.TrendDetector {
	return analytics.NewTrendDetector()
}

// ProvidePatternDetector creates the chart pattern detector.
func ProvidePatternDetector(cfg *config.Config, l *applogger.Logger) *patterns.Detector {
	return patterns.NewDetector(cfg, l)
}

// ProvidePositionSizer creates the position sizer.
func ProvidePositionSizer(cfg *config.Config) *usecase.PositionSizer {
	return usecase.NewPositionSizer(cfg)
}

// ProvideRiskManager creates the risk ledger.
func ProvideRiskManager(cfg *config.Config) *usecase.RiskManager {
	return usecase.NewRiskManager(cfg)
}

// ProvideExecutor creates the order executor for the configured trade mode.
func ProvideExecutor(cfg *config.Config, venue drepo.OrderVenue, l *applogger.Logger) (usecase.OrderExecutor, error) {
	return executor.New(cfg, venue, l)
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// trade store schema. Returns nil when ClickHouse is not configured.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.ClickHouse.Host == "" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, 10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil without brokers.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the fills consumer, or nil without brokers.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideTradeSink composes the trade sink: an in-memory store always, plus
// ClickHouse and a Kafka mirror when configured. The memory store keeps the
// API usable without either backend.
func ProvideTradeSink(cfg *config.Config, chClient *pkgch.Client, producer *pkgkafka.Producer, l *applogger.Logger) drepo.TradeSink {
	sinks := []drepo.TradeSink{internalrepo.NewMemoryTradeStore(0)}
	if chClient != nil {
		sinks = append(sinks, internalrepo.NewCHTradeStore(chClient, l))
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaTradePublisher(producer, cfg.Kafka.TradesTopic, cfg.Kafka.TradesTopic+"-stats"))
	}
	return internalrepo.NewCompositeSink(sinks...)
}

// ProvidePriceWatcher creates the live price watcher, or nil when no
// websocket endpoint is configured.
func ProvidePriceWatcher(cfg *config.Config, m drepo.Metrics, l *applogger.Logger) *usecase.PriceWatcher {
	if cfg.Exchange.WebSocketURL == "" {
		return nil
	}
	return usecase.NewPriceWatcher(market.NewStream(cfg, l), m, l)
}

// ProvideSinkPipeline creates the async sink worker.
func ProvideSinkPipeline(sink drepo.TradeSink, m drepo.Metrics, l *applogger.Logger) *mid.SinkPipeline {
	return mid.NewSinkPipeline(sink, m, l)
}

// ProvideFillHandler creates the fills topic handler.
func ProvideFillHandler(cfg *config.Config, risk *usecase.RiskManager, pipeline *mid.SinkPipeline, m drepo.Metrics, l *applogger.Logger) pkgkafka.MessageHandler {
	return usecase.NewFillHandler(cfg.Kafka.FillsTopic, risk, pipeline, m, l)
}

// ProvideStrategy creates the decision loop.
func ProvideStrategy(
	cfg *config.Config,
	l *applogger.Logger,
	marketData drepo.MarketData,
	calendar drepo.NewsCalendar,
	trend *analytics.TrendDetector,
	detector *patterns.Detector,
	sizer *usecase.PositionSizer,
	risk *usecase.RiskManager,
	exec usecase.OrderExecutor,
	pipeline *mid.SinkPipeline,
	m drepo.Metrics,
) *usecase.Strategy {
	return usecase.NewStrategy(cfg, l, marketData, calendar, trend, detector, sizer, risk, exec, pipeline, m)
}

// ProvideHTTPHandler creates the inspection API handler.
func ProvideHTTPHandler(cfg *config.Config, l *applogger.Logger, risk *usecase.RiskManager, sink drepo.TradeSink) xhttp.Handler {
	return api.NewStatusHandler(l, risk, sink, cfg.Strategy.Symbol)
}

// logPublisher adapts the Kafka producer to the log collector interface.
type logPublisher struct {
	p *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.p.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	strategy *usecase.Strategy,
	watcher *usecase.PriceWatcher,
	pipeline *mid.SinkPipeline,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	fills pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	var w server.Runner
	if watcher != nil {
		w = watcher
	}
	if producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "tradecore-error-logs",
			Publisher:      logPublisher{p: producer},
		})
	}
	return server.New(cfg, l, strategy, w, pipeline, consumer, fills, chClient, handler)
}
