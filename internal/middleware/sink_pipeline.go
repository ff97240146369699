package middleware

import (
	"context"
	"sync"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/logger"
)

// SinkPipeline decouples the strategy loop from the trade sink. Enqueue
// calls never block; a background worker flushes records with retry and
// backoff so a slow or unavailable sink cannot stall a tick.
type SinkPipeline struct {
	sink    drepo.TradeSink
	metrics drepo.Metrics
	log     *logger.Logger

	tradeCh chan *models.Trade
	snapCh  chan models.Statistics
	stopCh  chan struct{}
	doneCh  chan struct{}

	mu      sync.Mutex
	started bool
}

type PipelineOption func(*SinkPipeline)

// WithBufferSize sets the enqueue buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *SinkPipeline) {
		if n > 0 {
			p.tradeCh = make(chan *models.Trade, n)
			p.snapCh = make(chan models.Statistics, n)
		}
	}
}

func NewSinkPipeline(sink drepo.TradeSink, metrics drepo.Metrics, log *logger.Logger, opts ...PipelineOption) *SinkPipeline {
	p := &SinkPipeline{
		sink:    sink,
		metrics: metrics,
		log:     log,
		tradeCh: make(chan *models.Trade, 256),
		snapCh:  make(chan models.Statistics, 256),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the background flusher.
func (p *SinkPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

// Stop drains buffered records and stops the flusher.
func (p *SinkPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()

	close(p.stopCh)
	<-p.doneCh
}

// EnqueueTrade buffers a trade record. Drops with a metric when full.
func (p *SinkPipeline) EnqueueTrade(t *models.Trade) {
	select {
	case p.tradeCh <- t:
	default:
		p.metrics.RecordError("sink_buffer_full")
		p.log.Warn("trade sink buffer full, dropping record",
			logger.String("trade_id", t.ID))
	}
}

// EnqueueSnapshot buffers a statistics snapshot. Snapshots are periodic,
// so dropping one under pressure loses nothing durable.
func (p *SinkPipeline) EnqueueSnapshot(s models.Statistics) {
	select {
	case p.snapCh <- s:
	default:
		p.metrics.RecordError("sink_buffer_full")
	}
}

func (p *SinkPipeline) run(ctx context.Context) {
	defer close(p.doneCh)
	for {
		select {
		case <-p.stopCh:
			p.drain(ctx)
			return
		case <-ctx.Done():
			p.drain(context.Background())
			return
		case t := <-p.tradeCh:
			p.flushTrade(ctx, t)
		case s := <-p.snapCh:
			p.flushSnapshot(ctx, s)
		}
	}
}

func (p *SinkPipeline) flushTrade(ctx context.Context, t *models.Trade) {
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt < 3; attempt++ {
		err := p.sink.StoreTrade(ctx, t)
		if err == nil {
			return
		}
		p.metrics.RecordError("sink_store_trade")
		p.log.Error("store trade failed",
			logger.String("trade_id", t.ID),
			logger.Int("attempt", attempt+1),
			logger.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
	}
}

func (p *SinkPipeline) flushSnapshot(ctx context.Context, s models.Statistics) {
	if err := p.sink.StoreSnapshot(ctx, s); err != nil {
		p.metrics.RecordError("sink_store_snapshot")
		p.log.Error("store snapshot failed", logger.Error(err))
	}
}

// drain flushes whatever is still buffered, best effort with a deadline.
func (p *SinkPipeline) drain(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		select {
		case t := <-p.tradeCh:
			p.flushTrade(ctx, t)
		case s := <-p.snapCh:
			p.flushSnapshot(ctx, s)
		default:
			return
		}
	}
}
