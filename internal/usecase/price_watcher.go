package usecase

import (
	"context"

	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/logger"
)

// PriceWatcher feeds live stream ticks into the last-price gauge between
// candle polls. It is purely observational; trading decisions never depend
// on it, so a dead stream degrades visibility, not behavior.
type PriceWatcher struct {
	stream  drepo.PriceStream
	metrics drepo.Metrics
	log     *logger.Logger
}

func NewPriceWatcher(stream drepo.PriceStream, metrics drepo.Metrics, log *logger.Logger) *PriceWatcher {
	return &PriceWatcher{stream: stream, metrics: metrics, log: log}
}

// Run consumes the stream until ctx is cancelled, reconnecting after read
// failures.
func (w *PriceWatcher) Run(ctx context.Context) error {
	if err := w.stream.Connect(ctx); err != nil {
		return err
	}
	defer w.stream.Close()
	if err := w.stream.Subscribe(ctx); err != nil {
		return err
	}

	for {
		ticks, errs := w.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case tick, ok := <-ticks:
				if !ok {
					// Buffered ticks are all delivered before the close is
					// observed; errs may still close after this.
					break consume
				}
				w.metrics.RecordLastPrice(tick.Symbol, tick.Price)
			case err, ok := <-errs:
				if !ok {
					// Keep draining ticks; a nil channel is never selected.
					errs = nil
					continue
				}
				if err != nil {
					w.log.Warn("price stream read error", logger.Error(err))
					w.metrics.RecordError("stream")
				}
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := w.stream.Reconnect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn("price stream reconnect failed", logger.Error(err))
			w.metrics.RecordError("stream")
		}
	}
}
