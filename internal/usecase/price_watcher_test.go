package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/logger"
)

type fakeStream struct {
	mu         sync.Mutex
	batches    [][]drepo.PriceTick
	reconnects int
	closed     bool
}

func (s *fakeStream) Connect(ctx context.Context) error   { return nil }
func (s *fakeStream) Subscribe(ctx context.Context) error { return nil }
func (s *fakeStream) IsConnected() bool                   { return !s.closed }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	if len(s.batches) == 0 {
		return errors.New("no more data")
	}
	return nil
}

func (s *fakeStream) Read(ctx context.Context) (<-chan drepo.PriceTick, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticks := make(chan drepo.PriceTick, 16)
	errs := make(chan error, 1)
	if len(s.batches) > 0 {
		for _, t := range s.batches[0] {
			ticks <- t
		}
		s.batches = s.batches[1:]
	}
	close(ticks)
	close(errs)
	return ticks, errs
}

func TestPriceWatcherRecordsTicks(t *testing.T) {
	stream := &fakeStream{batches: [][]drepo.PriceTick{
		{{Symbol: "BTCUSDT", Price: 100}, {Symbol: "BTCUSDT", Price: 101}},
	}}
	metrics := newFakeMetrics()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	w := NewPriceWatcher(stream, metrics, log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		metrics.mu.Lock()
		price := metrics.lastPrice
		metrics.mu.Unlock()
		if price == 101 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("last price gauge never reached 101")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	stream.mu.Lock()
	defer stream.mu.Unlock()
	if !stream.closed {
		t.Fatal("stream not closed on shutdown")
	}
}
