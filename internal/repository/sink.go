package repository

import (
	"context"
	"sync"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
)

// MemoryTradeStore keeps trades and snapshots in memory. It backs dry runs
// and deployments without a ClickHouse instance.
type MemoryTradeStore struct {
	mu        sync.RWMutex
	trades    []*models.Trade
	snapshots []models.Statistics
	maxTrades int
}

func NewMemoryTradeStore(maxTrades int) *MemoryTradeStore {
	if maxTrades <= 0 {
		maxTrades = 10000
	}
	return &MemoryTradeStore{maxTrades: maxTrades}
}

func (m *MemoryTradeStore) StoreTrade(ctx context.Context, t *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	// Updates to an already stored trade replace the earlier record.
	for i, prev := range m.trades {
		if prev.ID == cp.ID {
			m.trades[i] = &cp
			return nil
		}
	}
	m.trades = append(m.trades, &cp)
	if len(m.trades) > m.maxTrades {
		m.trades = m.trades[len(m.trades)-m.maxTrades:]
	}
	return nil
}

func (m *MemoryTradeStore) StoreSnapshot(ctx context.Context, s models.Statistics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, s)
	if len(m.snapshots) > m.maxTrades {
		m.snapshots = m.snapshots[len(m.snapshots)-m.maxTrades:]
	}
	return nil
}

func (m *MemoryTradeStore) ReadTrades(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Trade
	for i := len(m.trades) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.trades[i]
		if symbol != "" && t.Symbol != symbol {
			continue
		}
		if t.OpenedAt.Before(from) || t.OpenedAt.After(to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// LatestSnapshot returns the most recent statistics snapshot, if any.
func (m *MemoryTradeStore) LatestSnapshot() (models.Statistics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.snapshots) == 0 {
		return models.Statistics{}, false
	}
	return m.snapshots[len(m.snapshots)-1], true
}

func (m *MemoryTradeStore) Close() error { return nil }

// CompositeSink fans writes out to several sinks. Reads are served by the
// first sink that returns rows. Write errors are returned but do not stop
// the fan-out, so a broken mirror never loses the primary record.
type CompositeSink struct {
	sinks []drepo.TradeSink
}

func NewCompositeSink(sinks ...drepo.TradeSink) *CompositeSink {
	return &CompositeSink{sinks: sinks}
}

func (c *CompositeSink) StoreTrade(ctx context.Context, t *models.Trade) error {
	var firstErr error
	for _, s := range c.sinks {
		if err := s.StoreTrade(ctx, t); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *CompositeSink) StoreSnapshot(ctx context.Context, snap models.Statistics) error {
	var firstErr error
	for _, s := range c.sinks {
		if err := s.StoreSnapshot(ctx, snap); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *CompositeSink) ReadTrades(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Trade, error) {
	var firstErr error
	for _, s := range c.sinks {
		trades, err := s.ReadTrades(ctx, symbol, from, to, limit)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(trades) > 0 {
			return trades, nil
		}
	}
	return nil, firstErr
}

func (c *CompositeSink) Close() error {
	var firstErr error
	for _, s := range c.sinks {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
