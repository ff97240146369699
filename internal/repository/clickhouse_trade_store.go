package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TradeCore/internal/domain/models"
	pkgch "TradeCore/pkg/clickhouse"
	applogger "TradeCore/pkg/logger"
)

// Schema holds the idempotent DDL for the trade store.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS tradecore`,
	`CREATE TABLE IF NOT EXISTS tradecore.trades (
        id          String,
        symbol      LowCardinality(String),
        timeframe   LowCardinality(String),
        side        LowCardinality(String),
        pattern     LowCardinality(String),
        entry       Float64,
        stop_loss   Float64,
        take_profit Float64,
        qty         Float64,
        status      LowCardinality(String),
        opened_at   DateTime64(3, 'UTC'),
        exit_price  Float64,
        pnl         Float64,
        closed_at   DateTime64(3, 'UTC')
    ) ENGINE = ReplacingMergeTree
    ORDER BY (symbol, opened_at, id)`,
	`CREATE TABLE IF NOT EXISTS tradecore.stats_snapshots (
        ts            DateTime64(3, 'UTC'),
        open_count    Int32,
        trades_today  Int32,
        daily_pnl     Float64,
        total_trades  Int32,
        winning_count Int32,
        losing_count  Int32,
        win_rate      Float64,
        total_pnl     Float64
    ) ENGINE = MergeTree
    ORDER BY ts`,
}

// CHTradeStore persists trade records and statistics snapshots in ClickHouse.
type CHTradeStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHTradeStore(ch *pkgch.Client, l *applogger.Logger) *CHTradeStore {
	return &CHTradeStore{db: ch.DB(), l: l}
}

// Init creates the database and tables if they do not exist.
func (s *CHTradeStore) Init(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init trade store schema: %w", err)
		}
	}
	return nil
}

func (s *CHTradeStore) StoreTrade(ctx context.Context, t *models.Trade) error {
	start := time.Now()
	const q = `INSERT INTO tradecore.trades
        (id, symbol, timeframe, side, pattern, entry, stop_loss, take_profit, qty, status, opened_at, exit_price, pnl, closed_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	closedAt := t.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Unix(0, 0).UTC()
	}
	_, err := s.db.ExecContext(ctx, q,
		t.ID, t.Symbol, t.Timeframe, string(t.Side), string(t.Pattern),
		t.Entry, t.StopLoss, t.TakeProfit, t.Quantity, string(t.Status),
		t.OpenedAt, t.ExitPrice, t.RealizedPnL, closedAt,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_trade error",
				applogger.String("trade_id", t.ID),
				applogger.String("symbol", t.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store trade: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse store_trade ok",
			applogger.String("trade_id", t.ID),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHTradeStore) StoreSnapshot(ctx context.Context, snap models.Statistics) error {
	const q = `INSERT INTO tradecore.stats_snapshots
        (ts, open_count, trades_today, daily_pnl, total_trades, winning_count, losing_count, win_rate, total_pnl)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		snap.Timestamp, int32(snap.OpenCount), int32(snap.TradesToday), snap.DailyPnL,
		int32(snap.TotalTrades), int32(snap.WinningCount), int32(snap.LosingCount),
		snap.WinRate, snap.TotalPnL,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse store_snapshot error", applogger.Error(err))
		}
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

func (s *CHTradeStore) ReadTrades(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Trade, error) {
	start := time.Now()
	const q = `SELECT id, symbol, timeframe, side, pattern, entry, stop_loss, take_profit, qty, status, opened_at, exit_price, pnl, closed_at
        FROM tradecore.trades FINAL
        WHERE symbol = ? AND opened_at >= ? AND opened_at <= ?
        ORDER BY opened_at DESC
        LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse read_trades query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("read trades: %w", err)
	}
	defer rows.Close()

	var out []*models.Trade
	for rows.Next() {
		var t models.Trade
		var side, pattern, status string
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Timeframe, &side, &pattern,
			&t.Entry, &t.StopLoss, &t.TakeProfit, &t.Quantity, &status,
			&t.OpenedAt, &t.ExitPrice, &t.RealizedPnL, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = models.Side(side)
		t.Pattern = models.PatternType(pattern)
		t.Status = models.TradeStatus(status)
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse read_trades ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHTradeStore) Close() error {
	return nil // pool managed by pkg/clickhouse
}
