package repository

import (
	"context"
	"time"

	"TradeCore/internal/domain/models"
)

// MarketData is the pull-based OHLCV and price provider.
type MarketData interface {
	// FetchCandles returns up to limit candles ordered by ascending open time.
	// Faults surface as *models.DataUnavailableError.
	FetchCandles(ctx context.Context, symbol string, tf Timeframe, limit int) ([]models.Candle, error)
	// FetchTicker returns the current last price for symbol.
	FetchTicker(ctx context.Context, symbol string) (float64, error)
	// FetchBalance returns the quote-currency account balance.
	FetchBalance(ctx context.Context) (float64, error)
}

// NewsCalendar supplies scheduled economic events.
type NewsCalendar interface {
	FetchHighImpactEvents(ctx context.Context, currency string, from, to time.Time) ([]models.NewsEvent, error)
}

// OrderVenue accepts order placement requests.
type OrderVenue interface {
	SubmitOrder(ctx context.Context, intent models.OrderIntent) (orderID string, fillPrice float64, err error)
}

// PriceStream pushes live trade prices between candle polls.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceTick is one live price update from the stream.
type PriceTick struct {
	Symbol string
	Price  float64
	Volume float64
	Time   time.Time
}

// TradeSink receives trade records and statistics snapshots for display.
// Durable storage is the collaborator's concern; the core never reads
// its own state back from here.
type TradeSink interface {
	StoreTrade(ctx context.Context, t *models.Trade) error
	StoreSnapshot(ctx context.Context, s models.Statistics) error
	ReadTrades(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Trade, error)
	Close() error
}

// Metrics abstracts operational metric recording.
type Metrics interface {
	RecordTick(symbol string)
	RecordCandlesFetched(symbol, tf string, n int)
	RecordPatternDetected(pattern string)
	RecordPatternConfirmed(pattern string)
	RecordOrderPlaced(symbol, side string)
	RecordOrderRejected(symbol, reason string)
	RecordNewsBlock(tf string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordOpenTrades(n int)
	RecordDailyPnL(v float64)
	RecordLatency(op string, seconds float64)
}
