package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements PriceStream over the Binance trade websocket. Live
// ticks only feed the last-price gauge between candle polls; the decision
// loop itself works on closed candles.
type Stream struct {
	websocketURL   string
	symbol         string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a PriceStream from the exchange config block.
func NewStream(cfg *config.Config, log *logger.Logger) drepo.PriceStream {
	return &Stream{
		websocketURL:   cfg.Exchange.WebSocketURL,
		symbol:         cfg.Strategy.Symbol,
		reconnectDelay: cfg.Exchange.ReconnectDelay,
		pingInterval:   cfg.Exchange.PingInterval,
		log:            log,
	}
}

// Connect establishes the websocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.log.Info("price stream connected", logger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to the symbol's trade stream.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("stream not connected")
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": []string{strings.ToLower(s.symbol) + "@trade"},
		"id":     1,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.symbol, err)
	}
	s.log.Info("price stream subscribed", logger.String("symbol", s.symbol))
	return nil
}

type wsTrade struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Price  string `json:"p"`
	Qty    string `json:"q"`
	TimeMs int64  `json:"T"`
}

// Read streams price ticks and errors until ctx is cancelled or the
// connection drops. Ticks are dropped on backpressure rather than stalling
// the read loop.
func (s *Stream) Read(ctx context.Context) (<-chan drepo.PriceTick, <-chan error) {
	ticks := make(chan drepo.PriceTick, 1024)
	errs := make(chan error, 1)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(ticks)
		defer close(errs)
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var m wsTrade
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-trade frames
					continue
				}
				if m.Event != "trade" {
					continue
				}
				price, err := strconv.ParseFloat(m.Price, 64)
				if err != nil {
					continue
				}
				qty, _ := strconv.ParseFloat(m.Qty, 64)
				tick := drepo.PriceTick{
					Symbol: m.Symbol,
					Price:  price,
					Volume: qty,
					Time:   time.UnixMilli(m.TimeMs).UTC(),
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes and re-establishes the connection and subscription.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.reconnectDelay):
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the websocket connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates connection status.
func (s *Stream) IsConnected() bool { return s.connected }
