package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"TradeCore/pkg/logger"

	"github.com/gorilla/websocket"
)

func streamLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// One trade frame, then the server hangs up. Both Read workers (reader and
// ping loop) must exit once the connection drops, so repeated
// Reconnect/Read cycles do not pile up writers on the shared connection.
func TestReadStopsWorkersOnDisconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = c.WriteMessage(websocket.TextMessage,
			[]byte(`{"e":"trade","s":"BTCUSDT","p":"100.5","q":"1","T":1717000000000}`))
		_ = c.Close()
	}))
	defer srv.Close()

	s := &Stream{
		websocketURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		symbol:       "BTCUSDT",
		pingInterval: 5 * time.Millisecond,
		log:          streamLogger(t),
	}
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	before := runtime.NumGoroutine()
	ticks, errs := s.Read(ctx)

	var last float64
	for tick := range ticks {
		last = tick.Price
	}
	for range errs {
	}
	if last != 100.5 {
		t.Fatalf("last tick = %v, want 100.5", last)
	}

	deadline := time.After(2 * time.Second)
	for runtime.NumGoroutine() > before {
		select {
		case <-deadline:
			t.Fatalf("stream workers still running: %d goroutines, started with %d",
				runtime.NumGoroutine(), before)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
