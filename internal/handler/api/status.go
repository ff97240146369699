package api

import (
	"net/http"
	"time"

	drepo "TradeCore/internal/domain/repository"
	"TradeCore/internal/services/ratelimit"
	"TradeCore/internal/usecase"
	xhttp "TradeCore/pkg/http"
	xlogger "TradeCore/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StatusHandler exposes the read-only inspection surface: health, the risk
// ledger, and the trade history served from the sink.
type StatusHandler struct {
	logger *xlogger.Logger
	risk   *usecase.RiskManager
	sink   drepo.TradeSink
	symbol string
	rl     *ratelimit.Limiter
}

func NewStatusHandler(logger *xlogger.Logger, risk *usecase.RiskManager, sink drepo.TradeSink, symbol string) *StatusHandler {
	return &StatusHandler{logger: logger, risk: risk, sink: sink, symbol: symbol, rl: ratelimit.New()}
}

func (h *StatusHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.GET("/stats", h.Stats)
	g.GET("/positions", h.Positions)
	g.GET("/trades", h.Trades)
}

func (h *StatusHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Stats returns the current risk ledger snapshot.
func (h *StatusHandler) Stats(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":stats", 5, 2) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}
	return xhttp.SuccessResponse(c, h.risk.Statistics())
}

// Positions returns the currently open trades.
func (h *StatusHandler) Positions(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":positions", 5, 2) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}
	return xhttp.SuccessResponse(c, h.risk.OpenTrades())
}

type tradesRequest struct {
	Symbol string `query:"symbol"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

// Trades returns stored trade records, newest first. Query params: symbol,
// from, to (RFC3339 or unix seconds), limit.
func (h *StatusHandler) Trades(c echo.Context) error {
	if !h.rl.Allow(c.RealIP()+":trades", 3, 1) {
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limited"})
	}

	req := &tradesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if req.Symbol == "" {
		req.Symbol = h.symbol
	}
	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(req.From, now.AddDate(0, 0, -7))
	to := xhttp.ParseTimeDefault(req.To, now)

	trades, err := h.sink.ReadTrades(c.Request().Context(), req.Symbol, from, to, req.Limit)
	if err != nil {
		h.logger.Error("read trades error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, trades, int64(len(trades)))
}
