package market

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/internal/services/ratelimit"
	"TradeCore/pkg/config"
	xhttp "TradeCore/pkg/http"
)

const restLimiterKey = "binance_rest"

// Client is a Binance spot REST client implementing the MarketData port.
// Requests share a token bucket so candle polling across timeframes stays
// under the venue's rate limit.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	quoteAsset string
	rps        float64

	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// New creates a MarketData client from the exchange config block.
func New(cfg *config.Config) drepo.MarketData {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Exchange.RESTURL, "/"),
		apiKey:     cfg.Exchange.APIKey,
		apiSecret:  cfg.Exchange.APISecret,
		quoteAsset: quoteAssetOf(cfg.Strategy.Symbol),
		rps:        cfg.Exchange.RateLimitRPS,
		http:       xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout)),
		limiter:    ratelimit.New(),
	}
}

func quoteAssetOf(symbol string) string {
	for _, q := range []string{"USDT", "BUSD", "USDC", "USD"} {
		if strings.HasSuffix(symbol, q) {
			return q
		}
	}
	return "USDT"
}

// FetchCandles pulls up to limit klines ordered by ascending open time.
func (c *Client) FetchCandles(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	if err := c.limiter.Wait(ctx, restLimiterKey, c.rps, c.rps); err != nil {
		return nil, &models.DataUnavailableError{Source: "market", Err: err}
	}

	var raw [][]json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {symbol},
			"interval": {string(tf)},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, &models.DataUnavailableError{Source: "market", Err: err}
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, k := range raw {
		candle, err := parseKline(k)
		if err != nil {
			return nil, &models.DataUnavailableError{Source: "market", Err: err}
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// parseKline decodes one kline row:
// [openTimeMs, "open", "high", "low", "close", "volume", ...]
func parseKline(k []json.RawMessage) (models.Candle, error) {
	if len(k) < 6 {
		return models.Candle{}, fmt.Errorf("kline row has %d fields", len(k))
	}
	var openMs int64
	if err := json.Unmarshal(k[0], &openMs); err != nil {
		return models.Candle{}, fmt.Errorf("kline open time: %w", err)
	}
	vals := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(k[i], &s); err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("kline field %d: %w", i, err)
		}
		vals[i-1] = v
	}
	return models.Candle{
		OpenTime: time.UnixMilli(openMs).UTC(),
		Open:     vals[0],
		High:     vals[1],
		Low:      vals[2],
		Close:    vals[3],
		Volume:   vals[4],
	}, nil
}

// FetchTicker returns the last traded price for symbol.
func (c *Client) FetchTicker(ctx context.Context, symbol string) (float64, error) {
	if err := c.limiter.Wait(ctx, restLimiterKey, c.rps, c.rps); err != nil {
		return 0, &models.DataUnavailableError{Source: "market", Err: err}
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/api/v3/ticker/price",
		QueryParams: map[string][]string{"symbol": {symbol}},
	}, &resp)
	if err != nil {
		return 0, &models.DataUnavailableError{Source: "market", Err: err}
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil {
		return 0, &models.DataUnavailableError{Source: "market", Err: fmt.Errorf("ticker price: %w", err)}
	}
	return price, nil
}

// FetchBalance returns the free quote-asset balance from the signed
// account endpoint.
func (c *Client) FetchBalance(ctx context.Context) (float64, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return 0, &models.DataUnavailableError{Source: "market", Err: fmt.Errorf("account endpoint requires api credentials")}
	}
	if err := c.limiter.Wait(ctx, restLimiterKey, c.rps, c.rps); err != nil {
		return 0, &models.DataUnavailableError{Source: "market", Err: err}
	}

	query := fmt.Sprintf("timestamp=%d", time.Now().UnixMilli())
	sig := c.sign(query)

	var resp struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/api/v3/account?" + query + "&signature=" + sig,
		Headers: map[string]string{"X-MBX-APIKEY": c.apiKey},
	}, &resp)
	if err != nil {
		return 0, &models.DataUnavailableError{Source: "market", Err: err}
	}

	for _, b := range resp.Balances {
		if b.Asset != c.quoteAsset {
			continue
		}
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			return 0, &models.DataUnavailableError{Source: "market", Err: fmt.Errorf("balance %s: %w", b.Asset, err)}
		}
		return free, nil
	}
	return 0, nil
}

func (c *Client) sign(query string) string {
	return signQuery(c.apiSecret, query)
}

// signQuery produces the HMAC-SHA256 request signature Binance expects on
// signed endpoints.
func signQuery(secret, query string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}
