package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/internal/services/ratelimit"
	"TradeCore/pkg/config"
	xhttp "TradeCore/pkg/http"
)

// Venue submits market orders to the Binance spot order endpoint.
type Venue struct {
	baseURL   string
	apiKey    string
	apiSecret string
	rps       float64

	http    *xhttp.Client
	limiter *ratelimit.Limiter
}

// NewVenue creates an OrderVenue from the exchange config block.
func NewVenue(cfg *config.Config) drepo.OrderVenue {
	return &Venue{
		baseURL:   strings.TrimRight(cfg.Exchange.RESTURL, "/"),
		apiKey:    cfg.Exchange.APIKey,
		apiSecret: cfg.Exchange.APISecret,
		rps:       cfg.Exchange.RateLimitRPS,
		http:      xhttp.NewClient(xhttp.WithTimeout(cfg.Exchange.Timeout)),
		limiter:   ratelimit.New(),
	}
}

type orderResponse struct {
	OrderID     int64  `json:"orderId"`
	Status      string `json:"status"`
	ExecutedQty string `json:"executedQty"`
	Fills       []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}

// SubmitOrder places a signed market order and returns the venue order id
// and the quantity-weighted fill price. A venue-side rejection surfaces as
// *models.RejectedError.
func (v *Venue) SubmitOrder(ctx context.Context, intent models.OrderIntent) (string, float64, error) {
	if v.apiKey == "" || v.apiSecret == "" {
		return "", 0, fmt.Errorf("order endpoint requires api credentials")
	}
	if err := v.limiter.Wait(ctx, restLimiterKey, v.rps, v.rps); err != nil {
		return "", 0, err
	}

	params := url.Values{}
	params.Set("symbol", intent.Symbol)
	params.Set("side", strings.ToUpper(string(intent.Side)))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(intent.Quantity, 'f', -1, 64))
	params.Set("newOrderRespType", "FULL")
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query := params.Encode()

	var resp orderResponse
	err := v.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     v.baseURL + "/api/v3/order?" + query + "&signature=" + signQuery(v.apiSecret, query),
		Headers: map[string]string{"X-MBX-APIKEY": v.apiKey},
	}, &resp)
	if err != nil {
		return "", 0, fmt.Errorf("submit order: %w", err)
	}

	switch resp.Status {
	case "FILLED", "PARTIALLY_FILLED":
	case "REJECTED", "EXPIRED":
		return "", 0, &models.RejectedError{Reason: "order " + strings.ToLower(resp.Status)}
	default:
		return "", 0, &models.RejectedError{Reason: fmt.Sprintf("unexpected order status %q", resp.Status)}
	}

	fill, err := weightedFillPrice(resp)
	if err != nil {
		return "", 0, fmt.Errorf("order %d: %w", resp.OrderID, err)
	}
	return strconv.FormatInt(resp.OrderID, 10), fill, nil
}

// weightedFillPrice averages the fill legs by quantity. Returns 0 when the
// venue reports no fills, letting the caller fall back to the intent price.
func weightedFillPrice(resp orderResponse) (float64, error) {
	var totalQty, totalCost float64
	for _, f := range resp.Fills {
		price, err := strconv.ParseFloat(f.Price, 64)
		if err != nil {
			return 0, fmt.Errorf("fill price: %w", err)
		}
		qty, err := strconv.ParseFloat(f.Qty, 64)
		if err != nil {
			return 0, fmt.Errorf("fill qty: %w", err)
		}
		totalQty += qty
		totalCost += price * qty
	}
	if totalQty == 0 {
		return 0, nil
	}
	return totalCost / totalQty, nil
}
