package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksTotal        *prometheus.CounterVec
	candlesFetched    *prometheus.CounterVec
	patternsDetected  *prometheus.CounterVec
	patternsConfirmed *prometheus.CounterVec
	ordersPlaced      *prometheus.CounterVec
	ordersRejected    *prometheus.CounterVec
	newsBlocks        *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	lastPrice         *prometheus.GaugeVec
	openTrades        prometheus.Gauge
	dailyPnL          prometheus.Gauge
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_ticks_total",
				Help: "Total number of strategy loop ticks",
			},
			[]string{"symbol"},
		),
		candlesFetched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_candles_fetched_total",
				Help: "Total number of candles fetched from the exchange",
			},
			[]string{"symbol", "timeframe"},
		),
		patternsDetected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_patterns_detected_total",
				Help: "Pattern candidates that passed geometric detection",
			},
			[]string{"pattern"},
		),
		patternsConfirmed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_patterns_confirmed_total",
				Help: "Pattern candidates confirmed by a retest rejection",
			},
			[]string{"pattern"},
		),
		ordersPlaced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_orders_placed_total",
				Help: "Orders accepted by the execution venue",
			},
			[]string{"symbol", "side"},
		),
		ordersRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_orders_rejected_total",
				Help: "Orders rejected by a risk gate or the venue",
			},
			[]string{"symbol", "reason"},
		),
		newsBlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_news_blocks_total",
				Help: "Entries suppressed by the high-impact news window",
			},
			[]string{"timeframe"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradecore_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tradecore_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		openTrades: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradecore_open_trades",
				Help: "Number of trades currently open",
			},
		),
		dailyPnL: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tradecore_daily_pnl",
				Help: "Realized PnL accumulated today",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradecore_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordTick(symbol string) {
	r.ticksTotal.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordCandlesFetched(symbol, timeframe string, n int) {
	r.candlesFetched.WithLabelValues(symbol, timeframe).Add(float64(n))
}

func (r *Recorder) RecordPatternDetected(pattern string) {
	r.patternsDetected.WithLabelValues(pattern).Inc()
}

func (r *Recorder) RecordPatternConfirmed(pattern string) {
	r.patternsConfirmed.WithLabelValues(pattern).Inc()
}

func (r *Recorder) RecordOrderPlaced(symbol, side string) {
	r.ordersPlaced.WithLabelValues(symbol, side).Inc()
}

func (r *Recorder) RecordOrderRejected(symbol, reason string) {
	r.ordersRejected.WithLabelValues(symbol, reason).Inc()
}

func (r *Recorder) RecordNewsBlock(tf string) {
	r.newsBlocks.WithLabelValues(tf).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordOpenTrades(n int) {
	r.openTrades.Set(float64(n))
}

func (r *Recorder) RecordDailyPnL(pnl float64) {
	r.dailyPnL.Set(pnl)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
