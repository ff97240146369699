package usecase

import (
	"context"
	"errors"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/internal/services/analytics"
	"TradeCore/internal/services/patterns"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"
)

// OrderExecutor places an order intent and returns the resulting trade.
type OrderExecutor interface {
	PlaceOrder(ctx context.Context, intent models.OrderIntent) (*models.Trade, error)
}

// StrategySink accepts trade records and statistics snapshots for async
// persistence. Enqueue calls never block the strategy loop.
type StrategySink interface {
	EnqueueTrade(t *models.Trade)
	EnqueueSnapshot(s models.Statistics)
}

// Strategy is the decision loop. One goroutine polls candles per timeframe,
// runs detection and confirmation, and funnels every admission decision
// through the risk manager, so trade entries are fully serialized.
type Strategy struct {
	cfg      *config.Config
	log      *logger.Logger
	market   drepo.MarketData
	news     drepo.NewsCalendar
	trend    *analytics.TrendDetector
	detector *patterns.Detector
	trackers map[string]*patterns.Tracker
	sizer    *PositionSizer
	risk     *RiskManager
	executor OrderExecutor
	sink     StrategySink
	metrics  drepo.Metrics
	allowed  map[models.PatternType]bool

	now func() time.Time
}

// NewStrategy wires the decision loop. sink may be nil.
func NewStrategy(
	cfg *config.Config,
	log *logger.Logger,
	market drepo.MarketData,
	news drepo.NewsCalendar,
	trend *analytics.TrendDetector,
	detector *patterns.Detector,
	sizer *PositionSizer,
	risk *RiskManager,
	executor OrderExecutor,
	sink StrategySink,
	metrics drepo.Metrics,
) *Strategy {
	trackers := make(map[string]*patterns.Tracker, len(cfg.Strategy.Timeframes))
	for _, tf := range cfg.Strategy.Timeframes {
		trackers[tf] = patterns.NewTracker(cfg.Patterns.RetestWindowBars)
	}
	allowed := make(map[models.PatternType]bool, len(cfg.Strategy.AllowedPatterns))
	for _, p := range cfg.Strategy.AllowedPatterns {
		allowed[models.PatternType(p)] = true
	}
	return &Strategy{
		cfg:      cfg,
		log:      log,
		market:   market,
		news:     news,
		trend:    trend,
		detector: detector,
		trackers: trackers,
		sizer:    sizer,
		risk:     risk,
		executor: executor,
		sink:     sink,
		metrics:  metrics,
		allowed:  allowed,
		now:      time.Now,
	}
}

// Run executes the polling loop until ctx is cancelled. Cancellation takes
// effect at tick boundaries; a tick in flight always completes, so risk
// state is never left half-updated.
func (s *Strategy) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Strategy.PollIntervalSeconds) * time.Second
	s.log.Info("strategy loop starting",
		logger.String("symbol", s.cfg.Strategy.Symbol),
		logger.Strings("timeframes", s.cfg.Strategy.Timeframes),
		logger.String("mode", s.cfg.Strategy.TradeMode),
		logger.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		s.Tick(ctx)
		select {
		case <-ctx.Done():
			s.log.Info("strategy loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one full pass over all configured timeframes.
func (s *Strategy) Tick(ctx context.Context) {
	s.metrics.RecordTick(s.cfg.Strategy.Symbol)
	s.risk.Rollover()

	for _, tf := range s.cfg.Strategy.Timeframes {
		s.processTimeframe(ctx, tf)
	}

	stats := s.risk.Statistics()
	s.metrics.RecordOpenTrades(stats.OpenCount)
	s.metrics.RecordDailyPnL(stats.DailyPnL)
	if s.sink != nil {
		s.sink.EnqueueSnapshot(stats)
	}
}

func (s *Strategy) processTimeframe(ctx context.Context, tf string) {
	start := s.now()
	symbol := s.cfg.Strategy.Symbol

	candles, err := s.market.FetchCandles(ctx, symbol, drepo.Timeframe(tf), s.cfg.Strategy.CandleLimit)
	if err != nil {
		s.log.Warn("candle fetch failed, skipping timeframe",
			logger.String("timeframe", tf), logger.Error(err))
		s.metrics.RecordError("market")
		return
	}
	if len(candles) == 0 {
		s.log.Warn("no candle data", logger.String("timeframe", tf))
		return
	}
	s.metrics.RecordCandlesFetched(symbol, tf, len(candles))
	lastClose := candles[len(candles)-1].Close
	s.metrics.RecordLastPrice(symbol, lastClose)

	if s.newsBlocked(ctx) {
		s.log.Warn("high-impact news nearby, skipping timeframe",
			logger.String("timeframe", tf),
			logger.Int("window_minutes", s.cfg.Strategy.NewsBlockMinutes))
		s.metrics.RecordNewsBlock(tf)
		return
	}

	trend, err := s.trend.Detect(candles)
	if err != nil {
		if !errors.Is(err, models.ErrInsufficientData) {
			s.log.Warn("trend detection failed", logger.Error(err))
		}
		trend = models.TrendResult{Direction: models.TrendSideways}
	}
	s.log.Debug("trend",
		logger.String("timeframe", tf),
		logger.String("direction", string(trend.Direction)),
		logger.Any("strength", trend.Strength))

	detected, err := s.detector.Detect(candles)
	if err != nil {
		return
	}

	var eligible []*models.PatternCandidate
	for _, c := range detected {
		if !s.allowed[c.Type] {
			continue
		}
		s.metrics.RecordPatternDetected(string(c.Type))
		eligible = append(eligible, c)
	}

	tracker := s.trackers[tf]
	pending := tracker.Track(eligible, candles[len(candles)-1].OpenTime)

	for _, cand := range pending {
		if !s.detector.ConfirmRetest(cand, candles) {
			continue
		}
		tracker.MarkConfirmed(cand)
		s.metrics.RecordPatternConfirmed(string(cand.Type))
		s.log.Info("pattern confirmed by retest",
			logger.String("pattern", string(cand.Type)),
			logger.String("timeframe", tf),
			logger.Float64("neckline", cand.Neckline),
			logger.Float64("confidence", cand.Confidence))

		s.enterTrade(ctx, cand, candles, tf, trend)
	}

	s.metrics.RecordLatency("process_timeframe", s.now().Sub(start).Seconds())
}

// newsBlocked reports whether a high-impact event sits inside the block
// window on either side of now. Calendar faults fail open with a warning;
// the admission gates still protect the ledger.
func (s *Strategy) newsBlocked(ctx context.Context) bool {
	window := time.Duration(s.cfg.Strategy.NewsBlockMinutes) * time.Minute
	if window <= 0 {
		return false
	}
	now := s.now()
	events, err := s.news.FetchHighImpactEvents(ctx, s.cfg.News.Currency, now.Add(-window), now.Add(window))
	if err != nil {
		s.log.Warn("news calendar unavailable", logger.Error(err))
		s.metrics.RecordError("news")
		return false
	}
	for _, e := range events {
		if e.IsHighImpact() && e.Within(now, window) {
			return true
		}
	}
	return false
}

func (s *Strategy) enterTrade(ctx context.Context, cand *models.PatternCandidate, candles []models.Candle, tf string, trend models.TrendResult) {
	symbol := s.cfg.Strategy.Symbol
	side := cand.Type.EntrySide()
	entry := candles[len(candles)-1].Close

	balance, err := s.accountBalance(ctx)
	if err != nil {
		s.log.Error("balance fetch failed", logger.Error(err))
		s.metrics.RecordError("balance")
		return
	}
	if balance <= 0 {
		s.log.Warn("account balance is zero or unavailable")
		return
	}

	stop := s.sizer.StopLoss(cand, candles, side)
	takeProfit := s.sizer.TakeProfit(entry, side, s.cfg.Strategy.TakeProfitPips)

	qty, err := s.sizer.Size(balance, entry, stop)
	if err != nil {
		s.log.Warn("sizing rejected entry", logger.Error(err))
		s.metrics.RecordOrderRejected(symbol, "sizing")
		return
	}
	if !s.sizer.SizeAllowed(qty) {
		s.log.Warn("position size out of bounds", logger.Float64("qty", qty))
		s.metrics.RecordOrderRejected(symbol, "size_bounds")
		return
	}

	ok, reason := s.risk.CanOpenTrade(balance, false)
	if !ok {
		s.log.Warn("risk gate closed", logger.String("reason", reason))
		s.metrics.RecordOrderRejected(symbol, "risk")
		return
	}

	intent := models.OrderIntent{
		Symbol:     symbol,
		Timeframe:  tf,
		Side:       side,
		Entry:      entry,
		StopLoss:   stop,
		TakeProfit: takeProfit,
		Quantity:   qty,
		Pattern:    cand.Type,
	}

	s.log.Info("placing order",
		logger.String("side", string(side)),
		logger.String("pattern", string(cand.Type)),
		logger.String("trend", string(trend.Direction)),
		logger.Float64("entry", entry),
		logger.Float64("stop_loss", stop),
		logger.Float64("take_profit", takeProfit),
		logger.Float64("qty", qty),
		logger.Float64("risk_amount", balance*s.cfg.Strategy.RiskPct))

	trade, err := s.executor.PlaceOrder(ctx, intent)
	if err != nil {
		var rej *models.RejectedError
		if errors.As(err, &rej) {
			s.log.Warn("order rejected by venue", logger.Error(err))
			s.metrics.RecordOrderRejected(symbol, "venue")
		} else {
			s.log.Error("order placement failed", logger.Error(err))
			s.metrics.RecordError("execute")
		}
		return
	}

	s.metrics.RecordOrderPlaced(symbol, string(side))
	if err := s.risk.RegisterTrade(trade); err != nil {
		s.log.Error("trade registration failed", logger.Error(err))
		return
	}
	if s.sink != nil {
		s.sink.EnqueueTrade(trade)
	}
	s.log.Info("trade opened",
		logger.String("trade_id", trade.ID),
		logger.String("pattern", string(cand.Type)))
}

// accountBalance resolves the balance used for sizing and risk gates. In
// dry_run mode the simulated balance comes from config; live mode asks the
// venue.
func (s *Strategy) accountBalance(ctx context.Context) (float64, error) {
	if s.cfg.Strategy.TradeMode == "dry_run" {
		return s.cfg.Strategy.DryRunBalance, nil
	}
	return s.market.FetchBalance(ctx)
}
