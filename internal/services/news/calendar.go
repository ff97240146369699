package news

import (
	"context"
	"sort"
	"strings"
	"time"

	"TradeCore/internal/domain/models"
	drepo "TradeCore/internal/domain/repository"
	"TradeCore/pkg/cache"
	"TradeCore/pkg/config"
	xhttp "TradeCore/pkg/http"
	"TradeCore/pkg/logger"
)

// Calendar implements the NewsCalendar port against a weekly economic
// calendar JSON feed. Feed responses are cached so every timeframe pass
// within the TTL shares one upstream fetch.
type Calendar struct {
	url   string
	ttl   time.Duration
	http  *xhttp.Client
	cache cache.Service
	log   *logger.Logger
}

// New creates a Calendar. cacheSvc may be nil, in which case every call
// hits the feed.
func New(cfg *config.Config, cacheSvc cache.Service, log *logger.Logger) drepo.NewsCalendar {
	return &Calendar{
		url:   cfg.News.URL,
		ttl:   cfg.News.CacheTTL,
		http:  xhttp.NewClient(xhttp.WithTimeout(cfg.News.Timeout)),
		cache: cacheSvc,
		log:   log,
	}
}

// feedEvent is one entry of the upstream weekly feed.
type feedEvent struct {
	Title    string `json:"title"`
	Country  string `json:"country"`
	Date     string `json:"date"` // RFC3339
	Impact   string `json:"impact"`
	Forecast string `json:"forecast"`
	Previous string `json:"previous"`
}

// FetchHighImpactEvents returns the high-impact events for currency whose
// scheduled time falls inside [from, to].
func (c *Calendar) FetchHighImpactEvents(ctx context.Context, currency string, from, to time.Time) ([]models.NewsEvent, error) {
	events, err := c.allEvents(ctx, currency)
	if err != nil {
		return nil, err
	}

	var out []models.NewsEvent
	for _, e := range events {
		if !e.IsHighImpact() {
			continue
		}
		if e.Time.Before(from) || e.Time.After(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func (c *Calendar) allEvents(ctx context.Context, currency string) ([]models.NewsEvent, error) {
	key := "news:calendar:" + currency

	if c.cache != nil {
		var cached []models.NewsEvent
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	var feed []feedEvent
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.url,
	}, &feed)
	if err != nil {
		return nil, &models.DataUnavailableError{Source: "news", Err: err}
	}

	events := parseFeed(feed, currency)

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, events, c.ttl); err != nil {
			c.log.Warn("news cache write failed", logger.Error(err))
		}
	}
	return events, nil
}

func parseFeed(feed []feedEvent, currency string) []models.NewsEvent {
	events := make([]models.NewsEvent, 0, len(feed))
	for _, f := range feed {
		if !strings.EqualFold(f.Country, currency) {
			continue
		}
		when, err := time.Parse(time.RFC3339, f.Date)
		if err != nil {
			continue
		}
		events = append(events, models.NewsEvent{
			Title:    f.Title,
			Time:     when.UTC(),
			Impact:   models.ImpactLevel(strings.ToUpper(f.Impact)),
			Currency: strings.ToUpper(f.Country),
			Forecast: f.Forecast,
			Previous: f.Previous,
		})
	}
	return events
}
