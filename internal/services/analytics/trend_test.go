package analytics

import (
	"errors"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
)

func seriesFromCloses(closes []float64) []models.Candle {
	out := make([]models.Candle, len(closes))
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     c, High: c + 0.5, Low: c - 0.5, Close: c,
		}
	}
	return out
}

func trendSeries(n int, start, step float64) []models.Candle {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return seriesFromCloses(closes)
}

func TestDetectInsufficientData(t *testing.T) {
	d := NewTrendDetector()
	_, err := d.Detect(trendSeries(slowEMAPeriod-1, 100, 1))
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestDetectAtMinimumWindow(t *testing.T) {
	d := NewTrendDetector()
	res, err := d.Detect(trendSeries(slowEMAPeriod, 100, 1))
	if err != nil {
		t.Fatalf("Detect at minimum window: %v", err)
	}
	if res.Direction != models.TrendBullish {
		t.Fatalf("direction = %v, want bullish", res.Direction)
	}
}

func TestDetectBullish(t *testing.T) {
	d := NewTrendDetector()
	res, err := d.Detect(trendSeries(150, 100, 1))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Direction != models.TrendBullish {
		t.Fatalf("direction = %v, want bullish", res.Direction)
	}
	if res.Strength <= 0.5 {
		t.Fatalf("strength on steady trend = %v, want > 0.5", res.Strength)
	}
}

func TestDetectBearish(t *testing.T) {
	d := NewTrendDetector()
	res, err := d.Detect(trendSeries(150, 400, -1))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Direction != models.TrendBearish {
		t.Fatalf("direction = %v, want bearish", res.Direction)
	}
}

func TestDetectSidewaysOnFlat(t *testing.T) {
	d := NewTrendDetector()
	res, err := d.Detect(trendSeries(150, 100, 0))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Direction != models.TrendSideways {
		t.Fatalf("direction = %v, want sideways", res.Direction)
	}
}

func TestDetectStrengthBounded(t *testing.T) {
	d := NewTrendDetector()
	res, err := d.Detect(trendSeries(300, 100, 2))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if res.Strength < 0 || res.Strength > 1 {
		t.Fatalf("strength = %v, want within [0,1]", res.Strength)
	}
}
