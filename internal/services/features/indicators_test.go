package features

import (
	"math"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
)

func flatCandles(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     price, High: price, Low: price, Close: price,
		}
	}
	return out
}

func rampCandles(n int, start, step float64) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		p := start + float64(i)*step
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     p, High: p + 0.5, Low: p - 0.5, Close: p,
		}
	}
	return out
}

func TestEMAFlatSeries(t *testing.T) {
	ema := EMA(flatCandles(60, 100), 20)
	if ema == nil {
		t.Fatal("expected series")
	}
	if got := ema[len(ema)-1]; math.Abs(got-100) > 1e-9 {
		t.Fatalf("ema = %v, want 100", got)
	}
}

func TestEMAInsufficientData(t *testing.T) {
	if EMA(flatCandles(10, 100), 20) != nil {
		t.Fatal("expected nil for short series")
	}
}

func TestSMA(t *testing.T) {
	c := rampCandles(5, 1, 1) // closes 1..5
	if got := SMA(c, 5); math.Abs(got-3) > 1e-9 {
		t.Fatalf("sma = %v, want 3", got)
	}
}

func TestATRFlatSeriesEqualsRange(t *testing.T) {
	c := rampCandles(50, 100, 0) // constant price, range 1.0
	got := ATR(c, 14)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("atr = %v, want 1.0", got)
	}
}

func TestATRInsufficientData(t *testing.T) {
	if got := ATR(flatCandles(10, 100), 14); got != 0 {
		t.Fatalf("atr = %v, want 0", got)
	}
}

func TestADXTrendingAboveFlat(t *testing.T) {
	trending := ADX(rampCandles(120, 100, 1), 14)
	if trending < 25 {
		t.Fatalf("adx on steady uptrend = %v, want >= 25", trending)
	}
}

func TestRegressionSlopeSign(t *testing.T) {
	up := RegressionSlope(rampCandles(60, 100, 1), 50)
	if up <= 0 {
		t.Fatalf("uptrend slope = %v, want > 0", up)
	}
	down := RegressionSlope(rampCandles(60, 200, -1), 50)
	if down >= 0 {
		t.Fatalf("downtrend slope = %v, want < 0", down)
	}
	flat := RegressionSlope(flatCandles(60, 100), 50)
	if math.Abs(flat) > 1e-9 {
		t.Fatalf("flat slope = %v, want 0", flat)
	}
}

func TestSwingHighsAndLows(t *testing.T) {
	// Build a single peak at index 10 and a single trough at index 20.
	c := flatCandles(31, 100)
	c[10].High = 110
	c[20].Low = 90

	highs := SwingHighs(c, 5)
	if len(highs) != 1 || highs[0].Index != 10 || highs[0].Price != 110 {
		t.Fatalf("highs = %+v", highs)
	}
	lows := SwingLows(c, 5)
	if len(lows) != 1 || lows[0].Index != 20 || lows[0].Price != 90 {
		t.Fatalf("lows = %+v", lows)
	}
}
