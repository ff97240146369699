package usecase

import (
	"errors"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
	"TradeCore/pkg/config"
)

func sizerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Strategy.RiskPct = 0.02
	cfg.Sizing.PipsUnitInUSD = 1.0
	cfg.Sizing.ATRPeriod = 14
	cfg.Sizing.ATRMultiplier = 2.0
	cfg.Sizing.StopLossPaddingPoints = 10
	cfg.Sizing.MinStopDistance = 1.0
	cfg.Sizing.MinQty = 0.0001
	cfg.Sizing.MaxQty = 100
	return cfg
}

func TestSizeExactRiskFraction(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	qty, err := s.Size(10000, 100, 95)
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if qty != 40 {
		t.Fatalf("qty = %v, want exactly 40", qty)
	}
	// A stop-out loses exactly the risk budget.
	if loss := qty * 5; loss != 200 {
		t.Fatalf("stop-out loss = %v, want 200", loss)
	}
}

func TestSizeZeroStopDistance(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	if _, err := s.Size(10000, 100, 100); !errors.Is(err, models.ErrInvalidStop) {
		t.Fatalf("err = %v, want ErrInvalidStop", err)
	}
}

func TestSizeBelowMinStopDistance(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	if _, err := s.Size(10000, 100, 99.5); !errors.Is(err, models.ErrInvalidStop) {
		t.Fatalf("err = %v, want ErrInvalidStop", err)
	}
}

func TestSizeRequiresPositiveInputs(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	if _, err := s.Size(0, 100, 95); err == nil {
		t.Fatal("zero balance must error")
	}
	if _, err := s.Size(10000, 0, 95); err == nil {
		t.Fatal("zero entry must error")
	}
	if _, err := s.Size(10000, 100, -5); err == nil {
		t.Fatal("negative stop must error")
	}
}

func TestStructuralStopLevels(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	candles := flatSeries(30, 100)

	cases := []struct {
		name string
		cand *models.PatternCandidate
		side models.Side
		want float64
	}{
		{"erect hns above right shoulder", &models.PatternCandidate{Type: models.ErectHeadShoulders, RightShoulder: 108}, models.SideSell, 118},
		{"inverted hns below right shoulder", &models.PatternCandidate{Type: models.InvertedHeadShoulders, RightShoulder: 102}, models.SideBuy, 92},
		{"double top above highest peak", &models.PatternCandidate{Type: models.DoubleTop, LeftShoulder: 110, RightShoulder: 109}, models.SideSell, 120},
		{"erect rect below bottom rail", &models.PatternCandidate{Type: models.ErectRectangle, RectBottom: 100, RectTop: 106}, models.SideBuy, 90},
		{"inverted rect above top rail", &models.PatternCandidate{Type: models.InvertedRectangle, RectBottom: 100, RectTop: 106}, models.SideSell, 116},
	}
	for _, tc := range cases {
		if got := s.StopLoss(tc.cand, candles, tc.side); got != tc.want {
			t.Errorf("%s: stop = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestStopLossATRFallback(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	candles := flatSeries(30, 100) // constant bar range 1.0 -> ATR 1.0

	cand := &models.PatternCandidate{Type: models.DoubleTop} // no structure levels
	if got := s.StopLoss(cand, candles, models.SideSell); got != 102 {
		t.Fatalf("sell fallback stop = %v, want entry + 2*ATR = 102", got)
	}
	if got := s.StopLoss(cand, candles, models.SideBuy); got != 98 {
		t.Fatalf("buy fallback stop = %v, want entry - 2*ATR = 98", got)
	}
}

func TestTakeProfitPips(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	if got := s.TakeProfit(100, models.SideBuy, 50); got != 150 {
		t.Fatalf("buy tp = %v, want 150", got)
	}
	if got := s.TakeProfit(100, models.SideSell, 50); got != 50 {
		t.Fatalf("sell tp = %v, want 50", got)
	}
}

func TestSizeAllowedBounds(t *testing.T) {
	s := NewPositionSizer(sizerConfig())
	if s.SizeAllowed(0.00001) {
		t.Fatal("below minimum must be rejected")
	}
	if s.SizeAllowed(1000) {
		t.Fatal("above maximum must be rejected")
	}
	if !s.SizeAllowed(40) {
		t.Fatal("in-bounds size rejected")
	}
}

func flatSeries(n int, price float64) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     price, High: price + 0.5, Low: price - 0.5, Close: price,
		}
	}
	return out
}
