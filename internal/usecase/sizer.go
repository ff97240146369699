package usecase

import (
	"fmt"
	"math"

	"TradeCore/internal/domain/models"
	"TradeCore/internal/services/features"
	"TradeCore/pkg/config"
)

// PositionSizer converts a risk budget into an order quantity and derives
// protective levels from pattern structure.
type PositionSizer struct {
	riskPct       float64
	pipsUnitInUSD float64
	atrPeriod     int
	atrMultiplier float64
	stopPadding   float64
	minStopDist   float64
	minQty        float64
	maxQty        float64
}

// NewPositionSizer creates a PositionSizer from the sizing config block.
func NewPositionSizer(cfg *config.Config) *PositionSizer {
	return &PositionSizer{
		riskPct:       cfg.Strategy.RiskPct,
		pipsUnitInUSD: cfg.Sizing.PipsUnitInUSD,
		atrPeriod:     cfg.Sizing.ATRPeriod,
		atrMultiplier: cfg.Sizing.ATRMultiplier,
		stopPadding:   cfg.Sizing.StopLossPaddingPoints,
		minStopDist:   cfg.Sizing.MinStopDistance,
		minQty:        cfg.Sizing.MinQty,
		maxQty:        cfg.Sizing.MaxQty,
	}
}

// Size computes the order quantity:
//
//	quantity = (balance * riskPct) / |entry - stopLoss|
//
// so that a stop-out loses exactly the configured fraction of the balance.
func (s *PositionSizer) Size(balance, entry, stopLoss float64) (float64, error) {
	if balance <= 0 {
		return 0, fmt.Errorf("account balance must be positive, got %v", balance)
	}
	if entry <= 0 || stopLoss <= 0 {
		return 0, fmt.Errorf("entry and stop loss must be positive")
	}

	dist := math.Abs(entry - stopLoss)
	if dist == 0 {
		return 0, models.ErrInvalidStop
	}
	if dist < s.minStopDist {
		return 0, fmt.Errorf("stop distance %v below minimum %v: %w", dist, s.minStopDist, models.ErrInvalidStop)
	}

	return balance * s.riskPct / dist, nil
}

// StopLoss derives the protective stop from the pattern structure, padded
// away from the entry. When the pattern carries no usable level it falls
// back to an ATR distance from the entry.
func (s *PositionSizer) StopLoss(p *models.PatternCandidate, candles []models.Candle, side models.Side) float64 {
	if level, ok := s.structuralStop(p, side); ok {
		return level
	}
	entry := candles[len(candles)-1].Close
	dist := features.ATR(candles, s.atrPeriod) * s.atrMultiplier
	if side == models.SideBuy {
		return entry - dist
	}
	return entry + dist
}

func (s *PositionSizer) structuralStop(p *models.PatternCandidate, side models.Side) (float64, bool) {
	pad := s.stopPadding

	switch p.Type {
	case models.ErectHeadShoulders:
		if side == models.SideSell && p.RightShoulder > 0 {
			return p.RightShoulder + pad, true
		}
	case models.InvertedHeadShoulders:
		if side == models.SideBuy && p.RightShoulder > 0 {
			return p.RightShoulder - pad, true
		}
	case models.DoubleTop:
		if side == models.SideSell {
			if peak := math.Max(p.LeftShoulder, p.RightShoulder); peak > 0 {
				return peak + pad, true
			}
		}
	case models.ErectRectangle:
		if side == models.SideBuy && p.RectBottom > 0 {
			return p.RectBottom - pad, true
		}
	case models.InvertedRectangle:
		if side == models.SideSell && p.RectTop > 0 {
			return p.RectTop + pad, true
		}
	}
	return 0, false
}

// TakeProfit places the target a fixed pip distance from the entry.
func (s *PositionSizer) TakeProfit(entry float64, side models.Side, pips float64) float64 {
	dist := pips * s.pipsUnitInUSD
	if side == models.SideBuy {
		return entry + dist
	}
	return entry - dist
}

// SizeAllowed reports whether the quantity is inside the venue bounds.
func (s *PositionSizer) SizeAllowed(qty float64) bool {
	return qty >= s.minQty && qty <= s.maxQty
}
