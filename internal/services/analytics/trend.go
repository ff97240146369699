package analytics

import (
	"TradeCore/internal/domain/models"
	"TradeCore/internal/services/features"
)

const (
	fastEMAPeriod   = 20
	slowEMAPeriod   = 50
	slopeWindow     = 50
	slopeThreshold  = 0.05
	adxPeriod       = 14
	adxStrengthCap  = 50.0
	swingVoteWindow = 5
)

// TrendDetector classifies the prevailing market direction by majority vote
// of three independent signals: swing-point structure, moving-average
// alignment, and regression slope. Strength is graded separately via ADX.
type TrendDetector struct{}

func NewTrendDetector() *TrendDetector { return &TrendDetector{} }

// Detect returns the trend direction and a strength in [0, 1].
// Requires at least slowEMAPeriod candles, the longest lookback of the
// three votes.
func (d *TrendDetector) Detect(candles []models.Candle) (models.TrendResult, error) {
	if len(candles) < slowEMAPeriod {
		return models.TrendResult{}, models.ErrInsufficientData
	}

	votes := map[models.TrendDirection]int{}
	votes[d.structureVote(candles)]++
	votes[d.emaVote(candles)]++
	votes[d.slopeVote(candles)]++

	dir := models.TrendSideways
	for _, cand := range []models.TrendDirection{models.TrendBullish, models.TrendBearish} {
		if votes[cand] >= 2 {
			dir = cand
			break
		}
	}

	strength := features.ADX(candles, adxPeriod) / adxStrengthCap
	if strength > 1 {
		strength = 1
	}

	return models.TrendResult{Direction: dir, Strength: strength}, nil
}

// structureVote compares the last two swing highs and lows. Higher highs
// with higher lows vote bullish; lower highs with lower lows vote bearish.
func (d *TrendDetector) structureVote(candles []models.Candle) models.TrendDirection {
	highs := features.SwingHighs(candles, swingVoteWindow)
	lows := features.SwingLows(candles, swingVoteWindow)
	if len(highs) < 2 || len(lows) < 2 {
		return models.TrendSideways
	}
	h1, h2 := highs[len(highs)-2], highs[len(highs)-1]
	l1, l2 := lows[len(lows)-2], lows[len(lows)-1]

	if h2.Price > h1.Price && l2.Price > l1.Price {
		return models.TrendBullish
	}
	if h2.Price < h1.Price && l2.Price < l1.Price {
		return models.TrendBearish
	}
	return models.TrendSideways
}

// emaVote checks fast/slow EMA alignment together with price position.
func (d *TrendDetector) emaVote(candles []models.Candle) models.TrendDirection {
	fast := features.EMA(candles, fastEMAPeriod)
	slow := features.EMA(candles, slowEMAPeriod)
	if fast == nil || slow == nil {
		return models.TrendSideways
	}
	last := len(candles) - 1
	close := candles[last].Close

	if fast[last] > slow[last] && close > fast[last] {
		return models.TrendBullish
	}
	if fast[last] < slow[last] && close < fast[last] {
		return models.TrendBearish
	}
	return models.TrendSideways
}

// slopeVote grades the normalized regression slope over the vote window.
// The slope is scaled to total fractional change across the window before
// comparing against the threshold.
func (d *TrendDetector) slopeVote(candles []models.Candle) models.TrendDirection {
	change := features.RegressionSlope(candles, slopeWindow) * float64(slopeWindow)
	if change > slopeThreshold {
		return models.TrendBullish
	}
	if change < -slopeThreshold {
		return models.TrendBearish
	}
	return models.TrendSideways
}
