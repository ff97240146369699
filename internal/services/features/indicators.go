package features

import (
	"math"

	"TradeCore/internal/domain/models"
)

// EMA computes an exponential moving average series over closes with the
// given period. The first period-1 entries are seeded with a simple average.
// Returns nil if there are fewer candles than the period.
func EMA(candles []models.Candle, period int) []float64 {
	if period <= 0 || len(candles) < period {
		return nil
	}
	out := make([]float64, len(candles))
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += candles[i].Close
		out[i] = sum / float64(i+1)
	}
	k := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		out[i] = candles[i].Close*k + out[i-1]*(1-k)
	}
	return out
}

// SMA computes the simple moving average of the last period closes.
// Returns 0 if there is insufficient data.
func SMA(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < period {
		return 0
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	return sum / float64(period)
}

// TrueRange computes the true range of candle i relative to i-1.
func TrueRange(candles []models.Candle, i int) float64 {
	if i <= 0 || i >= len(candles) {
		return 0
	}
	hl := candles[i].High - candles[i].Low
	hc := math.Abs(candles[i].High - candles[i-1].Close)
	lc := math.Abs(candles[i].Low - candles[i-1].Close)
	return math.Max(hl, math.Max(hc, lc))
}

// ATR computes the average true range as the mean of the last period true
// ranges. Returns 0 if there is insufficient data.
func ATR(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}
	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		sum += TrueRange(candles, i)
	}
	return sum / float64(period)
}

// ADX computes Wilder's average directional index over the given period.
// Returns 0 if there is insufficient data. Values range 0..100; readings
// above ~25 indicate a trending market.
func ADX(candles []models.Candle, period int) float64 {
	if period <= 0 || len(candles) < 2*period+1 {
		return 0
	}

	var trSum, plusSum, minusSum float64
	for i := 1; i <= period; i++ {
		tr, plus, minus := directionalMove(candles, i)
		trSum += tr
		plusSum += plus
		minusSum += minus
	}

	dxSum := 0.0
	dxCount := 0
	adx := 0.0
	for i := period + 1; i < len(candles); i++ {
		tr, plus, minus := directionalMove(candles, i)
		trSum = trSum - trSum/float64(period) + tr
		plusSum = plusSum - plusSum/float64(period) + plus
		minusSum = minusSum - minusSum/float64(period) + minus

		if trSum == 0 {
			continue
		}
		plusDI := 100 * plusSum / trSum
		minusDI := 100 * minusSum / trSum
		sum := plusDI + minusDI
		if sum == 0 {
			continue
		}
		dx := 100 * math.Abs(plusDI-minusDI) / sum

		dxCount++
		if dxCount < period {
			dxSum += dx
		} else if dxCount == period {
			dxSum += dx
			adx = dxSum / float64(period)
		} else {
			adx = (adx*float64(period-1) + dx) / float64(period)
		}
	}
	if dxCount < period {
		return 0
	}
	return adx
}

func directionalMove(candles []models.Candle, i int) (tr, plusDM, minusDM float64) {
	up := candles[i].High - candles[i-1].High
	down := candles[i-1].Low - candles[i].Low
	if up > down && up > 0 {
		plusDM = up
	}
	if down > up && down > 0 {
		minusDM = down
	}
	return TrueRange(candles, i), plusDM, minusDM
}

// RegressionSlope fits a least-squares line to the closes of the last
// window candles and returns the slope normalized by the mean close, so
// the result is comparable across price scales. Returns 0 on insufficient
// data.
func RegressionSlope(candles []models.Candle, window int) float64 {
	if window < 2 || len(candles) < window {
		return 0
	}
	start := len(candles) - window
	n := float64(window)
	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < window; i++ {
		x := float64(i)
		y := candles[start+i].Close
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	mean := sumY / n
	if mean == 0 {
		return 0
	}
	return slope / mean
}

// SwingPoint is a local extreme in the candle window.
type SwingPoint struct {
	Index int
	Price float64
}

// SwingHighs returns the local maxima of highs: bars whose high strictly
// exceeds the highs of the window bars on each side.
func SwingHighs(candles []models.Candle, window int) []SwingPoint {
	var out []SwingPoint
	for i := window; i < len(candles)-window; i++ {
		h := candles[i].High
		isSwing := true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if candles[j].High >= h {
				isSwing = false
				break
			}
		}
		if isSwing {
			out = append(out, SwingPoint{Index: i, Price: h})
		}
	}
	return out
}

// SwingLows returns the local minima of lows, mirroring SwingHighs.
func SwingLows(candles []models.Candle, window int) []SwingPoint {
	var out []SwingPoint
	for i := window; i < len(candles)-window; i++ {
		l := candles[i].Low
		isSwing := true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if candles[j].Low <= l {
				isSwing = false
				break
			}
		}
		if isSwing {
			out = append(out, SwingPoint{Index: i, Price: l})
		}
	}
	return out
}
