package models

import "time"

// Candle represents a single OHLCV record for one timeframe bucket.
type Candle struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// LastClose returns the close of the most recent candle, or 0 for an empty window.
func LastClose(candles []Candle) float64 {
	if len(candles) == 0 {
		return 0
	}
	return candles[len(candles)-1].Close
}

// IsOrdered reports whether open times are strictly increasing.
func IsOrdered(candles []Candle) bool {
	for i := 1; i < len(candles); i++ {
		if !candles[i].OpenTime.After(candles[i-1].OpenTime) {
			return false
		}
	}
	return true
}
