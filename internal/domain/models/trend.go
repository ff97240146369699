package models

// TrendDirection classifies the dominant direction of a candle window.
type TrendDirection string

const (
	TrendBullish  TrendDirection = "bullish"
	TrendBearish  TrendDirection = "bearish"
	TrendSideways TrendDirection = "sideways"
)

// TrendResult is the ephemeral output of trend detection, recomputed each tick.
type TrendResult struct {
	Direction TrendDirection
	Strength  float64 // [0,1]
}
