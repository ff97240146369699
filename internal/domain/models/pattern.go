package models

import (
	"fmt"
	"time"
)

// PatternType identifies one of the supported chart patterns.
type PatternType string

const (
	ErectHeadShoulders    PatternType = "ErectHnS"
	InvertedHeadShoulders PatternType = "InvertedHnS"
	DoubleTop             PatternType = "DoubleTop"
	ErectRectangle        PatternType = "ErectRect"
	InvertedRectangle     PatternType = "InvRect"
)

// AllPatternTypes lists every supported pattern type.
func AllPatternTypes() []PatternType {
	return []PatternType{
		ErectHeadShoulders,
		InvertedHeadShoulders,
		DoubleTop,
		ErectRectangle,
		InvertedRectangle,
	}
}

// IsValidPatternType reports whether s names a supported pattern.
func IsValidPatternType(s string) bool {
	switch PatternType(s) {
	case ErectHeadShoulders, InvertedHeadShoulders, DoubleTop, ErectRectangle, InvertedRectangle:
		return true
	default:
		return false
	}
}

// Side is the direction of an order or trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// EntrySide returns the trade side implied by the pattern type.
func (p PatternType) EntrySide() Side {
	switch p {
	case InvertedHeadShoulders, ErectRectangle:
		return SideBuy
	default:
		return SideSell
	}
}

// PatternCandidate is a geometric match awaiting (or holding) retest confirmation.
// Key levels are absolute prices; indexes refer to the candle window the
// candidate was detected in.
type PatternCandidate struct {
	Type           PatternType
	Neckline       float64
	LeftShoulder   float64
	Head           float64
	RightShoulder  float64
	RectTop        float64
	RectBottom     float64
	FormationStart int
	FormationEnd   int
	BreakoutIndex  int
	Confirmed      bool
	Confidence     float64
	DetectedAt     time.Time
}

// Fingerprint is a stable structural identity for the candidate, used to
// track an in-flight retest across repeated scans of a sliding window.
// It is built from the pattern type and its key price levels rather than
// window indexes, which shift as the window rolls.
func (p *PatternCandidate) Fingerprint() string {
	switch p.Type {
	case ErectRectangle, InvertedRectangle:
		return fmt.Sprintf("%s|%.4f|%.4f", p.Type, p.RectTop, p.RectBottom)
	default:
		return fmt.Sprintf("%s|%.4f|%.4f|%.4f", p.Type, p.Neckline, p.Head, p.RightShoulder)
	}
}

// BreakLevel returns the level a retest must touch for this pattern.
func (p *PatternCandidate) BreakLevel() float64 {
	switch p.Type {
	case ErectHeadShoulders, InvertedHeadShoulders:
		return p.RightShoulder
	case ErectRectangle:
		return p.RectTop
	case InvertedRectangle:
		return p.RectBottom
	default:
		return p.Neckline
	}
}
