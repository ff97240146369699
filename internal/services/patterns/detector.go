package patterns

import (
	"math"
	"time"

	"TradeCore/internal/domain/models"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"
)

const (
	swingWindow    = 5
	recencyBars    = 20
	touchTolerance = 0.02
	minTroughDepth = 0.02
	rectMinRange   = 0.02
	rectMaxRange   = 0.15
	rectTouchPad   = 0.01
	rectConfidence = 0.7
)

// Detector finds chart pattern candidates in a candle window and verifies
// their retest confirmation. Detection is purely geometric; a candidate only
// becomes tradeable once ConfirmRetest observes a touch of the break level
// followed by a rejection close.
type Detector struct {
	minBars     int
	maxBars     int
	symmetryTol float64
	log         *logger.Logger
}

func NewDetector(cfg *config.Config, log *logger.Logger) *Detector {
	return &Detector{
		minBars:     cfg.Patterns.MinPatternBars,
		maxBars:     cfg.Patterns.MaxPatternBars,
		symmetryTol: cfg.Patterns.SymmetryTolerance,
		log:         log,
	}
}

// Detect scans the window for all supported pattern types.
func (d *Detector) Detect(candles []models.Candle) ([]*models.PatternCandidate, error) {
	if len(candles) < d.minBars {
		return nil, models.ErrInsufficientData
	}

	var out []*models.PatternCandidate
	out = append(out, d.detectHeadAndShoulders(candles, true)...)
	out = append(out, d.detectHeadAndShoulders(candles, false)...)
	out = append(out, d.detectDoubleTop(candles)...)
	out = append(out, d.detectRectangles(candles, true)...)
	out = append(out, d.detectRectangles(candles, false)...)

	if len(out) > 0 {
		d.log.Debug("patterns detected", logger.Int("count", len(out)))
	}
	return out, nil
}

// swing is a local extreme within the detection window.
type swing struct {
	Index int
	Price float64
}

// swingMaxima marks bars whose high equals the maximum over a centered
// window of 2*window+1 bars. Ties count, so twin peaks both register.
func swingMaxima(candles []models.Candle, window int) []swing {
	var out []swing
	for i := window; i < len(candles)-window; i++ {
		h := candles[i].High
		isMax := true
		for j := i - window; j <= i+window; j++ {
			if candles[j].High > h {
				isMax = false
				break
			}
		}
		if isMax {
			out = append(out, swing{Index: i, Price: h})
		}
	}
	return out
}

func swingMinima(candles []models.Candle, window int) []swing {
	var out []swing
	for i := window; i < len(candles)-window; i++ {
		l := candles[i].Low
		isMin := true
		for j := i - window; j <= i+window; j++ {
			if candles[j].Low < l {
				isMin = false
				break
			}
		}
		if isMin {
			out = append(out, swing{Index: i, Price: l})
		}
	}
	return out
}

// detectHeadAndShoulders scans consecutive swing triples. Erect patterns
// form on swing highs with the head above both shoulders; inverted patterns
// mirror on swing lows.
func (d *Detector) detectHeadAndShoulders(candles []models.Candle, erect bool) []*models.PatternCandidate {
	var swings []swing
	if erect {
		swings = swingMaxima(candles, swingWindow)
	} else {
		swings = swingMinima(candles, swingWindow)
	}
	if len(swings) < 3 {
		return nil
	}

	var out []*models.PatternCandidate
	for i := 0; i+2 < len(swings); i++ {
		left, head, right := swings[i], swings[i+1], swings[i+2]

		if erect {
			if !(head.Price > left.Price && head.Price > right.Price) {
				continue
			}
		} else {
			if !(head.Price < left.Price && head.Price < right.Price) {
				continue
			}
		}

		avg := (left.Price + right.Price) / 2
		symmetry := 1.0
		if avg != 0 {
			symmetry = math.Abs(left.Price-right.Price) / avg
		}
		if symmetry > d.symmetryTol {
			continue
		}

		// Neckline joins the extremes between the shoulders: troughs for
		// erect patterns, peaks for inverted.
		var neckline float64
		if erect {
			leftTrough := lowestLow(candles, left.Index, head.Index)
			rightTrough := lowestLow(candles, head.Index, right.Index)
			neckline = (leftTrough + rightTrough) / 2
		} else {
			leftPeak := highestHigh(candles, left.Index, head.Index)
			rightPeak := highestHigh(candles, head.Index, right.Index)
			neckline = (leftPeak + rightPeak) / 2
		}

		if len(candles)-right.Index > recencyBars {
			continue
		}

		ptype := models.ErectHeadShoulders
		if !erect {
			ptype = models.InvertedHeadShoulders
		}
		out = append(out, &models.PatternCandidate{
			Type:           ptype,
			Neckline:       neckline,
			LeftShoulder:   left.Price,
			Head:           head.Price,
			RightShoulder:  right.Price,
			FormationStart: left.Index,
			FormationEnd:   right.Index,
			Confidence:     1.0 - symmetry,
			DetectedAt:     time.Now(),
		})
	}
	return out
}

// detectDoubleTop scans consecutive swing-high pairs at similar levels with
// a sufficiently deep trough between them. The trough is the neckline.
func (d *Detector) detectDoubleTop(candles []models.Candle) []*models.PatternCandidate {
	swings := swingMaxima(candles, swingWindow)
	if len(swings) < 2 {
		return nil
	}

	var out []*models.PatternCandidate
	for i := 0; i+1 < len(swings); i++ {
		first, second := swings[i], swings[i+1]

		avg := (first.Price + second.Price) / 2
		similarity := 1.0
		if avg != 0 {
			similarity = math.Abs(first.Price-second.Price) / avg
		}
		if similarity > d.symmetryTol {
			continue
		}

		trough := lowestLow(candles, first.Index, second.Index)
		if avg == 0 || (avg-trough)/avg < minTroughDepth {
			continue
		}

		if len(candles)-second.Index > recencyBars {
			continue
		}

		out = append(out, &models.PatternCandidate{
			Type:           models.DoubleTop,
			Neckline:       trough,
			LeftShoulder:   first.Price,
			Head:           math.Max(first.Price, second.Price),
			RightShoulder:  second.Price,
			FormationStart: first.Index,
			FormationEnd:   second.Index,
			Confidence:     1.0 - similarity,
			DetectedAt:     time.Now(),
		})
	}
	return out
}

// detectRectangles looks for a tight consolidation channel in the recent
// window with at least two touches of each rail, broken by the scan bar's
// close. Erect rectangles break upward, inverted downward.
func (d *Detector) detectRectangles(candles []models.Candle, erect bool) []*models.PatternCandidate {
	offset := 0
	tail := candles
	if len(candles) > d.maxBars {
		offset = len(candles) - d.maxBars
		tail = candles[offset:]
	}
	if len(tail) < d.minBars {
		return nil
	}

	var out []*models.PatternCandidate
	for i := len(tail) - d.minBars; i < len(tail); i++ {
		if i < d.minBars {
			continue
		}
		lookback := tail[i-d.minBars : i]

		resistance := lookback[0].High
		support := lookback[0].Low
		for _, c := range lookback {
			resistance = math.Max(resistance, c.High)
			support = math.Min(support, c.Low)
		}

		mid := (resistance + support) / 2
		if mid == 0 {
			continue
		}
		rangeRatio := (resistance - support) / mid
		if rangeRatio < rectMinRange || rangeRatio > rectMaxRange {
			continue
		}

		touchesTop, touchesBottom := 0, 0
		for _, c := range lookback {
			if c.High >= resistance*(1-rectTouchPad) {
				touchesTop++
			}
			if c.Low <= support*(1+rectTouchPad) {
				touchesBottom++
			}
		}
		if touchesTop < 2 || touchesBottom < 2 {
			continue
		}

		close := tail[i].Close
		var ptype models.PatternType
		var neckline float64
		switch {
		case erect && close > resistance:
			ptype, neckline = models.ErectRectangle, resistance
		case !erect && close < support:
			ptype, neckline = models.InvertedRectangle, support
		default:
			continue
		}

		out = append(out, &models.PatternCandidate{
			Type:           ptype,
			Neckline:       neckline,
			RectTop:        resistance,
			RectBottom:     support,
			FormationStart: offset + i - d.minBars,
			FormationEnd:   offset + i,
			BreakoutIndex:  offset + i,
			Confidence:     rectConfidence,
			DetectedAt:     time.Now(),
		})
	}
	return out
}

// ConfirmRetest reports whether the candidate's break level has been touched
// within the last five closed bars and the latest close sits on the rejection
// side of it. The touch tolerance is 2% of the level.
func (d *Detector) ConfirmRetest(p *models.PatternCandidate, candles []models.Candle) bool {
	if len(candles) < 5 {
		return false
	}
	current := candles[len(candles)-1].Close
	recent := candles[len(candles)-5:]

	switch p.Type {
	case models.ErectHeadShoulders:
		level := p.RightShoulder
		return touchedFromBelow(recent, level) && current < level*(1-touchTolerance)

	case models.InvertedHeadShoulders:
		level := p.RightShoulder
		return touchedFromAbove(recent, level) && current > level*(1+touchTolerance)

	case models.DoubleTop:
		level := p.Neckline
		return touchedFromAbove(recent, level) && current < level*(1-touchTolerance)

	case models.ErectRectangle:
		level := p.Neckline
		return touchedFromAbove(recent, level) && current > level*(1+rectTouchPad)

	case models.InvertedRectangle:
		level := p.Neckline
		return touchedFromBelow(recent, level) && current < level*(1-rectTouchPad)
	}
	return false
}

// touchedFromBelow reports a high within tolerance of the level.
func touchedFromBelow(recent []models.Candle, level float64) bool {
	tol := level * touchTolerance
	for _, c := range recent {
		if math.Abs(c.High-level) <= tol {
			return true
		}
	}
	return false
}

// touchedFromAbove reports a low within tolerance of the level.
func touchedFromAbove(recent []models.Candle, level float64) bool {
	tol := level * touchTolerance
	for _, c := range recent {
		if math.Abs(c.Low-level) <= tol {
			return true
		}
	}
	return false
}

func lowestLow(candles []models.Candle, from, to int) float64 {
	low := candles[from].Low
	for i := from; i <= to; i++ {
		low = math.Min(low, candles[i].Low)
	}
	return low
}

func highestHigh(candles []models.Candle, from, to int) float64 {
	high := candles[from].High
	for i := from; i <= to; i++ {
		high = math.Max(high, candles[i].High)
	}
	return high
}
