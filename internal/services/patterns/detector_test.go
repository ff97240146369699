package patterns

import (
	"errors"
	"testing"
	"time"

	"TradeCore/internal/domain/models"
	"TradeCore/pkg/config"
	"TradeCore/pkg/logger"
)

func testDetector(t *testing.T) *Detector {
	t.Helper()
	cfg := &config.Config{}
	cfg.Patterns.MinPatternBars = 20
	cfg.Patterns.MaxPatternBars = 100
	cfg.Patterns.SymmetryTolerance = 0.15
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewDetector(cfg, log)
}

// baseSeries builds n quiet candles around price 105 with a slight drift so
// unmodified bars never tie as swing extremes.
func baseSeries(n int) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		drift := 0.001 * float64(i)
		out[i] = models.Candle{
			OpenTime: t0.Add(time.Duration(i) * time.Hour),
			Open:     105, High: 105.5 - drift, Low: 104.5 - drift, Close: 105,
		}
	}
	return out
}

func setBar(c []models.Candle, i int, high, low, close float64) {
	c[i].High = high
	c[i].Low = low
	c[i].Close = close
	c[i].Open = close
}

func findType(cands []*models.PatternCandidate, pt models.PatternType) *models.PatternCandidate {
	for _, c := range cands {
		if c.Type == pt {
			return c
		}
	}
	return nil
}

func TestDetectInsufficientData(t *testing.T) {
	d := testDetector(t)
	if _, err := d.Detect(baseSeries(10)); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("err = %v, want ErrInsufficientData", err)
	}
}

func TestDetectDoubleTop(t *testing.T) {
	d := testDetector(t)
	c := baseSeries(50)
	setBar(c, 30, 110, 104.5, 105) // first peak
	setBar(c, 36, 103, 102, 102.5) // trough
	setBar(c, 42, 110, 104.5, 105) // second peak

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	dt := findType(cands, models.DoubleTop)
	if dt == nil {
		t.Fatalf("double top not detected in %d candidates", len(cands))
	}
	if dt.Neckline != 102 {
		t.Fatalf("neckline = %v, want 102", dt.Neckline)
	}
	if dt.Confidence != 1.0 {
		t.Fatalf("confidence = %v, want 1.0 for equal peaks", dt.Confidence)
	}
	if dt.Head != 110 || dt.LeftShoulder != 110 || dt.RightShoulder != 110 {
		t.Fatalf("peak levels wrong: %+v", dt)
	}
}

func TestDetectDoubleTopRejectsShallowTrough(t *testing.T) {
	d := testDetector(t)
	c := baseSeries(50)
	setBar(c, 30, 110, 108.5, 109)
	setBar(c, 42, 110, 108.5, 109)
	// Keep the floor between the peaks above the 2% retracement threshold.
	for i := 31; i < 42; i++ {
		c[i].Low = 108.5
		c[i].High = 109.5 - 0.001*float64(i)
		c[i].Close = 109
	}

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if dt := findType(cands, models.DoubleTop); dt != nil {
		t.Fatalf("shallow double top should not be detected: %+v", dt)
	}
}

func TestDetectErectHeadAndShoulders(t *testing.T) {
	d := testDetector(t)
	c := baseSeries(50)
	setBar(c, 20, 108, 104.5, 105) // left shoulder
	setBar(c, 30, 112, 104.5, 105) // head
	setBar(c, 40, 108, 104.5, 105) // right shoulder

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	hs := findType(cands, models.ErectHeadShoulders)
	if hs == nil {
		t.Fatal("erect head and shoulders not detected")
	}
	if hs.Head != 112 || hs.RightShoulder != 108 {
		t.Fatalf("levels wrong: %+v", hs)
	}
	if hs.Neckline < 104 || hs.Neckline > 105 {
		t.Fatalf("neckline = %v, want the trough floor near 104.5", hs.Neckline)
	}
}

func TestDetectInvertedHeadAndShoulders(t *testing.T) {
	d := testDetector(t)
	c := baseSeries(50)
	setBar(c, 20, 105.5, 102, 105) // left shoulder trough
	setBar(c, 30, 105.5, 98, 105)  // head trough
	setBar(c, 40, 105.5, 102, 105) // right shoulder trough

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	hs := findType(cands, models.InvertedHeadShoulders)
	if hs == nil {
		t.Fatal("inverted head and shoulders not detected")
	}
	if hs.Neckline != 105.5 {
		t.Fatalf("neckline = %v, want 105.5", hs.Neckline)
	}
}

func TestDetectHnSRejectsAsymmetricShoulders(t *testing.T) {
	d := testDetector(t)
	c := baseSeries(50)
	setBar(c, 20, 108, 104.5, 105)
	setBar(c, 30, 140, 104.5, 105)
	setBar(c, 40, 90, 89, 90) // far from left shoulder

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if hs := findType(cands, models.ErectHeadShoulders); hs != nil {
		t.Fatalf("asymmetric pattern should not be detected: %+v", hs)
	}
}

func rectSeries(n int) []models.Candle {
	out := make([]models.Candle, n)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		c := models.Candle{OpenTime: t0.Add(time.Duration(i) * time.Hour)}
		if i%2 == 0 {
			c.High, c.Low, c.Close = 106, 101.5, 104
		} else {
			c.High, c.Low, c.Close = 104.5, 100, 101
		}
		c.Open = c.Close
		out[i] = c
	}
	return out
}

func TestDetectErectRectangleBreakout(t *testing.T) {
	d := testDetector(t)
	c := rectSeries(45)
	setBar(c, 44, 107.5, 105, 107) // breakout above resistance

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	r := findType(cands, models.ErectRectangle)
	if r == nil {
		t.Fatal("rectangle breakout not detected")
	}
	if r.RectTop != 106 || r.RectBottom != 100 {
		t.Fatalf("channel = [%v, %v], want [100, 106]", r.RectBottom, r.RectTop)
	}
	if r.Neckline != 106 {
		t.Fatalf("neckline = %v, want resistance", r.Neckline)
	}
}

func TestDetectInvertedRectangleBreakdown(t *testing.T) {
	d := testDetector(t)
	c := rectSeries(45)
	setBar(c, 44, 100.5, 98.5, 99) // breakdown below support

	cands, err := d.Detect(c)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	r := findType(cands, models.InvertedRectangle)
	if r == nil {
		t.Fatal("rectangle breakdown not detected")
	}
	if r.Neckline != 100 {
		t.Fatalf("neckline = %v, want support", r.Neckline)
	}
}

func TestDetectNoRectangleWithoutBreakout(t *testing.T) {
	d := testDetector(t)
	cands, err := d.Detect(rectSeries(45))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if r := findType(cands, models.ErectRectangle); r != nil {
		t.Fatalf("no breakout, but detected: %+v", r)
	}
	if r := findType(cands, models.InvertedRectangle); r != nil {
		t.Fatalf("no breakdown, but detected: %+v", r)
	}
}

func TestConfirmRetestDoubleTop(t *testing.T) {
	d := testDetector(t)
	cand := &models.PatternCandidate{Type: models.DoubleTop, Neckline: 102}

	// Touch of the neckline from above, then a close well below it.
	c := baseSeries(10)
	setBar(c, 7, 104, 101.5, 102.5)
	setBar(c, 9, 101, 99, 99.5)
	if !d.ConfirmRetest(cand, c) {
		t.Fatal("expected retest confirmation")
	}

	// Touch but no rejection close.
	c2 := baseSeries(10)
	setBar(c2, 7, 104, 101.5, 102.5)
	if d.ConfirmRetest(cand, c2) {
		t.Fatal("close above neckline must not confirm")
	}

	// Rejection close but no touch inside the window.
	c3 := baseSeries(10)
	for i := range c3 {
		setBar(c3, i, 112, 110, 111)
	}
	setBar(c3, 9, 100, 98, 99)
	if d.ConfirmRetest(cand, c3) {
		t.Fatal("missing touch must not confirm")
	}
}

func TestConfirmRetestInvertedHnS(t *testing.T) {
	d := testDetector(t)
	cand := &models.PatternCandidate{Type: models.InvertedHeadShoulders, RightShoulder: 102}

	c := baseSeries(10)
	setBar(c, 6, 104, 101.5, 103) // low back near the shoulder level
	setBar(c, 9, 106, 104.5, 105) // close above level*1.02
	if !d.ConfirmRetest(cand, c) {
		t.Fatal("expected retest confirmation")
	}
}

func TestConfirmRetestErectRect(t *testing.T) {
	d := testDetector(t)
	cand := &models.PatternCandidate{Type: models.ErectRectangle, Neckline: 106, RectTop: 106, RectBottom: 100}

	c := baseSeries(10)
	setBar(c, 7, 108, 105.5, 107) // retest of broken resistance from above
	setBar(c, 9, 109, 107.5, 108)
	if !d.ConfirmRetest(cand, c) {
		t.Fatal("expected retest confirmation")
	}
}

func TestConfirmRetestTooFewCandles(t *testing.T) {
	d := testDetector(t)
	cand := &models.PatternCandidate{Type: models.DoubleTop, Neckline: 102}
	if d.ConfirmRetest(cand, baseSeries(4)) {
		t.Fatal("short window must not confirm")
	}
}
