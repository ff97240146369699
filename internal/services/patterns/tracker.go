package patterns

import (
	"sort"
	"time"

	"TradeCore/internal/domain/models"
)

// consumedTTLBars is how long a confirmed fingerprint stays suppressed
// before the same structure may be traded again.
const consumedTTLBars = 100

type tracked struct {
	cand *models.PatternCandidate
	age  int // closed bars since first detection
}

// Tracker is the pending-candidate table. Candidates are keyed by their
// structural fingerprint so a formation re-detected on every scan of the
// sliding window is tracked exactly once. A candidate expires if it is not
// confirmed within the retest window, and a confirmed fingerprint is
// suppressed so the same structure does not produce a second entry.
type Tracker struct {
	window   int
	pending  map[string]*tracked
	consumed map[string]int
	lastBar  time.Time
}

func NewTracker(retestWindowBars int) *Tracker {
	return &Tracker{
		window:   retestWindowBars,
		pending:  make(map[string]*tracked),
		consumed: make(map[string]int),
	}
}

// Track merges freshly detected candidates into the table and returns the
// candidates still awaiting confirmation, ordered by fingerprint. Ages only
// advance when barTime moves to a new closed candle, so re-scanning the same
// bar is idempotent.
func (t *Tracker) Track(detected []*models.PatternCandidate, barTime time.Time) []*models.PatternCandidate {
	if t.lastBar.IsZero() {
		t.lastBar = barTime
	} else if barTime.After(t.lastBar) {
		t.lastBar = barTime
		for _, tr := range t.pending {
			tr.age++
		}
		for fp := range t.consumed {
			t.consumed[fp]++
			if t.consumed[fp] > consumedTTLBars {
				delete(t.consumed, fp)
			}
		}
	}

	for fp, tr := range t.pending {
		if tr.age > t.window {
			delete(t.pending, fp)
		}
	}

	for _, c := range detected {
		fp := c.Fingerprint()
		if _, done := t.consumed[fp]; done {
			continue
		}
		if _, seen := t.pending[fp]; seen {
			continue
		}
		t.pending[fp] = &tracked{cand: c}
	}

	out := make([]*models.PatternCandidate, 0, len(t.pending))
	for _, tr := range t.pending {
		out = append(out, tr.cand)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Fingerprint() < out[j].Fingerprint()
	})
	return out
}

// MarkConfirmed removes the candidate from the pending table and suppresses
// its fingerprint.
func (t *Tracker) MarkConfirmed(c *models.PatternCandidate) {
	c.Confirmed = true
	fp := c.Fingerprint()
	delete(t.pending, fp)
	t.consumed[fp] = 0
}

// PendingCount reports the number of candidates awaiting confirmation.
func (t *Tracker) PendingCount() int { return len(t.pending) }
