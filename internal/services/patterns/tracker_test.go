package patterns

import (
	"testing"
	"time"

	"TradeCore/internal/domain/models"
)

func dtCandidate(neckline float64) *models.PatternCandidate {
	return &models.PatternCandidate{
		Type:          models.DoubleTop,
		Neckline:      neckline,
		Head:          110,
		LeftShoulder:  110,
		RightShoulder: 110,
		DetectedAt:    time.Now(),
	}
}

func TestTrackerDeduplicatesByFingerprint(t *testing.T) {
	tr := NewTracker(10)
	bar := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	pending := tr.Track([]*models.PatternCandidate{dtCandidate(102)}, bar)
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}

	// Same structure re-detected on the next scan of the same bar.
	pending = tr.Track([]*models.PatternCandidate{dtCandidate(102)}, bar)
	if len(pending) != 1 {
		t.Fatalf("pending after re-scan = %d, want 1", len(pending))
	}

	// A structurally different candidate is tracked separately.
	pending = tr.Track([]*models.PatternCandidate{dtCandidate(98)}, bar)
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
}

func TestTrackerExpiresAfterRetestWindow(t *testing.T) {
	tr := NewTracker(3)
	bar := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tr.Track([]*models.PatternCandidate{dtCandidate(102)}, bar)
	for i := 1; i <= 3; i++ {
		pending := tr.Track(nil, bar.Add(time.Duration(i)*time.Hour))
		if len(pending) != 1 {
			t.Fatalf("bar %d: pending = %d, want 1", i, len(pending))
		}
	}

	pending := tr.Track(nil, bar.Add(4*time.Hour))
	if len(pending) != 0 {
		t.Fatalf("pending after window = %d, want 0", len(pending))
	}
}

func TestTrackerSameBarDoesNotAge(t *testing.T) {
	tr := NewTracker(1)
	bar := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	tr.Track([]*models.PatternCandidate{dtCandidate(102)}, bar)
	for i := 0; i < 5; i++ {
		if pending := tr.Track(nil, bar); len(pending) != 1 {
			t.Fatalf("re-scan %d evicted the candidate", i)
		}
	}
}

func TestTrackerSuppressesConfirmedFingerprint(t *testing.T) {
	tr := NewTracker(10)
	bar := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	cand := dtCandidate(102)
	tr.Track([]*models.PatternCandidate{cand}, bar)
	tr.MarkConfirmed(cand)

	if !cand.Confirmed {
		t.Fatal("candidate not marked confirmed")
	}
	if tr.PendingCount() != 0 {
		t.Fatalf("pending = %d, want 0 after confirmation", tr.PendingCount())
	}

	// Re-detection of the same structure must not re-enter the table.
	pending := tr.Track([]*models.PatternCandidate{dtCandidate(102)}, bar.Add(time.Hour))
	if len(pending) != 0 {
		t.Fatalf("confirmed structure re-entered: pending = %d", len(pending))
	}
}
