package news

import (
	"testing"
	"time"

	"TradeCore/internal/domain/models"
)

func TestParseFeedFiltersCurrencyAndBadDates(t *testing.T) {
	feed := []feedEvent{
		{Title: "Non-Farm Payrolls", Country: "USD", Date: "2024-06-07T12:30:00Z", Impact: "High"},
		{Title: "ECB Rate Decision", Country: "EUR", Date: "2024-06-06T11:45:00Z", Impact: "High"},
		{Title: "Broken", Country: "USD", Date: "yesterday", Impact: "High"},
		{Title: "Crude Inventories", Country: "usd", Date: "2024-06-05T14:30:00Z", Impact: "Medium"},
	}

	events := parseFeed(feed, "USD")
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Title != "Non-Farm Payrolls" || events[0].Impact != models.ImpactHigh {
		t.Fatalf("first event = %+v", events[0])
	}
	if events[1].Impact != models.ImpactMedium {
		t.Fatalf("impact = %v, want MEDIUM", events[1].Impact)
	}
	want := time.Date(2024, 6, 7, 12, 30, 0, 0, time.UTC)
	if !events[0].Time.Equal(want) {
		t.Fatalf("time = %v, want %v", events[0].Time, want)
	}
}

func TestParseFeedImpactGrading(t *testing.T) {
	feed := []feedEvent{
		{Title: "A", Country: "USD", Date: "2024-06-07T12:30:00Z", Impact: "high"},
		{Title: "B", Country: "USD", Date: "2024-06-07T13:30:00Z", Impact: "Low"},
	}
	events := parseFeed(feed, "USD")
	if !events[0].IsHighImpact() {
		t.Fatal("lowercase high impact not recognized")
	}
	if events[1].IsHighImpact() {
		t.Fatal("low impact graded high")
	}
}
