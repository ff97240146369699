package models

import "time"

// ImpactLevel grades a calendar event.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "LOW"
	ImpactMedium ImpactLevel = "MEDIUM"
	ImpactHigh   ImpactLevel = "HIGH"
)

// NewsEvent is a scheduled economic-calendar entry.
type NewsEvent struct {
	Title    string      `json:"title"`
	Time     time.Time   `json:"time"`
	Impact   ImpactLevel `json:"impact"`
	Currency string      `json:"currency"`
	Forecast string      `json:"forecast,omitempty"`
	Previous string      `json:"previous,omitempty"`
	Actual   string      `json:"actual,omitempty"`
}

// IsHighImpact reports whether the event is graded HIGH.
func (e NewsEvent) IsHighImpact() bool { return e.Impact == ImpactHigh }

// Within reports whether the event time falls inside [at-window, at+window].
func (e NewsEvent) Within(at time.Time, window time.Duration) bool {
	d := e.Time.Sub(at)
	if d < 0 {
		d = -d
	}
	return d <= window
}
