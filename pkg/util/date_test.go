package util

import (
	"strconv"
	"testing"
	"time"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.UTC().Format(time.RFC3339) != s {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	if !ok {
		t.Fatalf("expected ok")
	}
	if got.Unix() != ts {
		t.Fatalf("unexpected unix %v", got.Unix())
	}
}

func TestDayKey(t *testing.T) {
	late := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)
	early := time.Date(2025, 3, 14, 0, 0, 1, 0, time.UTC)
	if !DayKey(late).Equal(DayKey(early)) {
		t.Fatalf("expected same day key")
	}
	next := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	if DayKey(late).Equal(DayKey(next)) {
		t.Fatalf("expected different day key across midnight")
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
	c := time.Date(2025, 6, 2, 0, 0, 1, 0, time.UTC)
	if !SameDay(a, b) {
		t.Fatalf("expected same day")
	}
	if SameDay(b, c) {
		t.Fatalf("expected day change")
	}
}

func TestAlignToTimeframe(t *testing.T) {
	at := time.Date(2025, 6, 1, 8, 47, 12, 0, time.UTC)
	got := AlignToTimeframe(at, time.Hour)
	want := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
