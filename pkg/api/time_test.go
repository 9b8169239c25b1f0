package api

import (
	"testing"
	"time"
)

func TestFormatSearchTime(t *testing.T) {
	when := time.Date(2024, time.June, 2, 20, 0, 0, 0, Rome())
	got := FormatSearchTime(when)
	if got != "Sun Jun 2 2024 20:00:00" {
		t.Errorf("unexpected search time format: %q", got)
	}
}

func TestParseSearchTimeFullTimestamp(t *testing.T) {
	got, err := ParseSearchTime("2024-06-02T20:00:00", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, time.June, 2, 20, 0, 0, 0, Rome())
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseSearchTimeBareClock(t *testing.T) {
	now := time.Date(2024, time.June, 2, 9, 30, 0, 0, Rome())
	got, err := ParseSearchTime("20:15", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, time.June, 2, 20, 15, 0, 0, Rome())
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseSearchTimeRejectsGarbage(t *testing.T) {
	if _, err := ParseSearchTime("tomorrow", time.Now()); err == nil {
		t.Errorf("expected an error for an unparseable input")
	}
}

func TestDateOfProjectsOntoRomeCalendar(t *testing.T) {
	// Rome midnight of 2024-06-02 is 22:00 UTC of the previous day;
	// a naive UTC projection would land on June 1st.
	ms := time.Date(2024, time.June, 2, 0, 0, 0, 0, Rome()).UnixMilli()
	got := DateOf(ms)
	if got.Format("2006-01-02") != "2024-06-02" {
		t.Errorf("expected the Rome calendar date 2024-06-02, got %s", got.Format("2006-01-02"))
	}
}

func TestRegionCodesAreSortedAndComplete(t *testing.T) {
	codes := RegionCodes()
	if len(codes) != MaxRegion+1 {
		t.Fatalf("expected %d region codes, got %d", MaxRegion+1, len(codes))
	}
	for i, code := range codes {
		if code != i {
			t.Errorf("expected code %d at position %d, got %d", i, i, code)
		}
	}
}
