package api

import (
	"sync"
	"time"
)

// The board endpoints want timestamps shaped like the prefix of JavaScript's
// Date.toString(), e.g. "Sun Jun 2 2024 20:00:00" (day not zero-padded).
const searchTimeLayout = "Mon Jan 2 2006 15:04:05"

var rome = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		// main imports time/tzdata, so this only triggers when the zone
		// name itself is unknown to the bundled database.
		return time.UTC
	}
	return loc
})

// Rome returns the Europe/Rome location. All upstream timestamps are
// Rome-local: departure dates in particular are encoded as Rome midnight, so
// projecting an instant onto any other calendar can shift the date.
func Rome() *time.Location {
	return rome()
}

// FormatSearchTime renders t the way the partenze/arrivi endpoints expect.
func FormatSearchTime(t time.Time) string {
	return t.In(Rome()).Format(searchTimeLayout)
}

// ParseSearchTime accepts either a full timestamp or a bare clock time. A
// bare time is anchored to today's date in Rome, mirroring how the service
// itself interprets boards.
func ParseSearchTime(s string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, Rome()); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("15:04", s, Rome())
	if err != nil {
		return time.Time{}, err
	}
	today := now.In(Rome())
	return time.Date(today.Year(), today.Month(), today.Day(), t.Hour(), t.Minute(), 0, 0, Rome()), nil
}

// DateOf projects an epoch-milliseconds instant onto the Rome calendar.
func DateOf(ms int64) time.Time {
	return time.UnixMilli(ms).In(Rome())
}
