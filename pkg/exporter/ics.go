package exporter

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

// GenerateICS writes a train run as a single calendar event spanning the
// scheduled departure from the first stop to the scheduled arrival at the
// last, with the full stop list in the description.
func GenerateICS(status *api.TrainStatus, w io.Writer) error {
	if len(status.Fermate) == 0 {
		return fmt.Errorf("train %d has no stops to export", status.NumeroTreno)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	loc := api.Rome()

	first := status.Fermate[0]
	last := status.Fermate[len(status.Fermate)-1]

	start := stopTime(first.PartenzaTeorica, first.Programmata, loc)
	end := stopTime(last.ArrivoTeorico, last.Programmata, loc)
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("train %d has no usable schedule times", status.NumeroTreno)
	}

	label := status.CompNumeroTreno
	if label == "" {
		label = fmt.Sprintf("%d", status.NumeroTreno)
	}

	event := cal.AddEvent(fmt.Sprintf("%s-%d", start.Format("20060102T150405"), status.NumeroTreno))
	event.SetCreatedTime(time.Now())
	event.SetDtStampTime(time.Now())
	event.SetModifiedAt(time.Now())
	event.SetStartAt(start)
	event.SetEndAt(end)
	event.SetSummary(fmt.Sprintf("Train %s: %s -> %s", label, status.Origine, status.Destinazione))
	event.SetLocation(first.Stazione)

	description := "Stops:\n"
	for i, stop := range status.Fermate {
		t := stopTime(stop.PartenzaTeorica, stop.Programmata, loc)
		if t.IsZero() {
			t = stopTime(stop.ArrivoTeorico, 0, loc)
		}
		when := "--:--"
		if !t.IsZero() {
			when = t.Format("15:04")
		}
		description += fmt.Sprintf("%d. [%s] %s\n", i+1, when, stop.Stazione)
	}
	event.SetDescription(description)

	return cal.SerializeTo(w)
}

// stopTime picks the first available epoch-milliseconds value and projects it
// onto the Rome calendar; zero millis mean the time is unknown.
func stopTime(primary, fallback int64, loc *time.Location) time.Time {
	ms := primary
	if ms == 0 {
		ms = fallback
	}
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).In(loc)
}
