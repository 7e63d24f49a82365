package relevance

import (
	"sort"
	"time"

	"github.com/i20tominaga/resident-app/internal/event"
)

// DefaultUpcomingDays is the default window for EventsInNextDays.
const DefaultUpcomingDays = 7

// OngoingEvents returns the events that are in progress and whose date range
// contains now (inclusive on both ends), sorted soonest-ending first.
// The result depends on the reference time the caller passes; "ongoing" is a
// live predicate, not a stored fact.
func OngoingEvents(events []event.ConstructionEvent, now time.Time) []event.ConstructionEvent {
	var out []event.ConstructionEvent
	for _, ev := range events {
		if ev.Status == event.StatusInProgress &&
			!ev.StartDate.After(now) && !ev.EndDate.Before(now) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EndDate.Before(out[j].EndDate)
	})
	return out
}

// UpcomingEvents returns the scheduled events starting after now, sorted
// ascending by start date.
func UpcomingEvents(events []event.ConstructionEvent, now time.Time) []event.ConstructionEvent {
	var out []event.ConstructionEvent
	for _, ev := range events {
		if ev.Status == event.StatusScheduled && ev.StartDate.After(now) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}

// EventsInNextDays returns the events whose start date falls in the
// inclusive window [now, now + days*24h], sorted ascending by start date.
// Status is not filtered: completed or cancelled events starting in the
// window still match.
func EventsInNextDays(events []event.ConstructionEvent, now time.Time, days int) []event.ConstructionEvent {
	cutoff := now.Add(time.Duration(days) * 24 * time.Hour)

	var out []event.ConstructionEvent
	for _, ev := range events {
		if !ev.StartDate.Before(now) && !ev.StartDate.After(cutoff) {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out
}
