// Package availability decides whether a candidate time window conflicts
// with existing calendar commitments and proposes alternative slots when it
// does. Everything here is pure: the caller supplies the event set, and no
// I/O happens during a check.
package availability

import (
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the interval.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether two half-open intervals intersect. Intervals that
// share only a boundary instant do not overlap, so back-to-back events never
// conflict.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// BusyEvent is one existing calendar commitment. All-day entries carry their
// nominal dates in Start/End and are expanded to full local days before any
// comparison.
type BusyEvent struct {
	Title  string
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Span normalizes the event to a comparable interval. All-day events cover
// [local midnight, next local midnight) of the day(s) they name.
func (e BusyEvent) Span(loc *time.Location) Interval {
	if !e.AllDay {
		return Interval{Start: e.Start, End: e.End}
	}

	start := e.Start.In(loc)
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	end := e.End.In(loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	if !endDay.After(startDay) {
		endDay = startDay.AddDate(0, 0, 1)
	}
	return Interval{Start: startDay, End: endDay}
}

// Result is the verdict for a candidate interval. Suggested is empty unless
// conflicts exist.
type Result struct {
	Available bool
	Conflicts []BusyEvent
	Suggested []time.Time
}

// Check filters existing events down to those overlapping the candidate,
// preserving input order. When conflicts exist, alternative start times are
// searched on the candidate's local day using the full existing set, not
// just the conflicting subset. With no conflicts the suggestion search is
// skipped entirely.
func Check(candidate Interval, loc *time.Location, existing []BusyEvent) Result {
	if loc == nil {
		loc = time.UTC
	}

	conflicts := make([]BusyEvent, 0)
	for _, event := range existing {
		if Overlaps(event.Span(loc), candidate) {
			conflicts = append(conflicts, event)
		}
	}

	if len(conflicts) == 0 {
		return Result{Available: true, Conflicts: conflicts, Suggested: []time.Time{}}
	}

	day := candidate.Start.In(loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)

	return Result{
		Available: false,
		Conflicts: conflicts,
		Suggested: Suggest(candidate.Duration(), day, existing),
	}
}

// candidateHours are the local start hours probed for a free slot, in
// ascending order.
var candidateHours = []int{9, 11, 13, 15, 17}

const maxSuggestions = 3

// Suggest returns up to three conflict-free start times on the given local
// day. When every probed hour conflicts it returns exactly one fallback:
// 09:00 the next day. The fallback is not re-tested against the existing
// events; it is a hint, not a guarantee of availability.
func Suggest(duration time.Duration, day time.Time, existing []BusyEvent) []time.Time {
	loc := day.Location()
	suggestions := make([]time.Time, 0, maxSuggestions)

	for _, hour := range candidateHours {
		start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
		slot := Interval{Start: start, End: start.Add(duration)}
		if slotFree(slot, loc, existing) {
			suggestions = append(suggestions, start)
			if len(suggestions) == maxSuggestions {
				break
			}
		}
	}

	if len(suggestions) == 0 {
		next := day.AddDate(0, 0, 1)
		suggestions = append(suggestions, time.Date(next.Year(), next.Month(), next.Day(), 9, 0, 0, 0, loc))
	}
	return suggestions
}

func slotFree(slot Interval, loc *time.Location, existing []BusyEvent) bool {
	for _, event := range existing {
		if Overlaps(event.Span(loc), slot) {
			return false
		}
	}
	return true
}
