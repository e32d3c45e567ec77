package calendar

import (
	"fmt"
	"time"
)

// minuteLayout is the precision generated occurrence start times are
// rendered to, matching the legacy datetime-local encoding.
const minuteLayout = "2006-01-02T15:04"

// EachOccurrence walks the event's repetition series in order, calling
// yield for every occurrence until yield returns false or the series ends.
// The walk is restartable; no state survives between calls.
//
// The event itself is always the zeroth occurrence. Further occurrences
// are produced only for a canonical recurrence other than "none" with a
// parsable end bound that is not before the start; anything malformed
// degrades to "no recurrence" rather than failing.
//
// Month and year steps advance the cursor with time.AddDate, so a
// day-of-month overflow normalizes forward into the following month
// (Jan 31 + 1 month lands on Mar 3 in a non-leap year). The cursor is
// advanced iteratively, never recomputed from the origin.
func (e Event) EachOccurrence(yield func(Occurrence) bool) {
	if !yield(e) {
		return
	}

	rec := NormalizeRecurrence(e.Recurrence)
	if rec == RecurrenceNone || e.EndTime == "" {
		return
	}
	start, err := ParseTime(e.StartTime)
	if err != nil {
		return
	}
	end, err := ParseTime(e.EndTime)
	if err != nil || end.Before(start) {
		return
	}

	step := func(t time.Time) time.Time {
		switch rec {
		case RecurrenceDaily:
			return t.AddDate(0, 0, 1)
		case RecurrenceWeekly:
			return t.AddDate(0, 0, 7)
		case RecurrenceMonthly:
			return t.AddDate(0, 1, 0)
		default: // yearly
			return t.AddDate(1, 0, 0)
		}
	}

	for cursor := step(start); !cursor.After(end); cursor = step(cursor) {
		occurrence := e
		occurrence.ID = fmt.Sprintf("%s%s%d", e.ID, repeatMarker, cursor.UnixMilli())
		occurrence.StartTime = cursor.Format(minuteLayout)
		if !yield(occurrence) {
			return
		}
	}
}

// Occurrences materializes the full repetition series as a slice.
func (e Event) Occurrences() []Occurrence {
	occurrences := make([]Occurrence, 0, 1)
	e.EachOccurrence(func(o Occurrence) bool {
		occurrences = append(occurrences, o)
		return true
	})
	return occurrences
}

// ExpandAll expands every event in order, preserving the relative order of
// events and of each event's own series.
func ExpandAll(events []Event) []Occurrence {
	expanded := make([]Occurrence, 0, len(events))
	for _, e := range events {
		expanded = append(expanded, e.Occurrences()...)
	}
	return expanded
}
