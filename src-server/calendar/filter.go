package calendar

import (
	"sort"
	"strings"
	"time"
)

// Filter narrows and orders the event collection. Every field is
// conjunctive; empty fields are no-ops. SelectedDate (a YYYY-MM-DD day
// picked on the calendar grid) composes with the remaining filters rather
// than suppressing them.
type Filter struct {
	SelectedDate string `json:"selectedDate"`
	Date         string `json:"date"`
	Category     string `json:"category"`
	Location     string `json:"location"`
	SearchText   string `json:"searchText"`
}

// Active reports whether any filter field is set.
func (f Filter) Active() bool {
	return f.SelectedDate != "" ||
		f.Date != "" ||
		f.Category != "" ||
		strings.TrimSpace(f.Location) != "" ||
		strings.TrimSpace(f.SearchText) != ""
}

func (f Filter) dateActive() bool {
	return f.SelectedDate != "" || f.Date != ""
}

// Apply runs the filter pipeline over events and returns a new ordered
// slice; the input is never mutated. Events are expanded to occurrences
// only when a date-based filter is active. Date values are matched as
// plain string prefixes against the stored start time, so a value that is
// not a parsable date still filters without failing.
func Apply(events []Event, f Filter) []Occurrence {
	candidates := events
	if f.dateActive() {
		candidates = ExpandAll(events)
	}

	filtered := make([]Occurrence, 0, len(candidates))
	filtered = append(filtered, candidates...)

	if f.SelectedDate != "" {
		filtered = keep(filtered, func(e Event) bool {
			return strings.HasPrefix(e.StartTime, f.SelectedDate)
		})
	}
	if search := strings.ToLower(strings.TrimSpace(f.SearchText)); search != "" {
		filtered = keep(filtered, func(e Event) bool {
			return strings.Contains(strings.ToLower(e.Title), search) ||
				strings.Contains(strings.ToLower(e.Category), search) ||
				strings.Contains(strings.ToLower(e.Location), search)
		})
	}
	if f.Date != "" {
		filtered = keep(filtered, func(e Event) bool {
			return strings.HasPrefix(e.StartTime, f.Date)
		})
	}
	if f.Category != "" {
		filtered = keep(filtered, func(e Event) bool {
			return e.Category == f.Category
		})
	}
	if location := strings.ToLower(strings.TrimSpace(f.Location)); location != "" {
		filtered = keep(filtered, func(e Event) bool {
			return strings.Contains(strings.ToLower(e.Location), location)
		})
	}

	SortByStart(filtered)
	return filtered
}

func keep(events []Event, pred func(Event) bool) []Event {
	kept := events[:0]
	for _, e := range events {
		if pred(e) {
			kept = append(kept, e)
		}
	}
	return kept
}

// SortByStart orders events ascending by parsed start time. Unparsable
// start times sort to the front; ties keep their original relative order.
func SortByStart(events []Event) {
	type keyed struct {
		event Event
		start time.Time
	}
	pairs := make([]keyed, len(events))
	for i, e := range events {
		start, _ := ParseTime(e.StartTime)
		pairs[i] = keyed{event: e, start: start}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].start.Before(pairs[j].start)
	})
	for i, p := range pairs {
		events[i] = p.event
	}
}
