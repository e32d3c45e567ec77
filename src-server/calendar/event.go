package calendar

import (
	"strings"
)

// Event is one calendar entry. StartTime and EndTime are kept in their
// sortable string encoding; see ParseTime for the accepted forms.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Category    string `json:"category"`
	Recurrence  string `json:"recurrence"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Occurrence is an Event projected onto one instance of its repetition
// series. It is derived at read time and never persisted; its ID carries
// the owning event's ID (see OwnerID).
type Occurrence = Event

const (
	RecurrenceNone    = "none"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// recurrenceSynonyms maps the canonical English tokens and their German
// counterparts onto the canonical set.
var recurrenceSynonyms = map[string]string{
	"none":        RecurrenceNone,
	"daily":       RecurrenceDaily,
	"weekly":      RecurrenceWeekly,
	"monthly":     RecurrenceMonthly,
	"yearly":      RecurrenceYearly,
	"keine":       RecurrenceNone,
	"täglich":     RecurrenceDaily,
	"wöchentlich": RecurrenceWeekly,
	"monatlich":   RecurrenceMonthly,
	"jährlich":    RecurrenceYearly,
}

// NormalizeRecurrence maps an external recurrence label onto the canonical
// vocabulary. Unrecognized values normalize to "none".
func NormalizeRecurrence(s string) string {
	if canonical, ok := recurrenceSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return RecurrenceNone
}

const repeatMarker = "-repeat-"

// OwnerID resolves a (possibly generated) occurrence ID back to the ID of
// the owning event. Plain event IDs pass through unchanged.
func OwnerID(id string) string {
	owner, _, _ := strings.Cut(id, repeatMarker)
	return owner
}

// IsOccurrenceID reports whether id was synthesized by the recurrence
// expander rather than assigned by the persistence layer.
func IsOccurrenceID(id string) bool {
	return strings.Contains(id, repeatMarker)
}
