package calendar_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"cityboard/src-server/calendar"
)

func TestExpandDaily(t *testing.T) {
	event := calendar.Event{
		ID:         "42",
		Title:      "Wochenmarkt",
		StartTime:  "2025-06-01T10:00",
		EndTime:    "2025-06-03T10:00",
		Recurrence: "daily",
	}

	occurrences := event.Occurrences()
	if len(occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occurrences))
	}

	wantStarts := []string{"2025-06-01T10:00", "2025-06-02T10:00", "2025-06-03T10:00"}
	for i, want := range wantStarts {
		if occurrences[i].StartTime != want {
			t.Errorf("occurrence %d: start %q, want %q", i, occurrences[i].StartTime, want)
		}
	}
	if occurrences[0].ID != "42" {
		t.Errorf("zeroth occurrence must keep the event id, got %q", occurrences[0].ID)
	}
}

func TestExpandIdentity(t *testing.T) {
	for _, tc := range []struct {
		name  string
		event calendar.Event
	}{
		{"recurrence none", calendar.Event{ID: "1", StartTime: "2025-01-01T08:00", EndTime: "2025-12-31T08:00", Recurrence: "none"}},
		{"recurrence unset", calendar.Event{ID: "2", StartTime: "2025-01-01T08:00", EndTime: "2025-12-31T08:00"}},
		{"empty end time", calendar.Event{ID: "3", StartTime: "2025-01-01T08:00", Recurrence: "daily"}},
		{"unparsable end time", calendar.Event{ID: "4", StartTime: "2025-01-01T08:00", EndTime: "not-a-date", Recurrence: "daily"}},
		{"end before start", calendar.Event{ID: "5", StartTime: "2025-06-01T08:00", EndTime: "2025-01-01T08:00", Recurrence: "weekly"}},
		{"unparsable start time", calendar.Event{ID: "6", StartTime: "garbage", EndTime: "2025-12-31T08:00", Recurrence: "daily"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			occurrences := tc.event.Occurrences()
			if len(occurrences) != 1 {
				t.Fatalf("expected exactly one occurrence, got %d", len(occurrences))
			}
			if occurrences[0] != tc.event {
				t.Errorf("occurrence differs from input event: %+v", occurrences[0])
			}
		})
	}
}

func TestExpandBound(t *testing.T) {
	for _, tc := range []struct {
		recurrence string
		periodDays int
	}{
		{"daily", 1},
		{"weekly", 7},
	} {
		t.Run(tc.recurrence, func(t *testing.T) {
			event := calendar.Event{
				ID:         "7",
				StartTime:  "2025-03-01T09:30",
				EndTime:    "2025-04-30T09:30",
				Recurrence: tc.recurrence,
			}
			start, _ := calendar.ParseTime(event.StartTime)
			end, _ := calendar.ParseTime(event.EndTime)
			period := time.Duration(tc.periodDays) * 24 * time.Hour
			wantCount := int(end.Sub(start)/period) + 1

			occurrences := event.Occurrences()
			if len(occurrences) != wantCount {
				t.Errorf("got %d occurrences, want %d", len(occurrences), wantCount)
			}
			for _, o := range occurrences {
				at, err := calendar.ParseTime(o.StartTime)
				if err != nil {
					t.Fatalf("unparsable occurrence start %q", o.StartTime)
				}
				if at.After(end) {
					t.Errorf("occurrence %q past the end bound", o.StartTime)
				}
			}
		})
	}
}

// A day-of-month overflow normalizes forward: Jan 31 + 1 month lands on
// Mar 3 in 2025, and the next step lands past the bound.
func TestExpandMonthlyClamp(t *testing.T) {
	event := calendar.Event{
		ID:         "8",
		StartTime:  "2025-01-31T09:00",
		EndTime:    "2025-03-31T09:00",
		Recurrence: "monthly",
	}

	occurrences := event.Occurrences()
	wantStarts := []string{"2025-01-31T09:00", "2025-03-03T09:00"}
	if len(occurrences) != len(wantStarts) {
		t.Fatalf("expected %d occurrences, got %d: %+v", len(wantStarts), len(occurrences), occurrences)
	}
	for i, want := range wantStarts {
		if occurrences[i].StartTime != want {
			t.Errorf("occurrence %d: start %q, want %q", i, occurrences[i].StartTime, want)
		}
	}
}

func TestExpandYearly(t *testing.T) {
	event := calendar.Event{
		ID:         "9",
		StartTime:  "2023-10-03T12:00",
		EndTime:    "2025-10-03T12:00",
		Recurrence: "Jährlich",
	}
	occurrences := event.Occurrences()
	if len(occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(occurrences))
	}
	if occurrences[2].StartTime != "2025-10-03T12:00" {
		t.Errorf("last occurrence start %q", occurrences[2].StartTime)
	}
}

func TestOccurrenceIDResolvesToOwner(t *testing.T) {
	event := calendar.Event{
		ID:         "17",
		StartTime:  "2025-05-01T18:00",
		EndTime:    "2025-05-15T18:00",
		Recurrence: "weekly",
	}
	occurrences := event.Occurrences()
	if len(occurrences) < 2 {
		t.Fatal("expected generated occurrences")
	}
	for _, o := range occurrences[1:] {
		if !calendar.IsOccurrenceID(o.ID) {
			t.Errorf("id %q not recognized as generated", o.ID)
		}
		if got := calendar.OwnerID(o.ID); got != "17" {
			t.Errorf("OwnerID(%q) = %q, want 17", o.ID, got)
		}
		at, _ := calendar.ParseTime(o.StartTime)
		want := fmt.Sprintf("17-repeat-%d", at.UnixMilli())
		if o.ID != want {
			t.Errorf("id %q, want %q", o.ID, want)
		}
	}
	if calendar.IsOccurrenceID("17") {
		t.Error("plain id flagged as generated")
	}
}

func TestExpandRestartable(t *testing.T) {
	event := calendar.Event{
		ID:         "3",
		StartTime:  "2025-02-01T07:00",
		EndTime:    "2025-02-10T07:00",
		Recurrence: "daily",
	}
	first := event.Occurrences()
	second := event.Occurrences()
	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("occurrence %d differs between runs", i)
		}
	}

	// early stop must not corrupt a later full walk
	stopped := 0
	event.EachOccurrence(func(calendar.Occurrence) bool {
		stopped++
		return stopped < 2
	})
	if stopped != 2 {
		t.Errorf("early stop visited %d occurrences, want 2", stopped)
	}
	if got := len(event.Occurrences()); got != len(first) {
		t.Errorf("walk after early stop yields %d occurrences, want %d", got, len(first))
	}
}

func TestNormalizeRecurrence(t *testing.T) {
	for input, want := range map[string]string{
		"daily":       "daily",
		"Täglich":     "daily",
		"Wöchentlich": "weekly",
		"Monatlich":   "monthly",
		"Jährlich":    "yearly",
		"Keine":       "none",
		"":            "none",
		"fortnightly": "none",
		"  WEEKLY  ":  "weekly",
	} {
		if got := calendar.NormalizeRecurrence(input); got != want {
			t.Errorf("NormalizeRecurrence(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestToISO(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"2025-11-12T23:45", "2025-11-12T23:45:00Z"},
		{"2025-11-12T23:45:10", "2025-11-12T23:45:10Z"},
		{"2025-11-12T23:45:00Z", "2025-11-12T23:45:00Z"},
		{"2025-11-12", "2025-11-12T00:00:00Z"},
	} {
		got, err := calendar.ToISO(tc.in)
		if err != nil {
			t.Fatalf("ToISO(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ToISO(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if _, err := calendar.ToISO("next tuesday"); err == nil {
		t.Error("expected an error for an unparsable timestamp")
	} else if !strings.Contains(err.Error(), "format") {
		t.Errorf("unexpected error text: %v", err)
	}
}
