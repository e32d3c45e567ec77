package calendar_test

import (
	"testing"
	"time"

	"cityboard/src-server/calendar"
)

func TestDaysInMonth(t *testing.T) {
	for _, tc := range []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.February, 28},
		{2024, time.February, 29}, // leap year
		{2025, time.June, 30},
		{2025, time.December, 31},
	} {
		cursor := time.Date(tc.year, tc.month, 15, 0, 0, 0, 0, time.UTC)
		if got := calendar.DaysInMonth(cursor); got != tc.want {
			t.Errorf("DaysInMonth(%d-%02d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestFirstDayOffset(t *testing.T) {
	// June 2025 starts on a Sunday, September 2025 on a Monday.
	sunday := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	if got := calendar.FirstDayOffset(sunday); got != 6 {
		t.Errorf("Sunday-start month: offset %d, want 6", got)
	}
	monday := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	if got := calendar.FirstDayOffset(monday); got != 0 {
		t.Errorf("Monday-start month: offset %d, want 0", got)
	}
}

func TestMonthNavigationReanchors(t *testing.T) {
	// From Jan 31 a naive +1 month would roll into March.
	cursor := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)
	next := calendar.NextMonth(cursor)
	if next.Month() != time.February || next.Day() != 1 {
		t.Errorf("NextMonth = %v, want Feb 1", next)
	}

	cursor = time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	prev := calendar.PreviousMonth(cursor)
	if prev.Month() != time.February || prev.Day() != 1 {
		t.Errorf("PreviousMonth = %v, want Feb 1", prev)
	}

	// January wraps to December of the previous year.
	cursor = time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	prev = calendar.PreviousMonth(cursor)
	if prev.Year() != 2024 || prev.Month() != time.December {
		t.Errorf("PreviousMonth across year = %v", prev)
	}
}

func TestIsToday(t *testing.T) {
	now := time.Date(2025, time.June, 10, 23, 59, 0, 0, time.UTC)
	cursor := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !calendar.IsToday(cursor, 10, now) {
		t.Error("June 10 should be today")
	}
	if calendar.IsToday(cursor, 11, now) {
		t.Error("June 11 should not be today")
	}
	otherMonth := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)
	if calendar.IsToday(otherMonth, 10, now) {
		t.Error("May 10 should not be today")
	}
}

func TestCorruptCursorFallsBack(t *testing.T) {
	var zero time.Time
	if got := calendar.DaysInMonth(zero); got < 28 || got > 31 {
		t.Errorf("DaysInMonth(zero) = %d", got)
	}
	if got := calendar.FirstDayOffset(zero); got < 0 || got > 6 {
		t.Errorf("FirstDayOffset(zero) = %d", got)
	}
	if calendar.NextMonth(zero).IsZero() {
		t.Error("NextMonth(zero) must fall back to now")
	}
	if calendar.DateKey(zero, 1) == "" {
		t.Error("DateKey(zero) must fall back to now")
	}
}
