package calendar

import "time"

// dayKeyLayout is the fixed date-key format used for calendar-day
// comparisons and the SelectedDate filter.
const dayKeyLayout = "2006-01-02"

// cursorOrNow guards the month cursor: a zero (corrupted) cursor falls
// back to the current time instead of propagating invalid dates.
func cursorOrNow(cursor time.Time) time.Time {
	if cursor.IsZero() {
		return time.Now()
	}
	return cursor
}

// DaysInMonth returns the number of days in the cursor's month. Day 0 of
// the following month is its last day, so leap years come out right.
func DaysInMonth(cursor time.Time) int {
	cursor = cursorOrNow(cursor)
	return time.Date(cursor.Year(), cursor.Month()+1, 0, 0, 0, 0, 0, cursor.Location()).Day()
}

// FirstDayOffset returns the weekday column of the 1st of the cursor's
// month, re-based so Monday is 0 and Sunday is 6.
func FirstDayOffset(cursor time.Time) int {
	cursor = cursorOrNow(cursor)
	first := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, cursor.Location())
	return (int(first.Weekday()) + 6) % 7
}

// PreviousMonth moves the cursor back one month, re-anchored to day 1 so
// month-length rollover cannot skip a month.
func PreviousMonth(cursor time.Time) time.Time {
	cursor = cursorOrNow(cursor)
	return time.Date(cursor.Year(), cursor.Month()-1, 1, 0, 0, 0, 0, cursor.Location())
}

// NextMonth moves the cursor forward one month, re-anchored to day 1.
func NextMonth(cursor time.Time) time.Time {
	cursor = cursorOrNow(cursor)
	return time.Date(cursor.Year(), cursor.Month()+1, 1, 0, 0, 0, 0, cursor.Location())
}

// DateKey renders day n of the cursor's month in the fixed date-key
// format.
func DateKey(cursor time.Time, day int) string {
	cursor = cursorOrNow(cursor)
	return time.Date(cursor.Year(), cursor.Month(), day, 0, 0, 0, 0, cursor.Location()).Format(dayKeyLayout)
}

// IsToday reports whether day n of the cursor's month is the calendar day
// of now. Only the date part is compared, never the time of day.
func IsToday(cursor time.Time, day int, now time.Time) bool {
	return DateKey(cursor, day) == now.Format(dayKeyLayout)
}
