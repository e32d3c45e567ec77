package utils

import (
	"fmt"
	"time"

	"cityboard/src-server/calendar"
)

// ParseLooseTime accepts the strict calendar formats first and falls
// back to natural language ("next friday 9am") via the when parser.
func (as *AppState) ParseLooseTime(text string) (time.Time, error) {
	if t, err := calendar.ParseTime(text); err == nil {
		return t, nil
	}

	result, err := as.When.Parse(text, time.Now().In(as.Config.GetLocation()))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseLooseTime: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("ParseLooseTime: can't parse %q", text)
	}
	return result.Time, nil
}
