package calendar

import (
	"time"

	"cityboard/src-server/apperr"
)

// timeLayouts are the accepted timestamp encodings, most specific first.
// The 16-character "datetime-local" form is the legacy client format.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses a stored timestamp string. Strings without an explicit
// offset are interpreted as UTC so that expansion and sorting stay
// deterministic regardless of the host timezone.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Format(s, "unparsable timestamp")
}

// ToISO converts any accepted timestamp form to ISO 8601 UTC with a
// trailing Z, padding missing seconds with ":00". This is the only form
// the persistence layer stores.
func ToISO(s string) (string, error) {
	t, err := ParseTime(s)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(time.RFC3339), nil
}
