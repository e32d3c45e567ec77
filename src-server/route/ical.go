package route

import (
	"fmt"
	"net/http"

	ics "github.com/arran4/golang-ical"

	"cityboard/src-server/calendar"
	"cityboard/src-server/utils"
)

const icalUntilLayout = "20060102T150405Z"

// rrule renders the repeat setting as an RFC 5545 RRULE bounded by the
// appointment's end time.
func rrule(e calendar.Event) (string, bool) {
	freq := map[string]string{
		calendar.RecurrenceDaily:   "DAILY",
		calendar.RecurrenceWeekly:  "WEEKLY",
		calendar.RecurrenceMonthly: "MONTHLY",
		calendar.RecurrenceYearly:  "YEARLY",
	}[e.Recurrence]
	if freq == "" {
		return "", false
	}
	end, err := calendar.ParseTime(e.EndTime)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("FREQ=%s;UNTIL=%s", freq, end.UTC().Format(icalUntilLayout)), true
}

// Ical exports every appointment as an iCalendar feed so the city's
// schedule can be subscribed to from any calendar client.
func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /appointments/export.ics", func(w http.ResponseWriter, r *http.Request) {
		cal := ics.NewCalendar()
		cal.SetMethod(ics.MethodPublish)
		cal.SetProductId("-//cityboard//appointments//DE")

		for _, event := range as.Events.List() {
			start, err := calendar.ParseTime(event.StartTime)
			if err != nil {
				continue
			}

			icalEvent := cal.AddEvent(event.ID + "@cityboard")
			icalEvent.SetSummary(event.Title)
			icalEvent.SetStartAt(start)
			if end, err := calendar.ParseTime(event.EndTime); err == nil {
				icalEvent.SetEndAt(end)
			}
			if event.Location != "" {
				icalEvent.SetLocation(event.Location)
			}
			if event.Description != "" {
				icalEvent.SetDescription(event.Description)
			}
			if event.Category != "" {
				icalEvent.SetProperty(ics.ComponentPropertyCategories, event.Category)
			}
			if rule, ok := rrule(event); ok {
				icalEvent.SetProperty(ics.ComponentProperty(ics.PropertyRrule), rule)
			}
		}

		w.Header().Set("Content-Type", "text/calendar")
		w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cal.Serialize()))
	})
}
