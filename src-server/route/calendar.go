package route

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cityboard/src-server/apperr"
	"cityboard/src-server/calendar"
	"cityboard/src-server/utils"
)

// parseCursor reads the month cursor query param; a blank one means
// the current month.
func parseCursor(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return time.Time{}, nil
	}
	cursor, err := calendar.ParseTime(raw)
	if err != nil {
		return time.Time{}, err
	}
	return cursor, nil
}

// Calendar serves the month grid the dashboard renders: per-day
// occurrence counts with Monday-based layout, plus day drill-down.
func Calendar(muxer *http.ServeMux, as *utils.AppState) {
	type OneDayRespBody struct {
		Day          int    `json:"day"`
		Date         string `json:"date"`
		IsToday      bool   `json:"is_today"`
		Appointments int    `json:"appointments"`
	}

	type MonthRespBody struct {
		Cursor         string           `json:"cursor"`
		DaysInMonth    int              `json:"days_in_month"`
		FirstDayOffset int              `json:"first_day_offset"`
		Previous       string           `json:"previous"`
		Next           string           `json:"next"`
		Days           []OneDayRespBody `json:"days"`
	}

	muxer.HandleFunc("GET /calendar/month", func(w http.ResponseWriter, r *http.Request) {
		cursor, err := parseCursor(r)
		if err != nil {
			writeError(w, err)
			return
		}

		now := time.Now().In(as.Config.GetLocation())
		respBody := MonthRespBody{
			Cursor:         calendar.DateKey(cursor, 1),
			DaysInMonth:    calendar.DaysInMonth(cursor),
			FirstDayOffset: calendar.FirstDayOffset(cursor),
			Previous:       calendar.DateKey(calendar.PreviousMonth(cursor), 1),
			Next:           calendar.DateKey(calendar.NextMonth(cursor), 1),
		}

		startTimer := time.Now()
		for day := 1; day <= respBody.DaysInMonth; day++ {
			respBody.Days = append(respBody.Days, OneDayRespBody{
				Day:          day,
				Date:         calendar.DateKey(cursor, day),
				IsToday:      calendar.IsToday(cursor, day, now),
				Appointments: len(as.Events.ForDay(cursor, day)),
			})
		}
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(respBody)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("GET /calendar/day", func(w http.ResponseWriter, r *http.Request) {
		cursor, err := parseCursor(r)
		if err != nil {
			writeError(w, err)
			return
		}
		day, err := strconv.Atoi(r.URL.Query().Get("day"))
		if err != nil || day < 1 || day > calendar.DaysInMonth(cursor) {
			writeError(w, apperr.Validation("day", "must be a day of the cursor month"))
			return
		}

		startTimer := time.Now()
		occurrences := as.Events.ForDay(cursor, day)
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(occurrences)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})
}
