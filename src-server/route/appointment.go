package route

import (
	"encoding/json"
	"net/http"
	"time"

	"cityboard/src-server/calendar"
	"cityboard/src-server/utils"
)

// looseTime keeps strict inputs untouched and rewrites natural
// language ("tomorrow 9am") into an ISO timestamp. Anything neither
// format understands passes through for the store to reject.
func looseTime(as *utils.AppState, value string) string {
	if value == "" {
		return value
	}
	if _, err := calendar.ParseTime(value); err == nil {
		return value
	}
	if t, err := as.ParseLooseTime(value); err == nil {
		return t.UTC().Format(time.RFC3339)
	}
	return value
}

func Appointments(muxer *http.ServeMux, as *utils.AppState) {
	// list appointments, optionally filtered; a date-bound filter
	// expands recurring appointments into their occurrences
	muxer.HandleFunc("GET /appointments", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		filter := calendar.Filter{
			SelectedDate: query.Get("selected_date"),
			Date:         query.Get("date"),
			Category:     query.Get("category"),
			Location:     query.Get("location"),
			SearchText:   query.Get("search_text"),
		}

		startTimer := time.Now()
		events := as.Events.Filtered(filter)
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(events)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	// occurrence ids resolve to the appointment they came from
	muxer.HandleFunc("GET /appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		event, ok := as.Events.ResolveOccurrence(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Appointment not found"))
			return
		}
		respBodyJson, err := json.Marshal(event)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("POST /appointments", func(w http.ResponseWriter, r *http.Request) {
		var reqBody calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		reqBody.Title = utils.CleanupString(reqBody.Title)
		reqBody.StartTime = looseTime(as, reqBody.StartTime)
		reqBody.EndTime = looseTime(as, reqBody.EndTime)

		startTimer := time.Now()
		event, err := as.Events.Create(r.Context(), reqBody)
		if err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(event)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusCreated, respBodyJson)
	})

	muxer.HandleFunc("PUT /appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody calendar.Event
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		reqBody.Title = utils.CleanupString(reqBody.Title)
		reqBody.StartTime = looseTime(as, reqBody.StartTime)
		reqBody.EndTime = looseTime(as, reqBody.EndTime)

		startTimer := time.Now()
		event, err := as.Events.Update(r.Context(), r.PathValue("id"), reqBody)
		if err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(event)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("DELETE /appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		if err := as.Events.Delete(r.Context(), r.PathValue("id")); err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		w.WriteHeader(http.StatusOK)
	})
}
