package route

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"cityboard/src-server/apperr"
	"cityboard/src-server/model"
	"cityboard/src-server/utils"
)

// Markers wires the map marker CRUD surface.
func Markers(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /markers", func(w http.ResponseWriter, r *http.Request) {
		markerModels := make([]model.Marker, 0)
		startTimer := time.Now()
		if err := as.BunDB.
			NewSelect().
			Model(&markerModels).
			Order("id ASC").
			Scan(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get markers"))
			return
		}
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(markerModels)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("GET /markers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a marker id"))
			return
		}
		markerModel := new(model.Marker)
		if err := as.BunDB.
			NewSelect().
			Model(markerModel).
			Where("id = ?", id).
			Scan(r.Context()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, apperr.NotFound("marker", r.PathValue("id")))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get marker"))
			return
		}
		respBodyJson, err := json.Marshal(markerModel)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("POST /markers", func(w http.ResponseWriter, r *http.Request) {
		var markerModel model.Marker
		if err := json.NewDecoder(r.Body).Decode(&markerModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		markerModel.ID = 0

		startTimer := time.Now()
		if err := markerModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(markerModel)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusCreated, respBodyJson)
	})

	muxer.HandleFunc("PUT /markers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a marker id"))
			return
		}
		exists, err := as.BunDB.
			NewSelect().
			Model((*model.Marker)(nil)).
			Where("id = ?", id).
			Exists(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't check if marker exists"))
			return
		}
		if !exists {
			writeError(w, apperr.NotFound("marker", r.PathValue("id")))
			return
		}

		var markerModel model.Marker
		if err := json.NewDecoder(r.Body).Decode(&markerModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		markerModel.ID = id

		startTimer := time.Now()
		if err := markerModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		w.WriteHeader(http.StatusOK)
	})

	muxer.HandleFunc("DELETE /markers/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a marker id"))
			return
		}
		startTimer := time.Now()
		result, err := as.BunDB.
			NewDelete().
			Model((*model.Marker)(nil)).
			Where("id = ?", id).
			Exec(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete marker"))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		if affected, _ := result.RowsAffected(); affected == 0 {
			writeError(w, apperr.NotFound("marker", r.PathValue("id")))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
