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

// Graphs wires the chart data CRUD surface backing graph cards.
func Graphs(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /graphs", func(w http.ResponseWriter, r *http.Request) {
		graphModels := make([]model.Graph, 0)
		startTimer := time.Now()
		if err := as.BunDB.
			NewSelect().
			Model(&graphModels).
			Order("id ASC").
			Scan(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get graphs"))
			return
		}
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(graphModels)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("GET /graphs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a graph id"))
			return
		}
		graphModel := new(model.Graph)
		if err := as.BunDB.
			NewSelect().
			Model(graphModel).
			Where("id = ?", id).
			Scan(r.Context()); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, apperr.NotFound("graph", r.PathValue("id")))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get graph"))
			return
		}
		respBodyJson, err := json.Marshal(graphModel)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("POST /graphs", func(w http.ResponseWriter, r *http.Request) {
		var graphModel model.Graph
		if err := json.NewDecoder(r.Body).Decode(&graphModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		graphModel.ID = 0

		startTimer := time.Now()
		if err := graphModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(graphModel)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusCreated, respBodyJson)
	})

	muxer.HandleFunc("PUT /graphs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a graph id"))
			return
		}
		exists, err := as.BunDB.
			NewSelect().
			Model((*model.Graph)(nil)).
			Where("id = ?", id).
			Exists(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't check if graph exists"))
			return
		}
		if !exists {
			writeError(w, apperr.NotFound("graph", r.PathValue("id")))
			return
		}

		var graphModel model.Graph
		if err := json.NewDecoder(r.Body).Decode(&graphModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		graphModel.ID = id

		startTimer := time.Now()
		if err := graphModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		w.WriteHeader(http.StatusOK)
	})

	muxer.HandleFunc("DELETE /graphs/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a graph id"))
			return
		}
		startTimer := time.Now()
		result, err := as.BunDB.
			NewDelete().
			Model((*model.Graph)(nil)).
			Where("id = ?", id).
			Exec(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete graph"))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		if affected, _ := result.RowsAffected(); affected == 0 {
			writeError(w, apperr.NotFound("graph", r.PathValue("id")))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
