package route

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cityboard/src-server/apperr"
	"cityboard/src-server/model"
	"cityboard/src-server/utils"
)

// Cards wires the dashboard tile layout. Tiles come back ordered by
// their grid index.
func Cards(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /cards", func(w http.ResponseWriter, r *http.Request) {
		cardModels := make([]model.Card, 0)
		startTimer := time.Now()
		if err := as.BunDB.
			NewSelect().
			Model(&cardModels).
			Order("idx ASC").
			Scan(r.Context()); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't get cards"))
			return
		}
		as.RecordDatabaseRead(time.Since(startTimer))

		respBodyJson, err := json.Marshal(cardModels)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	muxer.HandleFunc("POST /cards", func(w http.ResponseWriter, r *http.Request) {
		var cardModel model.Card
		if err := json.NewDecoder(r.Body).Decode(&cardModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		cardModel.ID = 0

		startTimer := time.Now()
		if err := cardModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(cardModel)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusCreated, respBodyJson)
	})

	muxer.HandleFunc("PUT /cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a card id"))
			return
		}
		exists, err := as.BunDB.
			NewSelect().
			Model((*model.Card)(nil)).
			Where("id = ?", id).
			Exists(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't check if card exists"))
			return
		}
		if !exists {
			writeError(w, apperr.NotFound("card", r.PathValue("id")))
			return
		}

		var cardModel model.Card
		if err := json.NewDecoder(r.Body).Decode(&cardModel); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		cardModel.ID = id

		startTimer := time.Now()
		if err := cardModel.Upsert(r.Context(), as.BunDB); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		w.WriteHeader(http.StatusOK)
	})

	muxer.HandleFunc("DELETE /cards/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a card id"))
			return
		}
		startTimer := time.Now()
		result, err := as.BunDB.
			NewDelete().
			Model((*model.Card)(nil)).
			Where("id = ?", id).
			Exec(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't delete card"))
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))
		if affected, _ := result.RowsAffected(); affected == 0 {
			writeError(w, apperr.NotFound("card", r.PathValue("id")))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
