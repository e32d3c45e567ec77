package route

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"cityboard/src-server/apperr"
	"cityboard/src-server/utils"
)

// Categorys wires the category CRUD surface. Deleting a category moves
// its appointments to the fallback category instead of dropping them.
func Categorys(muxer *http.ServeMux, as *utils.AppState) {
	type OneCategoryRespBody struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Color string `json:"color"`
	}

	muxer.HandleFunc("GET /categorys", func(w http.ResponseWriter, r *http.Request) {
		respBody := make([]OneCategoryRespBody, 0)
		for _, category := range as.Categories.List() {
			respBody = append(respBody, OneCategoryRespBody{
				ID:    category.ID,
				Title: category.Title,
				Color: category.Color,
			})
		}
		respBodyJson, err := json.Marshal(respBody)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})

	type CreateCategoryReqBody struct {
		Title string `json:"title"`
		Color string `json:"color"`
	}

	muxer.HandleFunc("POST /categorys", func(w http.ResponseWriter, r *http.Request) {
		var reqBody CreateCategoryReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Title == "" {
			writeError(w, apperr.Validation("title", "cannot be blank"))
			return
		}

		startTimer := time.Now()
		category, err := as.Categories.Create(r.Context(), utils.CleanupString(reqBody.Title), reqBody.Color)
		if err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(OneCategoryRespBody{
			ID:    category.ID,
			Title: category.Title,
			Color: category.Color,
		})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusCreated, respBodyJson)
	})

	muxer.HandleFunc("PUT /categorys/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a category id"))
			return
		}
		var reqBody CreateCategoryReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Title == "" {
			writeError(w, apperr.Validation("title", "cannot be blank"))
			return
		}

		startTimer := time.Now()
		if err := as.Categories.Update(r.Context(), id, utils.CleanupString(reqBody.Title), reqBody.Color); err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		// category titles are denormalized into the event cache
		if err := as.Events.Load(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	muxer.HandleFunc("DELETE /categorys/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeError(w, apperr.Format(r.PathValue("id"), "not a category id"))
			return
		}

		startTimer := time.Now()
		if err := as.Categories.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		// appointments got reassigned to the fallback category
		if err := as.Events.Load(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
