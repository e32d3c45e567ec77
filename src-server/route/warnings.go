package route

import (
	"encoding/json"
	"net/http"

	"cityboard/src-server/apperr"
	"cityboard/src-server/warning"
)

func Warnings(muxer *http.ServeMux, client *warning.Client) {
	muxer.HandleFunc("GET /warnings/call", func(w http.ResponseWriter, r *http.Request) {
		warnings, err := client.Fetch(r.Context())
		if err != nil {
			// a bad regional key is a deployment problem, not a
			// client one
			if apperr.IsValidation(err) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(err.Error()))
				return
			}
			writeError(w, err)
			return
		}
		respBodyJson, err := json.Marshal(warnings)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})
}
