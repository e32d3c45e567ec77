package route

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"cityboard/src-server/importer"
	"cityboard/src-server/utils"
)

// Import accepts a JSON batch of appointments, one array or a single
// object. Bad records are skipped, the summary reports both sides.
func Import(muxer *http.ServeMux, as *utils.AppState) {
	imp := importer.New(as.Events, as.Categories)

	muxer.HandleFunc("POST /import/appointments", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Can't read request body"))
			return
		}

		startTimer := time.Now()
		summary, err := imp.ImportJSON(r.Context(), data)
		if err != nil {
			writeError(w, err)
			return
		}
		as.RecordDatabaseWrite(time.Since(startTimer))

		respBodyJson, err := json.Marshal(summary)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})
}
