package route

import (
	"encoding/json"
	"net/http"

	"cityboard/src-server/weather"
)

// Weather serves the cached snapshot; 503 until the first successful
// refresh has landed.
func Weather(muxer *http.ServeMux, svc *weather.Service) {
	muxer.HandleFunc("GET /weather/call", func(w http.ResponseWriter, r *http.Request) {
		payload, ok := svc.Snapshot()
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("No weather data yet"))
			return
		}
		respBodyJson, err := json.Marshal(payload)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		writeJSON(w, http.StatusOK, respBodyJson)
	})
}
