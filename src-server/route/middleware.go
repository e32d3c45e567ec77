package route

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"cityboard/src-server/apperr"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging tags every request with an id and logs method, path, status
// and duration once the handler returns.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(recorder, r)

		slog.Info("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start))
	})
}

// writeError maps the error taxonomy onto HTTP statuses: bad input is
// 400, a missing entity 404, a broken upstream 502, the rest 500.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err), apperr.IsFormat(err):
		w.WriteHeader(http.StatusBadRequest)
	case apperr.IsNotFound(err):
		w.WriteHeader(http.StatusNotFound)
	case apperr.IsTransport(err):
		w.WriteHeader(http.StatusBadGateway)
	default:
		slog.Error("unhandled route error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
	w.Write([]byte(err.Error()))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

func Healthz(muxer *http.ServeMux) {
	muxer.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}
