package handle

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cybersafe/api/internal/logging"
)

const corsAllowHeaders = "authorization, x-client-info, apikey, content-type"

// Routes mounts the API on a chi router.
func (h *Handle) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(h.limitBody)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/v1/scan", h.Scan)
	r.Post("/v1/transcribe", h.Transcribe)
	r.Post("/v1/generate-lesson", h.GenerateLesson)
	return r
}

// cors opens every route to browsers; preflights end here with an empty 200.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handle) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handle) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Info("request",
			logging.F("requestId", middleware.GetReqID(r.Context())),
			logging.F("method", r.Method),
			logging.F("path", r.URL.Path),
			logging.F("status", ww.Status()),
			logging.F("bytes", ww.BytesWritten()),
			logging.F("duration_ms", time.Since(start).Milliseconds()))
	})
}
