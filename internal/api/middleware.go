package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"stockscore/pkg/logger"
)

// requestLogger logs every request once it completes
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	log = log.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.Warnw("HTTP request failed", fields...)
				return
			}
			log.Debugw("HTTP request", fields...)
		})
	}
}
