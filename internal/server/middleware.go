package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphedit/pkg/observability"
)

// requestLogger logs each request and reports it to the HTTP hooks.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routeLabel(r)
			elapsed := time.Since(start)
			observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed.Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			}
			switch {
			case status >= 500:
				logger.Error("request", fields...)
			case status >= 400:
				logger.Warn("request", fields...)
			default:
				logger.Debug("request", fields...)
			}
		})
	}
}
