package middleware

import (
	"context"
	"net/http"
	"salonbook/pkg/logger"
	"salonbook/pkg/metrics"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func RequestIDFrom(ctx context.Context) string {
	return logger.RequestID(ctx)
}

// RequestLogging tags every request with an id (the caller's X-Request-ID when present) and
// logs its outcome. routeOf maps a request to a low-cardinality label for metrics; nil uses
// the raw path.
func RequestLogging(log *logger.Logger, m *metrics.Metrics, routeOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > 128 {
				requestID = uuid.NewString()
			}

			r = r.WithContext(logger.WithRequestID(r.Context(), requestID))
			w.Header().Set(RequestIDHeader, requestID)

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     200,
				written:        false,
			}

			reqLog := log.Ctx(r.Context())
			reqLog.Debug("HTTP request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			route := r.URL.Path
			if routeOf != nil {
				route = routeOf(r)
			}
			m.HTTPRequest(r.Method, route, wrapped.statusCode, duration)

			reqLog.Info("HTTP request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
			)
		})
	}
}
