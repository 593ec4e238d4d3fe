package middleware

import (
	"context"
	"net/http"
	"salonbook/pkg/logger"
	"sync"
	"time"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
)

// timeoutWriter buffers headers so the handler goroutine never touches the real header map
// after the deadline has answered the request.
type timeoutWriter struct {
	w          http.ResponseWriter
	header     http.Header
	mu         sync.Mutex
	timedOut   bool
	written    bool
	statusCode int
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.header
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	tw.writeHeaderLocked(code)
}

func (tw *timeoutWriter) writeHeaderLocked(code int) {
	if tw.timedOut || tw.written {
		return
	}

	dst := tw.w.Header()
	for k, v := range tw.header {
		dst[k] = v
	}
	tw.statusCode = code
	tw.written = true
	tw.w.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}

	if !tw.written {
		tw.writeHeaderLocked(http.StatusOK)
	}

	return tw.w.Write(b)
}

// RequestTimeout bounds handler time. Handlers see the deadline through the request context,
// so lock waits and database calls give up with it.
func RequestTimeout(timeout time.Duration, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			r = r.WithContext(ctx)

			tw := &timeoutWriter{
				w:      w,
				header: make(http.Header),
			}

			done := make(chan struct{})
			panicked := make(chan any, 1)
			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r)
				close(done)
			}()

			select {
			case p := <-panicked:
				panic(p)
			case <-done:
				return
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				if tw.written {
					tw.timedOut = true
					return
				}
				tw.timedOut = true

				log.Ctx(r.Context()).Warn("Request timed out",
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)
				if err := httputil.WriteError(w, apperrors.Timeout("Request timeout")); err != nil {
					log.Error("failed to write error response", "middleware", "RequestTimeout", "error", err)
				}
			}
		})
	}
}
