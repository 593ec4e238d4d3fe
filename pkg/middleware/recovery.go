package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"salonbook/pkg/logger"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					log.Ctx(r.Context()).Error("Panic recovered",
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					appErr := apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", rec))
					if err := httputil.WriteError(w, appErr); err != nil {
						log.Error("failed to write error response", "middleware", "Recovery", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
