package middleware

import (
	"mime"
	"net/http"
	"salonbook/pkg/logger"

	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
)

// ContentTypeValidation rejects write requests whose body is not JSON. Bodyless writes, such as
// a cancel without a reason, pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType := extractContentType(r.Header.Get("Content-Type"))

				if contentType != "application/json" {
					rejectInvalidContentType(w, log, r, contentType)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

func extractContentType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return mediaType
}

func rejectInvalidContentType(w http.ResponseWriter, log *logger.Logger, r *http.Request, contentType string) {
	log.Ctx(r.Context()).Warn("Invalid Content-Type header",
		"content_type", contentType,
		"path", r.URL.Path,
		"method", r.Method,
	)

	appErr := apperrors.UnsupportedMediaType("application/json")
	if err := httputil.WriteError(w, appErr); err != nil {
		log.Error("failed to write error response", "middleware", "ContentTypeValidation", "error", err)
	}
}

// MaxRequestSize caps request bodies; decoding past the limit fails and surfaces as a 400.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
