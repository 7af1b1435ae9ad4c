package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/sessionkit/logger"
)

// RequestLogger logs every request with method, path, status, response
// size and duration. Health checks are not logged.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newRecordingWriter(w)
			next.ServeHTTP(rw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"bytes", rw.bytes,
				logger.FieldDuration, duration.Milliseconds(),
			)
			logByStatus(log.WithContext(r.Context()), fields, rw.status)
		})
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
