package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// sensitiveParams are query parameters that must never reach the logs.
var sensitiveParams = []string{"token", "secret", "key", "password"}

// sanitizeQuery redacts sensitive query parameter values.
func sanitizeQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}
	clean := url.Values{}
	for name, vals := range values {
		redact := false
		lower := strings.ToLower(name)
		for _, s := range sensitiveParams {
			if strings.Contains(lower, s) {
				redact = true
				break
			}
		}
		for _, v := range vals {
			if redact {
				clean.Add(name, "REDACTED")
			} else {
				clean.Add(name, v)
			}
		}
	}
	return clean.Encode()
}

// shouldSkipLogging filters out high-frequency infrastructure endpoints.
func shouldSkipLogging(path string) bool {
	return path == "/health" ||
		path == "/metrics" ||
		strings.HasPrefix(path, "/storage/")
}

// Logging logs each request with method, path, status and duration.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipLogging(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", getClientIP(r),
			}
			if q := sanitizeQuery(r.URL.Query()); q != "" {
				attrs = append(attrs, "query", q)
			}

			switch {
			case rw.statusCode >= 500:
				logger.Error("request", attrs...)
			case rw.statusCode >= 400:
				logger.Warn("request", attrs...)
			default:
				logger.Info("request", attrs...)
			}
		})
	}
}
