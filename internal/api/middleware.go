package api

import (
	"context"
	"net/http"
	"time"

	"github.com/factchecker/misinfo-detector/internal/database"
	"github.com/factchecker/misinfo-detector/internal/models"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// RequestIDMiddleware adds a unique request ID to each request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoggingMiddleware logs all requests.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Str("request_id", getRequestID(r.Context())).
			Msg("Request completed")
	})
}

// AuditMiddleware records API requests in the database. Writes happen off
// the request path; failures are logged and otherwise ignored.
func AuditMiddleware(store database.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			entry := &models.AuditLog{
				ID:           uuid.New().String(),
				RequestID:    getRequestID(r.Context()),
				Endpoint:     r.URL.Path,
				Method:       r.Method,
				RequestSize:  r.ContentLength,
				ResponseCode: wrapped.status,
				DurationMs:   time.Since(start).Milliseconds(),
				Timestamp:    start.UTC(),
			}
			go func() {
				if err := store.LogRequest(context.Background(), entry); err != nil {
					log.Error().Err(err).Msg("Failed to log audit entry")
				}
			}()
		})
	}
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"error": "Too many analysis requests. Please wait a moment and try again.",
			})
		}),
	)
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
