package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// Middleware logs every request with its chi request id, status and latency.
type Middleware struct {
	logger     *slog.Logger
	extractIP  func(*http.Request) string
	suspicious func(*http.Request) bool
	total      int64
	failed     int64
}

// NewMiddleware builds the request logger. suspicious may be nil.
func NewMiddleware(logger *slog.Logger, extractIP func(*http.Request) string, suspicious func(*http.Request) bool) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{logger: logger.With("component", "http"), extractIP: extractIP, suspicious: suspicious}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := chimiddleware.GetReqID(r.Context())
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		r = r.WithContext(ctx)

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}
		if m.suspicious != nil && m.suspicious(r) {
			m.logger.WarnContext(ctx, "Suspicious request",
				"request_id", requestID,
				"path", r.URL.Path,
				"client_ip", clientIP,
				"user_agent", r.Header.Get("User-Agent"))
		}

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		atomic.AddInt64(&m.total, 1)
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
			atomic.AddInt64(&m.failed, 1)
		case status >= 400:
			level = slog.LevelWarn
		}

		duration := time.Since(start)
		m.logger.Log(ctx, level, "HTTP request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP,
			"success", status < 400)
	})
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return chimiddleware.GetReqID(ctx)
}

// Counts returns total and failed (5xx) request counts.
func (m *Middleware) Counts() (total, failed int64) {
	return atomic.LoadInt64(&m.total), atomic.LoadInt64(&m.failed)
}
