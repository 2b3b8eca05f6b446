// Package trace tags each request with an id and writes an access log line.
package trace

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"opsboard/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is echoed back so clients can correlate failures.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	logger    *log.Logger
	extractIP func(*http.Request) string
	metrics   Metrics
}

// Metrics are simple request counters.
type Metrics struct {
	TotalRequests int64
	ServerErrors  int64
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string) *Middleware {
	return &Middleware{
		logger:    log.OrDefault(logger, log.ComponentTrace),
		extractIP: extractIP,
	}
}

// Middleware assigns a request id (reusing a client supplied X-Request-ID),
// stores a request scoped logger in the context and logs completion.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = GenerateRequestID()
		}
		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		reqLogger := m.logger.With(log.FieldRequestID, requestID)
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, reqLogger)
		r = r.WithContext(ctx)

		w.Header().Set(HeaderRequestID, requestID)
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		atomic.AddInt64(&m.metrics.TotalRequests, 1)
		level := slog.LevelInfo
		switch {
		case rw.statusCode >= 500:
			level = slog.LevelError
			atomic.AddInt64(&m.metrics.ServerErrors, 1)
		case rw.statusCode >= 400:
			level = slog.LevelWarn
		}

		fields := log.NewFields().
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
			WithHTTPResponse(rw.statusCode, time.Since(start).Milliseconds())
		reqLogger.Log(ctx, level, "HTTP request completed",
			append(fields.ToSlice(), log.FieldClientIP, clientIP)...)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func GenerateRequestID() string {
	return "req_" + uuid.NewString()
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests: atomic.LoadInt64(&m.metrics.TotalRequests),
		ServerErrors:  atomic.LoadInt64(&m.metrics.ServerErrors),
	}
}
