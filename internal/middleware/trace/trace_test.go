package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opsboard/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Component: log.ComponentTrace})
	m := NewMiddleware(logger, func(*http.Request) string { return "127.0.0.1" })

	var seen string
	var ctxLogger *log.Logger
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		ctxLogger = log.FromContext(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/finance/cube", nil))

	if !strings.HasPrefix(seen, "req_") || rec.Header().Get(HeaderRequestID) != seen {
		t.Fatalf("request id %q not propagated (header %q)", seen, rec.Header().Get(HeaderRequestID))
	}
	if ctxLogger == nil || ctxLogger.Component() != log.ComponentTrace {
		t.Fatal("request logger missing from context")
	}
	out := buf.String()
	if !strings.Contains(out, "HTTP request completed") || !strings.Contains(out, seen) {
		t.Fatalf("access log missing: %s", out)
	}
	if m.GetMetrics().ServerErrors != 1 || m.GetMetrics().TotalRequests != 1 {
		t.Fatalf("unexpected metrics %+v", m.GetMetrics())
	}
}

func TestMiddlewareReusesClientRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Fatalf("request id = %q", seen)
	}
}
