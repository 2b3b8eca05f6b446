// Package http exposes the boards, the automation-aware record API and the
// finance dashboard as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"opsboard/internal/automation"
	"opsboard/internal/boards"
	"opsboard/internal/finance"
	"opsboard/internal/log"
	"opsboard/internal/middleware/ratelimit"
	"opsboard/internal/middleware/trace"
	"opsboard/internal/ports"
)

// Deps are the collaborators the handlers call into.
type Deps struct {
	Store      ports.Store
	Boards     *boards.Engine
	Automation *automation.Service
	Finance    *finance.Service
	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger

	RateLimitPerMinute int
}

// Server wraps http.Server with the application handlers.
type Server struct {
	http.Server

	store      ports.Store
	boards     *boards.Engine
	automation *automation.Service
	finance    *finance.Service
	ready      func(ctx context.Context) error
	logger     *log.Logger

	rateLimiter *ratelimit.Limiter
	tracer      *trace.Middleware
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := log.OrDefault(deps.Logger, log.ComponentHTTP)
	mux := http.NewServeMux()

	s := &Server{
		store:      deps.Store,
		boards:     deps.Boards,
		automation: deps.Automation,
		finance:    deps.Finance,
		ready:      deps.Ready,
		logger:     logger,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		tracer: trace.NewMiddleware(logger, extractClientIP),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/boards/{board}/rows", s.handleBoardRows)
	mux.HandleFunc("GET /api/boards/{board}/view", s.handleBoardView)
	mux.HandleFunc("PUT /api/boards/{board}/sort", s.handleApplySort)
	mux.HandleFunc("POST /api/boards/{board}/sort/toggle", s.handleToggleSort)
	mux.HandleFunc("DELETE /api/boards/{board}/sort", s.handleClearSort)
	mux.HandleFunc("PUT /api/boards/{board}/filters", s.handleApplyFilters)
	mux.HandleFunc("DELETE /api/boards/{board}/filters", s.handleClearFilters)

	mux.HandleFunc("GET /api/entities/{entity}", s.handleListRecords)
	mux.HandleFunc("POST /api/entities/{entity}", s.handleCreateRecord)
	mux.HandleFunc("GET /api/entities/{entity}/{id}", s.handleGetRecord)
	mux.HandleFunc("PATCH /api/entities/{entity}/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /api/entities/{entity}/{id}", s.handleDeleteRecord)

	mux.HandleFunc("GET /api/automation/rules", s.handleRules)

	mux.HandleFunc("GET /api/finance/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/finance/cube", s.handleCube)

	limit := s.rateLimiter.Middleware(extractClientIP, ratelimit.WritesOnly, func(w http.ResponseWriter, r *http.Request) {
		logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, extractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, try again later"})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.tracer.Middleware(withSecurityHeaders(limit(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Shutdown stops background workers and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.rateLimiter.Stop()
	return s.Server.Shutdown(ctx)
}

// Metrics reports request and rate limiting counters.
func (s *Server) Metrics() (trace.Metrics, ratelimit.Metrics) {
	return s.tracer.GetMetrics(), s.rateLimiter.GetMetrics()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
