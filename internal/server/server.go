// Package server provides the HTTP surface of PromptLens.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/HerbHall/promptlens/internal/analysis"
	"github.com/HerbHall/promptlens/internal/auth"
	"github.com/HerbHall/promptlens/internal/ratelimit"
	"github.com/HerbHall/promptlens/internal/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// ReadinessChecker verifies that the server is ready to serve traffic.
// Returns nil if ready, an error describing why not otherwise.
type ReadinessChecker func(ctx context.Context) error

// RouteRegistrar lets other packages add routes to the server mux.
type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// Server is the PromptLens HTTP server.
type Server struct {
	httpServer *http.Server
	analyzer   *analysis.Analyzer
	limiter    *ratelimit.Limiter
	callers    *CallerKeys
	logger     *zap.Logger
	mux        *http.ServeMux
	ready      ReadinessChecker
}

// postRoutes are the analysis endpoints; other methods get 405 before auth.
var postRoutes = map[string]string{
	"/api/v1/analyze":       http.MethodPost,
	"/api/v1/analyze/chunk": http.MethodPost,
	"/api/v1/tokens":        http.MethodPost,
}

// New creates a Server with middleware and routes. ready may be nil.
// When cfg.DevMode is set, Swagger UI is served at /swagger/.
func New(cfg Config, cors CORSConfig, analyzer *analysis.Analyzer, limiter *ratelimit.Limiter, verifier *auth.Verifier, logger *zap.Logger, ready ReadinessChecker, extraRoutes ...RouteRegistrar) *Server {
	mux := http.NewServeMux()

	callers, err := NewCallerKeys(cfg.TrustedProxies)
	if err != nil {
		// Decode validates this list; a hand-built Config falls back to the peer address.
		logger.Warn("ignoring trusted proxies", zap.Error(err))
	}

	s := &Server{
		analyzer: analyzer,
		limiter:  limiter,
		callers:  callers,
		logger:   logger,
		mux:      mux,
		ready:    ready,
	}

	s.registerRoutes()
	for _, r := range extraRoutes {
		r.RegisterRoutes(mux)
	}

	if cfg.DevMode {
		mux.Handle("GET /swagger/", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		logger.Info("swagger UI enabled (dev_mode)", zap.String("path", "/swagger/"))
	}

	// Middleware chain: outermost listed first.
	handler := Chain(mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, []string{"/healthz", "/readyz", "/metrics"}),
		SecurityHeadersMiddleware,
		VersionHeaderMiddleware,
		CORSMiddleware(cors),
		MethodMiddleware(postRoutes),
		auth.Middleware(verifier),
	)

	// No write timeout: a chunked analysis makes one model call per chunk.
	s.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// registerRoutes sets up all core routes.
func (s *Server) registerRoutes() {
	// Unversioned operational endpoints.
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Versioned API endpoints.
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/v1/analyze", s.handleAnalyze)
	s.mux.HandleFunc("POST /api/v1/analyze/chunk", s.handleAnalyzeChunk)
	s.mux.HandleFunc("POST /api/v1/tokens", s.handleTokens)
	s.mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		NotFound(w, "no such endpoint", r.URL.Path)
	})
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// handleHealthz is a liveness probe -- returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// handleReadyz checks readiness -- returns 200 if the model provider answers.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status     string              `json:"status" example:"ok"`
	Service    string              `json:"service" example:"promptlens"`
	Version    map[string]string   `json:"version"`
	Thresholds analysis.Thresholds `json:"thresholds"`
}

// handleHealth returns detailed health information (versioned API endpoint).
//
//	@Summary		Health check
//	@Description	Returns service health status, version, and token budgets.
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Router			/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:     "ok",
		Service:    "promptlens",
		Version:    version.Map(),
		Thresholds: s.analyzer.Thresholds(),
	})
}
