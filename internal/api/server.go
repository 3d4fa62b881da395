package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chittyos/chittytrust/internal/domain"
	"github.com/chittyos/chittytrust/internal/insights"
	"github.com/chittyos/chittytrust/internal/trust"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *trust.Engine, insight *insights.Engine, version string, resultTTL time.Duration, activityWindow int) *Server {
	handler := NewHandler(repo, cache, bus, engine, insight, version, resultTTL, activityWindow)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(MetricsMiddleware)      // Prometheus request metrics
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health and metrics endpoints (no tenant required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)
	router.Method(http.MethodGet, "/metrics", MetricsHandler())

	// API routes (tenant required)
	router.Route("/", func(r chi.Router) {
		r.Use(TenantMiddleware)

		// Entity registration
		r.Post("/entities", handler.CreateEntity)
		r.Get("/entities/{id}", handler.GetEntity)

		// Trust event recording
		r.Post("/entities/{id}/events", handler.RecordEvent)

		// Trust calculation and retrieval
		r.Post("/trust/{id}/calculate", handler.Calculate)
		r.Get("/trust/{id}", handler.GetTrust)
		r.Get("/trust/{id}/history", handler.GetTrustHistory)

		// Insight rule management
		r.Get("/insights/rules", handler.ListInsightRules)
		r.Get("/insights/rules/{id}", handler.GetInsightRule)
		r.Post("/insights/rules", handler.CreateInsightRule)
		r.Delete("/insights/rules/{id}", handler.DeleteInsightRule)
		r.Post("/insights/rules/reload", handler.ReloadInsightRules)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
