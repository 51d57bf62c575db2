// Package api provides the loopback HTTP API over the roster state managers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rosterapp/roster/internal/http/response"
	"github.com/rosterapp/roster/internal/ratelimit"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	Version        string
	CORSOrigins    []string
	RateLimitRPS   float64 // Zero disables rate limiting
	RateLimitBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store       store.Adapter
	services    *Services
	sseManager  *sse.Manager
	sseHandler  *sse.Handler
	router      *chi.Mux
	api         huma.API
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// sseManager may be nil, in which case the event stream is not served.
func NewServer(st store.Adapter, services *Services, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		store:      st,
		services:   services,
		sseManager: sseManager,
		router:     chi.NewRouter(),
		logger:     logger,
	}
	if opts.RateLimitRPS > 0 {
		s.rateLimiter = ratelimit.New(opts.RateLimitRPS, max(opts.RateLimitBurst, 1))
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Roster API", opts.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	if len(opts.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	if s.rateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.rateLimiter, s.logger))
	}

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, "method not allowed", s.logger)
	})
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerTagRoutes()
	s.registerMemberRoutes()
	s.registerChatRoutes()

	// The event stream is a long-lived text/event-stream response, served
	// directly on the router rather than as a huma operation.
	if s.sseManager != nil {
		s.sseHandler = sse.NewHandler(s.sseManager, s.logger)
		s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
	}
}
