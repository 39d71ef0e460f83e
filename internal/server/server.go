// Package server exposes the permission engine over HTTP for the
// tool-dispatch layer and the permissions UI.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/permission"
)

// Config holds server configuration.
type Config struct {
	Port         int
	Workspace    string
	Sources      []string
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:         8087,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP facade over a permission.Service.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	service *permission.Service
	bus     *event.Bus
}

// New creates a new Server instance.
func New(cfg *Config, service *permission.Service, bus *event.Bus) *Server {
	s := &Server{
		config:  cfg,
		router:  chi.NewRouter(),
		service: service,
		bus:     bus,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures middleware for the server.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// contextFor resolves the permission context for a request; the server's
// configured workspace and sources are the fallback.
func (s *Server) contextFor(workspace string, sources []string) permission.Context {
	if workspace == "" {
		workspace = s.config.Workspace
	}
	if len(sources) == 0 {
		sources = s.config.Sources
	}
	return permission.Context{WorkspaceRoot: workspace, ActiveSources: sources}
}
