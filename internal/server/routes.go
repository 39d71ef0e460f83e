package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	// Merged configuration
	r.Get("/config", s.getConfig)

	// Decision checks
	r.Route("/check", func(r chi.Router) {
		r.Post("/bash", s.checkBash)
		r.Post("/mcp", s.checkMcp)
		r.Post("/api", s.checkApi)
		r.Post("/write", s.checkWrite)
	})

	// Cache invalidation entry points for external watchers
	r.Route("/invalidate", func(r chi.Router) {
		r.Post("/defaults", s.invalidateDefaults)
		r.Post("/workspace", s.invalidateWorkspace)
		r.Post("/source", s.invalidateSource)
	})
}
