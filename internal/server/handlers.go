package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/permission"
)

// checkRequest is the shared body for /check endpoints. Workspace and
// sources default to the server's configured context.
type checkRequest struct {
	Workspace string   `json:"workspace,omitempty"`
	Sources   []string `json:"sources,omitempty"`

	Command string `json:"command,omitempty"` // bash
	Tool    string `json:"tool,omitempty"`    // mcp
	Method  string `json:"method,omitempty"`  // api
	Path    string `json:"path,omitempty"`    // api, write
}

func (s *Server) decodeCheck(w http.ResponseWriter, r *http.Request) (*checkRequest, bool) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body: "+err.Error())
		return nil, false
	}
	return &req, true
}

// getConfig returns the merged configuration for a context given via
// query parameters (?workspace=...&sources=a,b).
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	var sources []string
	if raw := r.URL.Query().Get("sources"); raw != "" {
		sources = strings.Split(raw, ",")
	}
	ctx := s.contextFor(r.URL.Query().Get("workspace"), sources)
	writeJSON(w, http.StatusOK, s.service.GetMergedConfig(ctx))
}

func (s *Server) checkBash(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCheck(w, r)
	if !ok {
		return
	}
	if req.Command == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "command is required")
		return
	}
	cfg := s.service.GetMergedConfig(s.contextFor(req.Workspace, req.Sources))
	s.respondDecision(w, permission.ExplainBashCommand(req.Command, cfg))
}

func (s *Server) checkMcp(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCheck(w, r)
	if !ok {
		return
	}
	if req.Tool == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "tool is required")
		return
	}
	cfg := s.service.GetMergedConfig(s.contextFor(req.Workspace, req.Sources))
	s.respondDecision(w, permission.ExplainMcpTool(req.Tool, cfg))
}

func (s *Server) checkApi(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCheck(w, r)
	if !ok {
		return
	}
	if req.Method == "" || req.Path == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "method and path are required")
		return
	}
	cfg := s.service.GetMergedConfig(s.contextFor(req.Workspace, req.Sources))
	s.respondDecision(w, permission.ExplainApiEndpoint(req.Method, req.Path, cfg))
}

func (s *Server) checkWrite(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeCheck(w, r)
	if !ok {
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "path is required")
		return
	}
	cfg := s.service.GetMergedConfig(s.contextFor(req.Workspace, req.Sources))
	s.respondDecision(w, permission.ExplainWritePath(req.Path, cfg))
}

// respondDecision writes the decision and publishes denials on the bus.
func (s *Server) respondDecision(w http.ResponseWriter, d permission.Decision) {
	if !d.Allowed && s.bus != nil {
		s.bus.Publish(event.Event{
			Type: event.DecisionDenied,
			Data: event.DecisionDeniedData{
				ID:       d.ID,
				Kind:     d.Kind,
				Action:   d.Action,
				Message:  d.Message,
				NearMiss: d.NearMiss,
			},
		})
	}
	writeJSON(w, http.StatusOK, d)
}

type invalidateRequest struct {
	Workspace string `json:"workspace,omitempty"`
	Source    string `json:"source,omitempty"`
}

func (s *Server) invalidateDefaults(w http.ResponseWriter, r *http.Request) {
	s.service.InvalidateDefaults()
	writeSuccess(w)
}

func (s *Server) invalidateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Workspace == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "workspace is required")
		return
	}
	s.service.InvalidateWorkspace(req.Workspace)
	writeSuccess(w)
}

func (s *Server) invalidateSource(w http.ResponseWriter, r *http.Request) {
	var req invalidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Workspace == "" || req.Source == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "workspace and source are required")
		return
	}
	s.service.InvalidateSource(req.Workspace, req.Source)
	writeSuccess(w)
}
