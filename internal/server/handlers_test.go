package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exploreguard/exploreguard/internal/event"
	"github.com/exploreguard/exploreguard/internal/permission"
)

func newTestServer(t *testing.T) (*Server, *permission.Service, string) {
	t.Helper()
	svc := permission.NewService(permission.ScopePaths{ConfigRoot: t.TempDir()})
	ws := t.TempDir()

	cfg := DefaultConfig()
	cfg.Workspace = ws
	return New(cfg, svc, event.NewBus()), svc, ws
}

func writeWorkspaceConfig(t *testing.T, svc *permission.Service, ws, content string) {
	t.Helper()
	path := svc.Paths().WorkspacePath(ws)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeDecision(t *testing.T, rec *httptest.ResponseRecorder) permission.Decision {
	t.Helper()
	var d permission.Decision
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	return d
}

func TestGetConfig(t *testing.T) {
	srv, svc, ws := newTestServer(t)
	writeWorkspaceConfig(t, svc, ws, `{"allowedWritePaths": ["scratch/**"]}`)

	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cfg struct {
		ModeName   string   `json:"modeName"`
		WritePaths []string `json:"writePaths"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, "Explore", cfg.ModeName)
	assert.Equal(t, []string{"scratch/**"}, cfg.WritePaths)
}

func TestCheckBash(t *testing.T) {
	srv, svc, ws := newTestServer(t)
	writeWorkspaceConfig(t, svc, ws, `{"allowedBashPatterns": ["^make "]}`)

	allowed := decodeDecision(t, postJSON(t, srv, "/check/bash", map[string]string{"command": "make test"}))
	assert.True(t, allowed.Allowed)

	denied := decodeDecision(t, postJSON(t, srv, "/check/bash", map[string]string{"command": "make"}))
	assert.False(t, denied.Allowed)
	assert.NotEmpty(t, denied.Message)
}

func TestCheckBash_MissingCommand(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := postJSON(t, srv, "/check/bash", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckMcp(t *testing.T) {
	srv, svc, ws := newTestServer(t)
	writeWorkspaceConfig(t, svc, ws, `{"allowedMcpPatterns": ["^mcp__docs__read_"]}`)

	allowed := decodeDecision(t, postJSON(t, srv, "/check/mcp", map[string]string{"tool": "mcp__docs__read_page"}))
	assert.True(t, allowed.Allowed)

	denied := decodeDecision(t, postJSON(t, srv, "/check/mcp", map[string]string{"tool": "mcp__docs__drop_page"}))
	assert.False(t, denied.Allowed)
}

func TestCheckApi(t *testing.T) {
	srv, _, _ := newTestServer(t)

	get := decodeDecision(t, postJSON(t, srv, "/check/api", map[string]string{"method": "GET", "path": "/v1/anything"}))
	assert.True(t, get.Allowed)

	post := decodeDecision(t, postJSON(t, srv, "/check/api", map[string]string{"method": "POST", "path": "/v1/anything"}))
	assert.False(t, post.Allowed)
}

func TestCheckWrite(t *testing.T) {
	srv, svc, ws := newTestServer(t)
	writeWorkspaceConfig(t, svc, ws, `{"allowedWritePaths": ["scratch/**"]}`)

	allowed := decodeDecision(t, postJSON(t, srv, "/check/write", map[string]string{"path": "scratch/notes.txt"}))
	assert.True(t, allowed.Allowed)

	denied := decodeDecision(t, postJSON(t, srv, "/check/write", map[string]string{"path": "src/main.go"}))
	assert.False(t, denied.Allowed)
}

func TestInvalidateWorkspaceEndpoint(t *testing.T) {
	srv, svc, ws := newTestServer(t)

	denied := decodeDecision(t, postJSON(t, srv, "/check/bash", map[string]string{"command": "make test"}))
	require.False(t, denied.Allowed)

	writeWorkspaceConfig(t, svc, ws, `{"allowedBashPatterns": ["^make "]}`)

	// Still denied: the merged config is cached until invalidated.
	stale := decodeDecision(t, postJSON(t, srv, "/check/bash", map[string]string{"command": "make test"}))
	require.False(t, stale.Allowed)

	rec := postJSON(t, srv, "/invalidate/workspace", map[string]string{"workspace": ws})
	require.Equal(t, http.StatusOK, rec.Code)

	fresh := decodeDecision(t, postJSON(t, srv, "/check/bash", map[string]string{"command": "make test"}))
	assert.True(t, fresh.Allowed)
}

func TestInvalidateEndpoints_Validation(t *testing.T) {
	srv, _, _ := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv, "/invalidate/workspace", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, postJSON(t, srv, "/invalidate/source", map[string]string{"workspace": "/ws"}).Code)

	rec := postJSON(t, srv, "/invalidate/defaults", map[string]string{})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeniedDecisionPublishesEvent(t *testing.T) {
	srv, _, _ := newTestServer(t)

	got := make(chan event.Event, 1)
	srv.bus.Subscribe(event.DecisionDenied, func(e event.Event) { got <- e })

	postJSON(t, srv, "/check/bash", map[string]string{"command": "terraform apply"})

	select {
	case e := <-got:
		data, ok := e.Data.(event.DecisionDeniedData)
		require.True(t, ok)
		assert.Equal(t, "bash", data.Kind)
		assert.Equal(t, "terraform apply", data.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("no denial event published")
	}
}
