package permission

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/exploreguard/exploreguard/internal/event"
)

// keySep separates the workspace identity from the source-list component
// of a cache key. It cannot appear in a filesystem path or a slug.
const keySep = "\x00"

// cacheKey canonicalizes a context. Source order never affects the
// merged rule set, so slugs are sorted to make equal contexts hit the
// same entry.
func (c Context) cacheKey() string {
	slugs := append([]string(nil), c.ActiveSources...)
	sort.Strings(slugs)
	return c.WorkspaceRoot + keySep + strings.Join(slugs, ",")
}

// scopeEntry memoizes one scope file's parse result, including the fact
// that the file was absent.
type scopeEntry struct {
	cfg     *CustomConfig
	present bool
}

// Service owns the per-scope and merged-config caches. It is an
// explicit, constructible object: whatever composes the application
// creates one and hands it to the dispatch layer and the watcher.
//
// A single mutex guards all cache state. Merge-building is cheap
// relative to file I/O, so an exclusive lock around lookup and mutation
// is the simplest discipline that keeps an invalidation from
// interleaving with a lookup over a partially evicted cache.
type Service struct {
	mu    sync.Mutex
	paths ScopePaths
	bus   *event.Bus

	defaults   *scopeEntry            // app default scope
	workspaces map[string]*scopeEntry // workspaceRoot -> scope
	sources    map[string]*scopeEntry // workspaceRoot+keySep+slug -> scope
	merged     map[string]*MergedConfig
}

// Option configures a Service.
type Option func(*Service)

// WithBus attaches an event bus; the service publishes
// config.invalidated and config.reloaded events on it.
func WithBus(bus *event.Bus) Option {
	return func(s *Service) { s.bus = bus }
}

// NewService creates a permission service rooted at the given scope
// paths.
func NewService(paths ScopePaths, opts ...Option) *Service {
	s := &Service{
		paths:      paths,
		workspaces: make(map[string]*scopeEntry),
		sources:    make(map[string]*scopeEntry),
		merged:     make(map[string]*MergedConfig),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetMergedConfig returns the merged configuration for a context,
// building and caching it on first access. Repeated calls with the same
// context return the cached value until an invalidation evicts it.
func (s *Service) GetMergedConfig(ctx Context) *MergedConfig {
	key := ctx.cacheKey()

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.merged[key]; ok {
		return m
	}

	m := s.buildMerged(ctx)
	s.merged[key] = m
	log.Debug().Str("workspace", ctx.WorkspaceRoot).Strs("sources", ctx.ActiveSources).
		Msg("merged permission config built")
	s.publish(event.ConfigReloaded, event.ConfigReloadedData{
		Workspace: ctx.WorkspaceRoot,
		Sources:   ctx.ActiveSources,
	})
	return m
}

// InvalidateDefaults drops the cached app-default scope and clears every
// merged entry. Defaults feed every workspace and source, so a targeted
// eviction is not possible.
func (s *Service) InvalidateDefaults() {
	s.mu.Lock()
	s.defaults = nil
	s.merged = make(map[string]*MergedConfig)
	s.mu.Unlock()

	log.Debug().Msg("default permissions invalidated")
	s.publish(event.ConfigInvalidated, event.ConfigInvalidatedData{Scope: "default"})
}

// InvalidateWorkspace drops the cached workspace scope for the given
// root and clears merged entries keyed by that workspace.
func (s *Service) InvalidateWorkspace(workspaceRoot string) {
	s.mu.Lock()
	delete(s.workspaces, workspaceRoot)
	for key := range s.merged {
		if keyWorkspace(key) == workspaceRoot {
			delete(s.merged, key)
		}
	}
	s.mu.Unlock()

	log.Debug().Str("workspace", workspaceRoot).Msg("workspace permissions invalidated")
	s.publish(event.ConfigInvalidated, event.ConfigInvalidatedData{
		Scope:     "workspace",
		Workspace: workspaceRoot,
	})
}

// InvalidateSource drops the cached scope for one (workspace, slug) pair
// and clears merged entries whose source list contains that exact slug.
// The match is an exact token comparison, never a substring match: slug
// "linear" must not evict an entry whose only source is "linear-triage".
func (s *Service) InvalidateSource(workspaceRoot, sourceSlug string) {
	s.mu.Lock()
	delete(s.sources, workspaceRoot+keySep+sourceSlug)
	for key := range s.merged {
		if keyWorkspace(key) != workspaceRoot {
			continue
		}
		if keyHasSource(key, sourceSlug) {
			delete(s.merged, key)
		}
	}
	s.mu.Unlock()

	log.Debug().Str("workspace", workspaceRoot).Str("source", sourceSlug).
		Msg("source permissions invalidated")
	s.publish(event.ConfigInvalidated, event.ConfigInvalidatedData{
		Scope:     "source",
		Workspace: workspaceRoot,
		Source:    sourceSlug,
	})
}

// Clear drops every cached value of every kind.
func (s *Service) Clear() {
	s.mu.Lock()
	s.defaults = nil
	s.workspaces = make(map[string]*scopeEntry)
	s.sources = make(map[string]*scopeEntry)
	s.merged = make(map[string]*MergedConfig)
	s.mu.Unlock()

	log.Debug().Msg("permission caches cleared")
	s.publish(event.ConfigInvalidated, event.ConfigInvalidatedData{Scope: "all"})
}

// Paths returns the scope path layout this service reads from.
func (s *Service) Paths() ScopePaths {
	return s.paths
}

func (s *Service) publish(t event.EventType, data any) {
	if s.bus != nil {
		s.bus.Publish(event.Event{Type: t, Data: data})
	}
}

func keyWorkspace(key string) string {
	ws, _, _ := strings.Cut(key, keySep)
	return ws
}

func keyHasSource(key, slug string) bool {
	_, list, ok := strings.Cut(key, keySep)
	if !ok || list == "" {
		return false
	}
	for _, tok := range strings.Split(list, ",") {
		if tok == slug {
			return true
		}
	}
	return false
}

// defaultScopeLocked returns the cached app-default scope, loading it on
// first access. Caller holds the lock.
func (s *Service) defaultScopeLocked() (*CustomConfig, bool) {
	if s.defaults == nil {
		cfg, present := loadScope("default", s.paths.DefaultPath())
		s.defaults = &scopeEntry{cfg: cfg, present: present}
	}
	return s.defaults.cfg, s.defaults.present
}

func (s *Service) workspaceScopeLocked(workspaceRoot string) (*CustomConfig, bool) {
	entry, ok := s.workspaces[workspaceRoot]
	if !ok {
		cfg, present := loadScope("workspace", s.paths.WorkspacePath(workspaceRoot))
		entry = &scopeEntry{cfg: cfg, present: present}
		s.workspaces[workspaceRoot] = entry
	}
	return entry.cfg, entry.present
}

func (s *Service) sourceScopeLocked(workspaceRoot, slug string) (*CustomConfig, bool) {
	key := workspaceRoot + keySep + slug
	entry, ok := s.sources[key]
	if !ok {
		cfg, present := loadScope("source:"+slug, s.paths.SourcePath(workspaceRoot, slug))
		entry = &scopeEntry{cfg: cfg, present: present}
		s.sources[key] = entry
	}
	return entry.cfg, entry.present
}
