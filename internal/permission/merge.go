package permission

import "regexp"

// Display metadata attached to every merged config.
const (
	modeName     = "Explore"
	shortcutHint = "shift+tab to switch modes"
)

// buildMerged assembles a MergedConfig for one context by layering, in
// order: the compiled-in baseline, the app defaults, the workspace
// additions, and each active source's additions. Every step only ever
// appends. Caller holds the service lock.
func (s *Service) buildMerged(ctx Context) *MergedConfig {
	m := &MergedConfig{
		BlockedTools: BlockedTools(),
		BashPatterns: compileBaseline(baselineBashPatterns),
		McpPatterns:  compileBaseline(baselineMcpPatterns),
		ModeName:     modeName,
		ShortcutHint: shortcutHint,
		PermissionPaths: PermissionPaths{
			Default:   s.paths.DefaultPath(),
			Workspace: s.paths.WorkspacePath(ctx.WorkspaceRoot),
		},
	}

	if cfg, ok := s.defaultScopeLocked(); ok {
		appendScope(m, "default", cfg, "")
	}
	if cfg, ok := s.workspaceScopeLocked(ctx.WorkspaceRoot); ok {
		appendScope(m, "workspace", cfg, "")
	}
	for _, slug := range ctx.ActiveSources {
		if cfg, ok := s.sourceScopeLocked(ctx.WorkspaceRoot, slug); ok {
			appendScope(m, "source:"+slug, cfg, slug)
		}
	}

	return m
}

// appendScope appends one scope's rules to the working merged config.
//
// When sourceSlug is non-empty the scope belongs to a connected source
// and its MCP patterns are auto-scoped: a pattern p becomes
// mcp__<slug>__.*p so that a generic pattern like "list" can only ever
// match tool names in that source's own namespace. Bash patterns,
// write-path globs, and API endpoint rules are not auto-scoped (API
// tools are already namespaced per source as api_<slug>, and bash and
// write-path rules are inherently source-agnostic).
func appendScope(m *MergedConfig, scope string, cfg *CustomConfig, sourceSlug string) {
	m.BashPatterns = compileEntries(m.BashPatterns, "allowedBashPatterns", scope, cfg.AllowedBashPatterns)

	mcp := make([]PatternEntry, 0, len(cfg.AllowedMcpPatterns))
	for _, p := range cfg.AllowedMcpPatterns {
		if sourceSlug != "" {
			p = mcpScopePrefix(sourceSlug) + p
		}
		mcp = append(mcp, PatternEntry{Pattern: p})
	}
	m.McpPatterns = compileEntries(m.McpPatterns, "allowedMcpPatterns", scope, mcp)

	m.ApiEndpoints = compileEndpointRules(m.ApiEndpoints, scope, cfg.AllowedApiEndpoints)
	m.WritePaths = append(m.WritePaths, cfg.AllowedWritePaths...)
}

// mcpScopePrefix builds the namespace prefix for a source's MCP
// patterns. The slug is quoted so a slug containing regex
// metacharacters cannot widen its own scope.
func mcpScopePrefix(slug string) string {
	return "mcp__" + regexp.QuoteMeta(slug) + "__.*"
}
