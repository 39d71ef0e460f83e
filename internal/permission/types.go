package permission

import (
	"encoding/json"
	"regexp"
)

// PatternEntry is one allow-list rule as written in a permissions file.
// The file format accepts either a bare pattern string or an object with
// "pattern" and an optional "comment"; both decode into this one shape.
type PatternEntry struct {
	Pattern string `json:"pattern"`
	Comment string `json:"comment,omitempty"`
}

// UnmarshalJSON accepts both input shapes and normalizes at the parse
// boundary so everything downstream sees a single representation.
func (e *PatternEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Pattern)
	}
	type plain PatternEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = PatternEntry(p)
	return nil
}

// ApiEndpointRule allows one HTTP method + path pattern combination.
type ApiEndpointRule struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Comment string `json:"comment,omitempty"`
}

// CompiledApiEndpointRule is an ApiEndpointRule with its path pattern
// compiled. Source keeps the original pattern string for denial messages.
type CompiledApiEndpointRule struct {
	Method  string         `json:"method"`
	Path    *regexp.Regexp `json:"-"`
	Source  string         `json:"path"`
	Comment string         `json:"comment,omitempty"`
}

// CompiledPattern is a compiled allow-list pattern. Source keeps the
// original pattern string so a denial message can show which rule was
// closest to matching.
type CompiledPattern struct {
	Regex   *regexp.Regexp `json:"-"`
	Source  string         `json:"pattern"`
	Comment string         `json:"comment,omitempty"`
}

// CustomConfig is the normalized contents of one scope's permissions file.
// Absent fields are empty lists. A CustomConfig is immutable once loaded;
// reloads replace it wholesale.
//
// Bash patterns keep their comments (they are surfaced in denial
// messages); MCP and write-path patterns are reduced to bare strings at
// load time since nothing consumes their comments.
type CustomConfig struct {
	AllowedBashPatterns []PatternEntry
	AllowedMcpPatterns  []string
	AllowedApiEndpoints []ApiEndpointRule
	AllowedWritePaths   []string
}

// rawCustomConfig is the on-disk shape before normalization.
type rawCustomConfig struct {
	AllowedBashPatterns []PatternEntry    `json:"allowedBashPatterns"`
	AllowedMcpPatterns  []PatternEntry    `json:"allowedMcpPatterns"`
	AllowedApiEndpoints []ApiEndpointRule `json:"allowedApiEndpoints"`
	AllowedWritePaths   []PatternEntry    `json:"allowedWritePaths"`
}

// PermissionPaths points at the permission files a user can edit to
// change the verdict. Used only to build actionable denial messages,
// never consulted at decision time.
type PermissionPaths struct {
	Default   string `json:"default"`
	Workspace string `json:"workspace"`
}

// MergedConfig is the single source of truth consulted at decision time.
// It is assembled by layering the hardcoded baseline, the app defaults,
// the workspace additions, and each active source's additions. Layers
// only ever append; nothing removes or narrows an earlier layer.
type MergedConfig struct {
	// BlockedTools is sourced only from the compiled-in baseline.
	// No loaded configuration can alter it, at any scope.
	BlockedTools map[string]bool `json:"blockedTools"`

	BashPatterns []CompiledPattern         `json:"bashPatterns"`
	McpPatterns  []CompiledPattern         `json:"mcpPatterns"`
	ApiEndpoints []CompiledApiEndpointRule `json:"apiEndpoints"`
	WritePaths   []string                  `json:"writePaths"`

	ModeName        string          `json:"modeName"`
	ShortcutHint    string          `json:"shortcutHint"`
	PermissionPaths PermissionPaths `json:"permissionPaths"`
}

// Context identifies which merged configuration applies to a decision:
// the workspace being operated on and the set of connected sources.
type Context struct {
	WorkspaceRoot string   `json:"workspace"`
	ActiveSources []string `json:"sources,omitempty"`
}
