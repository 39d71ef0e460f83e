// Package permission implements the Explore-mode policy engine. It
// decides whether one concrete action (a shell command, an MCP tool
// call, an outbound API request, or a file write) is permitted while
// the agent runs in the restricted read-only mode.
//
// # Layering
//
// Permissions are assembled from four additive layers, least to most
// specific:
//
//  1. A compiled-in baseline: always-blocked destructive tools plus a
//     small set of always-allowed read-only patterns. No configuration
//     file can alter this layer.
//  2. The app-wide default allow-list (<config-root>/permissions/default.json).
//  3. The workspace allow-list (<workspaceRoot>/permissions.json).
//  4. One allow-list per connected source
//     (<workspaceRoot>/sources/<slug>/permissions.json), whose MCP
//     patterns are auto-scoped to that source's tool namespace.
//
// Merging is strictly additive: a layer can only add permissions, never
// remove or narrow a rule from an earlier layer. Because of that, every
// recoverable load failure (missing file, malformed JSON, schema
// violation, invalid pattern) degrades toward fewer permissions. The
// worst symptom of a broken config file is an over-restrictive denial,
// never an unexpected allow.
//
// # Service and caching
//
// Service memoizes per-scope parse results and fully merged configs,
// keyed by (workspace root, sorted active-source set). An external
// watcher calls InvalidateDefaults, InvalidateWorkspace, or
// InvalidateSource when a file changes; the next GetMergedConfig
// rebuilds from the current on-disk contents. All cache state sits
// behind one mutex, so the service is safe to share across goroutines.
//
// # Decisions
//
// IsApiEndpointAllowed, IsMcpToolAllowed, IsBashCommandAllowed, and
// IsWritePathAllowed are pure predicates over a MergedConfig. A shell
// command that redirects output to a file is denied regardless of any
// pattern match; file writes go through the write-path check only. The
// Explain variants return a Decision with the matched rule, a near-miss
// hint, and a denial message pointing at the permission files.
//
// # Pattern dialect
//
// Patterns are Go (RE2) regular expressions; write paths are doublestar
// globs. A pattern that uses syntax RE2 does not support, such as
// lookaround or backreferences, fails to compile and is dropped with a
// diagnostic.
package permission
