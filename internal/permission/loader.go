package permission

import (
	"encoding/json"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/jsonc"
)

// loadScope reads and normalizes one scope's permissions file.
//
// A missing file is not an error: the scope simply contributes nothing to
// the merge, and (nil, false) is returned. A file that exists but is
// malformed or fails schema validation loads as an empty config with
// diagnostics logged. All layers are additive allow-lists, so failing to
// load extra permissions can only reduce what is allowed; it must never
// crash action evaluation.
func loadScope(scope, path string) (*CustomConfig, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("scope", scope).Str("path", path).
				Msg("permissions file unreadable, treating scope as empty")
			return &CustomConfig{}, true
		}
		return nil, false
	}

	// Comments are tolerated in permissions files.
	data = jsonc.ToJSON(data)

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("scope", scope).Str("path", path).
			Msg("permissions file is not valid JSON, treating scope as empty")
		return &CustomConfig{}, true
	}
	if err := validatePermissionsJSON(doc); err != nil {
		for _, issue := range schemaIssues(err) {
			log.Warn().Str("scope", scope).Str("path", path).Str("issue", issue).
				Msg("permissions file failed schema validation, treating scope as empty")
		}
		return &CustomConfig{}, true
	}

	var raw rawCustomConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("scope", scope).Str("path", path).
			Msg("permissions file could not be decoded, treating scope as empty")
		return &CustomConfig{}, true
	}

	return normalize(raw), true
}

// normalize maps the on-disk shape to the uniform in-memory shape. MCP
// and write-path entries lose their comments here; no consumer needs
// them, and the bare strings keep the merge simple.
func normalize(raw rawCustomConfig) *CustomConfig {
	cfg := &CustomConfig{
		AllowedBashPatterns: raw.AllowedBashPatterns,
		AllowedApiEndpoints: raw.AllowedApiEndpoints,
	}
	for _, e := range raw.AllowedMcpPatterns {
		cfg.AllowedMcpPatterns = append(cfg.AllowedMcpPatterns, e.Pattern)
	}
	for _, e := range raw.AllowedWritePaths {
		cfg.AllowedWritePaths = append(cfg.AllowedWritePaths, e.Pattern)
	}
	return cfg
}
