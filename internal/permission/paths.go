package permission

import (
	_ "embed"
	"os"
	"path/filepath"
)

//go:embed default_template.json
var defaultTemplateJSON []byte

// ScopePaths maps the three configuration scopes to their on-disk files.
type ScopePaths struct {
	// ConfigRoot is the application configuration directory
	// (e.g. ~/.config/exploreguard).
	ConfigRoot string
}

// DefaultPath returns the app-wide default permissions file.
func (p ScopePaths) DefaultPath() string {
	return filepath.Join(p.ConfigRoot, "permissions", "default.json")
}

// WorkspacePath returns the permissions file for a workspace.
func (p ScopePaths) WorkspacePath(workspaceRoot string) string {
	return filepath.Join(workspaceRoot, "permissions.json")
}

// SourcePath returns the permissions file for one connected source
// within a workspace.
func (p ScopePaths) SourcePath(workspaceRoot, sourceSlug string) string {
	return filepath.Join(workspaceRoot, "sources", sourceSlug, "permissions.json")
}

// SeedDefault writes the bundled default permissions template on first
// run. An existing file is never overwritten.
func (p ScopePaths) SeedDefault() error {
	path := p.DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, defaultTemplateJSON, 0644)
}
