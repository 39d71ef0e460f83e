// Package config provides path management for exploreguard.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard paths for exploreguard data.
type Paths struct {
	Config string // ~/.config/exploreguard
	Cache  string // ~/.cache/exploreguard
	State  string // ~/.local/state/exploreguard
}

// GetPaths returns the standard paths for exploreguard data.
func GetPaths() *Paths {
	return &Paths{
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "exploreguard"),
		Cache:  filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", defaultCacheHome()), "exploreguard"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "exploreguard"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Config, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ConfigRoot returns the configuration root, honoring the
// EXPLOREGUARD_CONFIG_DIR override.
func ConfigRoot() string {
	if dir := os.Getenv("EXPLOREGUARD_CONFIG_DIR"); dir != "" {
		return dir
	}
	return GetPaths().Config
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultCacheHome() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cache")
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}
