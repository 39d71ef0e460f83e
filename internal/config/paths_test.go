package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPaths_XDGOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")
	t.Setenv("XDG_STATE_HOME", "/xdg/state")

	p := GetPaths()
	assert.Equal(t, filepath.Join("/xdg/config", "exploreguard"), p.Config)
	assert.Equal(t, filepath.Join("/xdg/cache", "exploreguard"), p.Cache)
	assert.Equal(t, filepath.Join("/xdg/state", "exploreguard"), p.State)
}

func TestGetPaths_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")

	p := GetPaths()
	assert.Equal(t, filepath.Join("/home/tester", ".config", "exploreguard"), p.Config)
}

func TestConfigRoot_EnvOverride(t *testing.T) {
	t.Setenv("EXPLOREGUARD_CONFIG_DIR", "/custom/root")
	assert.Equal(t, "/custom/root", ConfigRoot())

	t.Setenv("EXPLOREGUARD_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	assert.Equal(t, filepath.Join("/xdg/config", "exploreguard"), ConfigRoot())
}

func TestEnsurePaths(t *testing.T) {
	base := t.TempDir()
	p := &Paths{
		Config: filepath.Join(base, "config"),
		Cache:  filepath.Join(base, "cache"),
		State:  filepath.Join(base, "state"),
	}
	require.NoError(t, p.EnsurePaths())

	for _, dir := range []string{p.Config, p.Cache, p.State} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// Idempotent.
	require.NoError(t, p.EnsurePaths())
}
