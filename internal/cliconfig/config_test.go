package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Equal(t, defaultServerURL, cfg.ServerURL(""))
}

func TestSaveAndLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveProfile("staging", "https://aerotrace-staging.example.com"))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", loaded.CurrentProfile)
	assert.Equal(t, "https://aerotrace-staging.example.com", loaded.ServerURL(""))
	assert.Equal(t, "https://aerotrace-staging.example.com", loaded.ServerURL("staging"))
	assert.Equal(t, defaultServerURL, loaded.ServerURL("missing"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestRemoveProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.SaveProfile("prod", "https://aerotrace.example.com"))
	require.NoError(t, cfg.RemoveProfile("prod"))

	assert.Empty(t, cfg.CurrentProfile)
	assert.Error(t, cfg.RemoveProfile("prod"))
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
