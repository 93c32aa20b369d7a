package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaths(t *testing.T) {
	p := NewPaths("/home/u/.tabwarden")
	root := "/home/u/.tabwarden"
	assert.Equal(t, root, p.Root)
	assert.Equal(t, filepath.Join(root, "tabwarden.db"), p.DB)
	assert.Equal(t, filepath.Join(root, "config.yaml"), p.Config)
	assert.Equal(t, filepath.Join(root, "status.json"), p.Status)
	assert.Equal(t, filepath.Join(root, "log"), p.LogDir)
	assert.Equal(t, filepath.Join(root, "log", "daemon.log"), p.DaemonLog)
	assert.Equal(t, filepath.Join(root, "run"), p.RunDir)
	assert.Equal(t, filepath.Join(root, "run", "daemon.pid"), p.PIDFile)
	assert.Equal(t, filepath.Join(root, "run", "http.port"), p.PortFile)
	assert.Equal(t, filepath.Join(root, "feed"), p.FeedDir)
	assert.Equal(t, filepath.Join(root, "feed", "events.jsonl"), p.FeedFile)
}

func TestEnsureDirs(t *testing.T) {
	p := NewPaths(filepath.Join(t.TempDir(), ".tabwarden"))

	require.NoError(t, p.EnsureDirs())
	for _, d := range []string{p.Root, p.LogDir, p.RunDir, p.FeedDir} {
		info, err := os.Stat(d)
		require.NoError(t, err, "dir %s should exist", d)
		assert.True(t, info.IsDir())
	}

	// Second call is idempotent.
	require.NoError(t, p.EnsureDirs())
}

func TestHomeDir_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TABWARDEN_HOME", dir)
	got, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)
}

func TestHomeDir_Default(t *testing.T) {
	t.Setenv("TABWARDEN_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := HomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".tabwarden"), got)
}

func TestCleanEphemeral(t *testing.T) {
	p := NewPaths(t.TempDir())
	require.NoError(t, p.EnsureDirs())
	require.NoError(t, os.WriteFile(p.PIDFile, []byte("123"), 0644))
	require.NoError(t, os.WriteFile(p.PortFile, []byte("8080"), 0644))
	require.NoError(t, os.WriteFile(p.DB, []byte("keep"), 0644))

	p.CleanEphemeral()

	assert.NoFileExists(t, p.PIDFile)
	assert.NoFileExists(t, p.PortFile)
	assert.FileExists(t, p.DB)
}
