package fsnotify

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func startWatcher(t *testing.T, path string) (*Watcher, <-chan string) {
	t.Helper()
	w, err := NewWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	changed := make(chan string, 10)
	require.NoError(t, w.Watch(path, func(p string) { changed <- p }))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)
	return w, changed
}

func TestWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("nudge: {}\n"), 0644))

	_, changed := startWatcher(t, cfg)
	require.NoError(t, os.WriteFile(cfg, []byte("nudge:\n  cooldown: 5m\n"), 0644))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "expected callback for config write")
	assert.Equal(t, cfg, path)
}

func TestWatcher_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")

	_, changed := startWatcher(t, cfg)
	require.NoError(t, os.WriteFile(cfg, []byte("http:\n  port: 19001\n"), 0644))

	_, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "file created after Watch is still observed")
}

func TestWatcher_DetectsRenameOver(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("a: 1\n"), 0644))

	_, changed := startWatcher(t, cfg)

	tmp := filepath.Join(dir, ".config.yaml.swp")
	require.NoError(t, os.WriteFile(tmp, []byte("a: 2\n"), 0644))
	require.NoError(t, os.Rename(tmp, cfg))

	path, ok := waitForCallback(changed, 2*time.Second)
	assert.True(t, ok, "editor-style save observed")
	assert.Equal(t, cfg, path)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")

	_, changed := startWatcher(t, cfg)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tabwarden.db"), []byte("x"), 0644))

	_, ok := waitForCallback(changed, 200*time.Millisecond)
	assert.False(t, ok, "other files in the directory do not fire")
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, nil, 0644))

	w, err := NewWatcher(100 * time.Millisecond)
	require.NoError(t, err)
	defer w.Stop()

	var calls atomic.Int32
	require.NoError(t, w.Watch(cfg, func(string) { calls.Add(1) }))
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(cfg, []byte{byte('a' + i)}, 0644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapsed into one callback")
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w, err := NewWatcher(0)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "nope", "config.yaml"), func(string) {})
	assert.Error(t, err)
}

func TestWatcher_StopCleanup(t *testing.T) {
	// After Stop(), no more callbacks fire.
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")

	w, changed := startWatcher(t, cfg)
	require.NoError(t, w.Stop())

	require.NoError(t, os.WriteFile(cfg, []byte("x: 1\n"), 0644))
	_, ok := waitForCallback(changed, 200*time.Millisecond)
	assert.False(t, ok, "callbacks fired after Stop()")

	// Double stop is safe
	assert.NoError(t, w.Stop())
}
