package bbolt

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/corey/tabwarden/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a temporary bbolt store for testing.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func record(t *testing.T, kv ...any) ports.Record {
	t.Helper()
	rec := ports.Record{}
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, rec.Put(kv[i].(string), kv[i+1]))
	}
	return rec
}

var ctx = context.Background()

func TestStore_SetGet_Roundtrip(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set(ctx, record(t,
		ports.KeyUserPoints, 100,
		ports.KeyLastReset, "2026-03-10",
		ports.KeySprintActive, true,
	)))

	rec, err := store.Get(ctx, ports.KeyUserPoints, ports.KeyLastReset, ports.KeyDailyStreak)
	require.NoError(t, err)

	var points int
	ok, err := rec.Decode(ports.KeyUserPoints, &points)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 100, points)

	var reset string
	_, err = rec.Decode(ports.KeyLastReset, &reset)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-10", reset)

	assert.False(t, rec.Has(ports.KeyDailyStreak), "missing keys are absent, not an error")
	assert.False(t, rec.Has(ports.KeySprintActive), "only requested keys are returned")
}

func TestStore_GetAll(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set(ctx, record(t, "a", 1, "b", 2)))

	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Len(t, rec, 2)
}

func TestStore_CrashRecovery(t *testing.T) {
	// Data from the last committed transaction survives a reopen.
	path := filepath.Join(t.TempDir(), "crash.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, record(t, ports.KeyDailyStreak, 7)))
	require.NoError(t, store.Close())

	store2, err := NewStore(path)
	require.NoError(t, err)
	defer store2.Close()

	rec, err := store2.Get(ctx, ports.KeyDailyStreak)
	require.NoError(t, err)
	assert.JSONEq(t, "7", string(rec[ports.KeyDailyStreak]))
}

// =============================================================================
// Change notification
// =============================================================================

func TestStore_OnChange_OnlyChangedKeys(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set(ctx, record(t, "a", 1, "b", 2)))

	var got [][]ports.Change
	store.OnChange(func(cs []ports.Change) { got = append(got, cs) })

	require.NoError(t, store.Set(ctx, record(t, "a", 1, "b", 3, "c", true)))
	require.Len(t, got, 1, "one notification per Set")
	require.Len(t, got[0], 2)

	assert.Equal(t, "b", got[0][0].Key)
	assert.JSONEq(t, "2", string(got[0][0].Old))
	assert.JSONEq(t, "3", string(got[0][0].New))
	assert.Equal(t, "c", got[0][1].Key)
	assert.Nil(t, got[0][1].Old, "new key has no previous value")

	require.NoError(t, store.Set(ctx, record(t, "a", 1)))
	assert.Len(t, got, 1, "an identical write notifies nobody")
}

func TestStore_Reset(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set(ctx, record(t, ports.KeyUserPoints, 50, ports.KeyDailyStreak, 2)))

	var changes []ports.Change
	store.OnChange(func(cs []ports.Change) { changes = cs })

	require.NoError(t, store.Reset(ctx))
	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, rec)
	assert.Len(t, changes, 2)
	for _, c := range changes {
		assert.Nil(t, c.New)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	store, _ := newTestStore(t)
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	assert.ErrorIs(t, store.Set(cctx, record(t, "a", 1)), context.Canceled)
	_, err := store.Get(cctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ConcurrentReadsAndWrites(t *testing.T) {
	// bbolt supports concurrent readers, single writer.
	store, _ := newTestStore(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			errs <- store.Set(ctx, ports.Record{ports.KeyTabSwitchCount: json.RawMessage([]byte{byte('0' + n)})})
		}(i)
		go func() {
			defer wg.Done()
			_, err := store.Get(ctx, ports.KeyTabSwitchCount)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

// =============================================================================
// Lock contention tests: verify the 1s timeout prevents hangs
// =============================================================================

func TestStore_OpenTimeout_DoesNotHang(t *testing.T) {
	// When another process/goroutine holds the bbolt exclusive lock,
	// a second open should timeout in ~1 second, not hang forever.
	path := filepath.Join(t.TempDir(), "locked.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	defer store1.Close()

	start := time.Now()
	store2, err := NewStore(path)
	elapsed := time.Since(start)

	require.Error(t, err, "second open should fail with lock timeout")
	assert.Nil(t, store2, "store should be nil on timeout")
	assert.Contains(t, err.Error(), "bbolt open")
	assert.Contains(t, err.Error(), "timeout", "error should mention timeout")
	assert.Less(t, elapsed, 3*time.Second, "should complete within 3s, not hang")
}

func TestStore_OpenAfterClose_Succeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "released.db")

	store1, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Set(ctx, record(t, ports.KeyUserPoints, 42)))
	store1.Close()

	store2, err := NewStore(path)
	require.NoError(t, err, "open after close should succeed")
	defer store2.Close()

	rec, err := store2.Get(ctx, ports.KeyUserPoints)
	require.NoError(t, err)
	assert.JSONEq(t, "42", string(rec[ports.KeyUserPoints]))
}
