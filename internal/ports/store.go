// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces, never on concrete implementations.
package ports

import (
	"context"
	"encoding/json"
	"fmt"
)

// Persisted keys. Values are JSON documents; the shapes are owned by the
// packages that read them (stats, points, app).
const (
	KeyTabSwitchCount        = "tabSwitchCount"
	KeyUserPoints            = "userPoints"
	KeySprintActive          = "sprintActive"
	KeyDistractionStats      = "distractionStats"
	KeyLastReset             = "lastReset"
	KeyTotalPenaltyToday     = "totalPenaltyToday"
	KeyLastPenaltyCheck      = "lastPenaltyCheck"
	KeyLastRewardTime        = "lastRewardTime"
	KeyDailyStreak           = "dailyStreak"
	KeyLastProductiveDay     = "lastProductiveDay"
	KeyDistractionStatsTrend = "distractionStatsTrend"
	KeyAIInsights            = "aiInsights"
)

// Store is the persisted key-value store. It has no read-modify-write
// primitive: callers that need one must serialize Get+Set themselves.
//
// Crash safety: a single Set is atomic. Either every key in the record is
// written or none is.
type Store interface {
	// Get returns the stored values for the requested keys. Missing keys are
	// absent from the returned record (not an error).
	Get(ctx context.Context, keys ...string) (Record, error)

	// Set writes every key in rec in one transaction. Listeners registered
	// with OnChange are notified after commit, once per Set, with only the
	// keys whose bytes actually changed.
	Set(ctx context.Context, rec Record) error

	// OnChange registers a listener for committed changes. Listeners are
	// invoked synchronously from the goroutine that called Set.
	OnChange(fn func([]Change))

	// Close releases the underlying database.
	Close() error
}

// Record is a partial view of persisted state: key -> raw JSON value.
type Record map[string]json.RawMessage

// Change describes one key modified by a committed Set.
// Old is nil when the key did not exist before.
type Change struct {
	Key string          `json:"key"`
	Old json.RawMessage `json:"old,omitempty"`
	New json.RawMessage `json:"new,omitempty"`
}

// Decode unmarshals the value stored under key into v.
// Returns false (and leaves v untouched) when the key is absent.
func (r Record) Decode(key string, v any) (bool, error) {
	raw, ok := r[key]
	if !ok || len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Put marshals v and stores it under key.
func (r Record) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	r[key] = b
	return nil
}

// Has reports whether key is present in the record.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}
