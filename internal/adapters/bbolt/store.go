// Package bbolt implements the ports.Store interface using bbolt (embedded B+ tree).
// Every persisted key lives in a single "state" bucket as a JSON document.
// Writes are transactional: a crash mid-write cannot corrupt previously
// committed data, and a multi-key Set is all-or-nothing.
package bbolt

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/corey/tabwarden/internal/ports"
	bolt "go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// Store implements ports.Store backed by bbolt.
type Store struct {
	db *bolt.DB

	mu        sync.RWMutex
	listeners []func([]ports.Change)
}

// NewStore opens (or creates) a bbolt database at the given path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the values stored under keys. With no keys, every stored
// key is returned.
func (s *Store) Get(ctx context.Context, keys ...string) (ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rec := make(ports.Record, len(keys))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		if len(keys) == 0 {
			return b.ForEach(func(k, v []byte) error {
				rec[string(k)] = clone(v)
				return nil
			})
		}
		for _, k := range keys {
			// Copy bytes out of the transaction (bbolt slices are only valid within tx)
			if v := b.Get([]byte(k)); v != nil {
				rec[k] = clone(v)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt get: %w", err)
	}
	return rec, nil
}

// Set writes every key in rec in one transaction and notifies listeners of
// the keys whose bytes changed.
func (s *Store) Set(ctx context.Context, rec ports.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k == "" {
			return fmt.Errorf("bbolt set: empty key")
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var changes []ports.Change
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)
		for _, k := range keys {
			v := rec[k]
			old := b.Get([]byte(k))
			if old != nil && bytes.Equal(old, v) {
				continue
			}
			changes = append(changes, ports.Change{Key: k, Old: clone(old), New: clone(v)})
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("bbolt set: %w", err)
	}
	s.notify(changes)
	return nil
}

// Reset deletes every key. Listeners see one change per deleted key with a
// nil New value.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var changes []ports.Change
	err := s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket(bucketState).ForEach(func(k, v []byte) error {
			changes = append(changes, ports.Change{Key: string(k), Old: clone(v)})
			return nil
		})
		if err != nil {
			return err
		}
		if err := tx.DeleteBucket(bucketState); err != nil {
			return err
		}
		_, err = tx.CreateBucket(bucketState)
		return err
	})
	if err != nil {
		return fmt.Errorf("bbolt reset: %w", err)
	}
	s.notify(changes)
	return nil
}

// OnChange registers fn to be called after each committed write.
func (s *Store) OnChange(fn func([]ports.Change)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) notify(changes []ports.Change) {
	if len(changes) == 0 {
		return
	}
	s.mu.RLock()
	ls := slices.Clone(s.listeners)
	s.mu.RUnlock()
	for _, fn := range ls {
		fn(changes)
	}
}

func clone(v []byte) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
