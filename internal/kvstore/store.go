// Package kvstore is the key-value persistence layer. Every domain document
// is stored as a JSON value under a string key, and every entry carries a
// version that starts at 1 and increases by one on each write.
package kvstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("kvstore: key not found")
	ErrVersionMismatch = errors.New("kvstore: version mismatch")
)

// Entry is a stored value with its version
type Entry struct {
	Key       string
	Value     []byte
	Version   int64
	UpdatedAt time.Time
}

// Store is implemented by the in-memory and SQL adapters
type Store interface {
	// Get returns ErrNotFound if key is absent
	Get(ctx context.Context, key string) (Entry, error)

	// Set writes value unconditionally and returns the new version
	Set(ctx context.Context, key string, value []byte) (int64, error)

	// SetIfAbsent inserts value only if key does not exist. It returns the
	// entry now stored under key and whether this call inserted it.
	SetIfAbsent(ctx context.Context, key string, value []byte) (Entry, bool, error)

	// CompareAndSwap writes value only if the stored version equals version.
	// It returns ErrNotFound if key is absent and ErrVersionMismatch if the
	// version moved.
	CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error)

	// GetByPrefix returns all entries whose key starts with prefix, ordered by key
	GetByPrefix(ctx context.Context, prefix string) ([]Entry, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Name identifies the backend in health output
	Name() string
}
