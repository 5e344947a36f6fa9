// Package storage defines the local key-value storage the document store is
// persisted to. It mirrors the browser local storage API: string keys, whole
// values, no transactions.
//
// Implementations can be found in subpackages (bbolt, sqlite, file); Memory
// is an in-process implementation.
//
// # Error Types
//
//   - ErrNotFound: the key holds no value.
//   - ErrQuotaExceeded: the value does not fit in the storage quota.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// DefaultQuota is the size browsers grant to local storage.
const DefaultQuota = 5 * 1024 * 1024

// Storage is a key-value storage.
type Storage interface {
	// GetItem returns the value stored under key, or ErrNotFound.
	GetItem(ctx context.Context, key string) ([]byte, error)
	// SetItem replaces the value stored under key.
	SetItem(ctx context.Context, key string, value []byte) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// CheckKey validates a storage key.
func CheckKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("storage key is required")
	}
	return nil
}

// quota limits the size of values written to a Storage.
type quota struct {
	Storage
	limit int
}

// WithQuota returns s rejecting, with ErrQuotaExceeded, any value whose size
// with its key exceeds limit bytes. A non positive limit disables the check.
func WithQuota(s Storage, limit int) Storage {
	if limit <= 0 {
		return s
	}
	return &quota{Storage: s, limit: limit}
}

func (q *quota) SetItem(ctx context.Context, key string, value []byte) error {
	if n := len(key) + len(value); n > q.limit {
		return fmt.Errorf("setting %q (%d bytes, limit %d): %w", key, n, q.limit, ErrQuotaExceeded)
	}
	return q.Storage.SetItem(ctx, key, value)
}
