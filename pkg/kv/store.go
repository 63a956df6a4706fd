// Package kv provides the gateway to the hierarchical key/value store that
// backs the registry. The Store interface is the four-operation contract the
// rest of the system consumes; ConsulStore is the production implementation
// and MemoryStore a self-contained one for tests and dry runs.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a requested key or prefix has no value in
// the backing store. Callers match it with errors.Is.
var ErrKeyNotFound = errors.New("key does not exist")

// Store is the contract between the registry and the key/value backend.
//
// Keys are slash-delimited absolute paths without a leading slash. Values
// are scalar text; the empty string is a legal value (membership leaves).
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key, creating intermediate hierarchy implicitly.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. With recursive set it removes the whole subtree
	// prefixed by key instead.
	Delete(ctx context.Context, key string, recursive bool) error

	// Recurse returns every key under prefix mapped to its value, or
	// ErrKeyNotFound when nothing is stored under prefix.
	Recurse(ctx context.Context, prefix string) (map[string]string, error)
}
