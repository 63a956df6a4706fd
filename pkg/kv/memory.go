package kv

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store with Consul-compatible semantics:
// flat keyspace, raw string prefix matching for Recurse and recursive
// Delete. It backs unit tests and the CLI dry-run mode.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.data[normalize(key)]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrKeyNotFound)
	}
	return value, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[normalize(key)] = value
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, key string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key = normalize(key)
	if !recursive {
		delete(s.data, key)
		return nil
	}
	for k := range s.data {
		if strings.HasPrefix(k, key) {
			delete(s.data, k)
		}
	}
	return nil
}

// Recurse implements Store.
func (s *MemoryStore) Recurse(ctx context.Context, prefix string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix = normalize(prefix)
	subtree := make(map[string]string)
	for k, v := range s.data {
		if strings.HasPrefix(k, prefix) {
			subtree[k] = v
		}
	}
	if len(subtree) == 0 {
		return nil, fmt.Errorf("%s: %w", prefix, ErrKeyNotFound)
	}
	return subtree, nil
}

// Len reports the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
