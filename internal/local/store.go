// Package local provides on-device key/value persistence for the clients.
package local

import (
	"context"
	"sync"
)

// KeyPrefix namespaces every key the app writes.
const KeyPrefix = "@RecipeApp"

// Keys written by existing installs. They must not change.
const (
	FavoritesKey = KeyPrefix + ":favorites"
	ThemeKey     = KeyPrefix + ":theme"
)

// Store is a string-keyed string store.
type Store interface {
	// GetString returns the value under key; ok is false when it is absent.
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	// SetString stores value under key.
	SetString(ctx context.Context, key, value string) error
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) GetString(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) SetString(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
