package credentials

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.Mutex
	bundle *Bundle
}

// NewMemoryStore creates a store, optionally seeded with a bundle.
func NewMemoryStore(seed ...Bundle) *MemoryStore {
	s := &MemoryStore{}
	if len(seed) > 0 {
		b := seed[0].Clone()
		s.bundle = &b
	}
	return s
}

// Load returns a copy of the stored bundle
func (s *MemoryStore) Load(context.Context) (Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bundle == nil {
		return Bundle{}, ErrNotFound
	}
	return s.bundle.Clone(), nil
}

// Save replaces the stored bundle
func (s *MemoryStore) Save(_ context.Context, b Bundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := b.Clone()
	s.bundle = &c
	return nil
}

// Delete clears the stored bundle
func (s *MemoryStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundle = nil
	return nil
}
