package dialog

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process preference store for local/dev use.
type InMemoryStore struct {
	mu    sync.RWMutex
	signs map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{signs: make(map[string]string)}
}

func (s *InMemoryStore) SaveSign(_ context.Context, userID, sign string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signs[userID] = sign
	return nil
}

func (s *InMemoryStore) Sign(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.signs[userID], nil
}

func (s *InMemoryStore) Close() error { return nil }
