package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]string // sessionID -> cartID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cartID, ok := s.carts[sessionID]
	if !ok {
		return "", ErrNotFound
	}
	return cartID, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = cartID
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
