// Package memory provides an in-memory StateStore, suitable for tests and
// single-process deployments.
package memory

import (
	"context"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// Store implements ports.StateStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.SessionState
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.SessionState),
	}
}

// Save persists the state in memory.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Stored by value so the caller can't mutate store state by pointer.
	s.data[sessionID] = *state
	return nil
}

// Load retrieves the state from memory.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	ret := state
	return &ret, nil
}

// Delete removes the state.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns active sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}
