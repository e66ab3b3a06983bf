package ports

import (
	"context"

	"github.com/aretw0/parley/pkg/domain"
)

// StateStore defines the interface for persisting session position.
// This allows for durable scenarios, enabling "Stop & Resume" workflows.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.SessionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all known sessions.
	List(ctx context.Context) ([]string, error)
}

// StoreMiddleware allows wrapping a StateStore to add behavior.
type StoreMiddleware func(StateStore) StateStore
