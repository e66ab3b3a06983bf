package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/google/uuid"
)

// Factory builds a fresh scenario wired to the given injector. The manager
// calls it once per created or resumed session.
type Factory func(injector ports.Injector) (*parley.Scenario, error)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store   ports.StateStore
	factory Factory

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks
	live  map[string]*parley.Scenario

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store
// and scenario factory.
func NewManager(store ports.StateStore, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		factory: factory,
		locks:   make(map[string]*lockEntry),
		live:    make(map[string]*parley.Scenario),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create builds a new session: fresh id, fresh scenario bound to injector,
// initial transition fired, snapshot persisted.
func (m *Manager) Create(ctx context.Context, injector ports.Injector) (string, *parley.Scenario, error) {
	sessionID := uuid.NewString()

	var scenario *parley.Scenario
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		scenario, err = m.factory(injector)
		if err != nil {
			return fmt.Errorf("failed to build scenario: %w", err)
		}

		if err := scenario.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scenario: %w", err)
		}

		if err := m.persist(ctx, sessionID, scenario); err != nil {
			return err
		}

		m.mu.Lock()
		m.live[sessionID] = scenario
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	m.logger.Info("session created", "session_id", sessionID)
	return sessionID, scenario, nil
}

// Get returns the live scenario for a session, if this instance holds one.
func (m *Manager) Get(sessionID string) (*parley.Scenario, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.live[sessionID]
	return sc, ok
}

// Resume rehydrates a session from its persisted snapshot. A fresh scenario
// is built against injector and re-primed with the stored node's context, so
// the pipeline downstream of the injector sees that node's messages and
// tools again.
func (m *Manager) Resume(ctx context.Context, sessionID string, injector ports.Injector) (*parley.Scenario, error) {
	var scenario *parley.Scenario
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		scenario, err = m.factory(injector)
		if err != nil {
			return fmt.Errorf("failed to build scenario: %w", err)
		}

		if state.Initialized && state.CurrentNode != "" {
			if err := scenario.Resume(ctx, state.CurrentNode); err != nil {
				return fmt.Errorf("failed to re-enter node %s: %w", state.CurrentNode, err)
			}
		}

		m.mu.Lock()
		m.live[sessionID] = scenario
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("session resumed", "session_id", sessionID)
	return scenario, nil
}

// Save persists the current position of a live session.
func (m *Manager) Save(ctx context.Context, sessionID string, scenario *parley.Scenario) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.persist(ctx, sessionID, scenario)
	})
}

// Delete removes the session from the store and drops the live scenario.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.live, sessionID)
		m.mu.Unlock()
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying state store.
func (m *Manager) Store() ports.StateStore {
	return m.store
}

func (m *Manager) persist(ctx context.Context, sessionID string, scenario *parley.Scenario) error {
	snapshot := scenario.Snapshot()
	snapshot.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, sessionID, snapshot); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
