package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Machine is the scenario state machine. It owns the current-node value for
// one conversation session and, on every node change, builds the outbound
// ContextUpdate and hands it to the pipeline injector.
//
// States are the node ids of the validated config plus "uninitialized".
// There is no terminal state: a scenario may transition indefinitely,
// including revisiting nodes and self-loops.
//
// All mutation happens under one mutex, so a reader of CurrentNode never
// observes a half-completed transition and concurrent SetNode calls are
// serialized in the order the lock admits them.
type Machine struct {
	cfg      domain.ScenarioConfig
	injector ports.Injector
	entry    ports.EntryCoordinate
	logger   *slog.Logger
	hooks    domain.LifecycleHooks

	mu          sync.Mutex
	current     string
	initialized bool
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger sets a structured logger for transition events.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) MachineOption {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// NewMachine creates a machine around an already-validated config. The
// config is treated as immutable from here on; validity is not re-proven on
// the transition path beyond the defensive node-membership check in SetNode.
func NewMachine(cfg domain.ScenarioConfig, injector ports.Injector, entry ports.EntryCoordinate, opts ...MachineOption) *Machine {
	m := &Machine{
		cfg:      cfg,
		injector: injector,
		entry:    entry,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start fires the initial transition. It is idempotent-guarded: a second
// call is a silent no-op and never re-delivers the initial ContextUpdate.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		m.logger.Debug("start ignored: scenario already initialized",
			"current_node", m.current)
		return nil
	}

	m.initialized = true
	return m.setNodeLocked(ctx, m.cfg.InitialNode, true)
}

// SetNode moves the scenario to nodeID and delivers one ContextUpdate for
// it. An id outside the validated graph fails with *domain.InvalidNodeError
// and leaves the current node untouched. A delivery failure propagates to
// the caller unretried; the machine stays on the new node, matching the
// publication order (node update happens before delivery).
func (m *Machine) SetNode(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setNodeLocked(ctx, nodeID, false)
}

// Restore behaves like Start but enters nodeID instead of the initial node.
// It re-primes the pipeline for a session resumed from persisted state; on
// an already-initialized machine it is a no-op.
func (m *Machine) Restore(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	m.initialized = true
	return m.setNodeLocked(ctx, nodeID, false)
}

func (m *Machine) setNodeLocked(ctx context.Context, nodeID string, initial bool) error {
	node, ok := m.cfg.Nodes[nodeID]
	if !ok {
		// Defensive re-check: the validator proved every declared transition
		// target, but this call may come from any code path.
		return &domain.InvalidNodeError{Node: nodeID}
	}

	tools := make([]domain.RuntimeTool, 0, len(node.Functions))
	for _, def := range node.Functions {
		wrapped := WrapTool(m, def)
		tools = append(tools, wrapped)

		if m.hooks.OnToolWrap != nil {
			m.hooks.OnToolWrap(ctx, &domain.ToolWrapEvent{
				Timestamp:    time.Now(),
				Node:         nodeID,
				Tool:         wrapped.Name,
				Transitional: wrapped.Transition != nil,
			})
		}
	}

	messages := make([]domain.Message, 0, len(node.RoleMessages)+len(node.TaskMessages))
	messages = append(messages, node.RoleMessages...)
	messages = append(messages, node.TaskMessages...)

	from := m.current
	m.current = nodeID

	m.logger.Info("scenario transition",
		"from", from,
		"to", nodeID,
		"initial", initial,
		"messages", len(messages),
		"tools", len(tools))

	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(ctx, &domain.TransitionEvent{
			Timestamp: time.Now(),
			From:      from,
			To:        nodeID,
			Initial:   initial,
		})
	}

	update := domain.ContextUpdate{Messages: messages, Tools: tools}
	if err := m.injector.Inject(ctx, m.entry, []domain.ContextUpdate{update}); err != nil {
		return fmt.Errorf("deliver context update for node %s: %w", nodeID, err)
	}

	if m.hooks.OnContextUpdate != nil {
		m.hooks.OnContextUpdate(ctx, &update)
	}

	return nil
}

// CurrentNode returns the active node id. ok is false before the first
// Start/SetNode call.
func (m *Machine) CurrentNode() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != ""
}

// Initialized reports whether Start (or Restore) has fired.
func (m *Machine) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

var _ ports.NodeSetter = (*Machine)(nil)
var _ ports.NodeReader = (*Machine)(nil)
