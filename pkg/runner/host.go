package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Host folds context updates into a local LLM-request model and executes
// tools against it. It implements ports.Injector for exactly one entry
// coordinate.
//
// Per context update, messages are appended to the running transcript and
// the active tool set is replaced by the update's tools: tools are scoped to
// the node that registered them.
//
// Execute honors the collaborator contract: the handler runs to completion
// first, and the transition callback is invoked exactly once, only on
// handler success.
type Host struct {
	entry  ports.EntryCoordinate
	logger *slog.Logger

	mu       sync.Mutex
	messages []domain.Message
	tools    map[string]domain.RuntimeTool
	order    []string

	// subscribers receive each accepted update, in delivery order.
	subscribers []func(domain.ContextUpdate)
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets a structured logger for the host.
func WithLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// NewHost creates a host accepting updates addressed to entry.
func NewHost(entry ports.EntryCoordinate, opts ...HostOption) *Host {
	h := &Host{
		entry:  entry,
		logger: logging.NewNop(),
		tools:  make(map[string]domain.RuntimeTool),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Inject implements ports.Injector. Updates addressed to a different entry
// coordinate fail with *ports.DeliveryError.
func (h *Host) Inject(ctx context.Context, entry ports.EntryCoordinate, updates []domain.ContextUpdate) error {
	if entry != h.entry {
		return &ports.DeliveryError{
			Entry: entry,
			Err:   fmt.Errorf("host serves entry %q", h.entry),
		}
	}

	h.mu.Lock()
	var fanout []func(domain.ContextUpdate)
	for _, update := range updates {
		h.messages = append(h.messages, update.Messages...)

		h.tools = make(map[string]domain.RuntimeTool, len(update.Tools))
		h.order = h.order[:0]
		for _, tool := range update.Tools {
			h.tools[tool.Name] = tool
			h.order = append(h.order, tool.Name)
		}

		h.logger.Debug("context update accepted",
			"entry", string(entry),
			"messages", len(update.Messages),
			"tools", len(update.Tools))
	}
	fanout = append(fanout, h.subscribers...)
	h.mu.Unlock()

	// Fan out outside the host lock. Subscribers run on the transition path
	// and must not trigger another transition synchronously.
	for _, update := range updates {
		for _, fn := range fanout {
			fn(update)
		}
	}

	return nil
}

// Subscribe registers a callback invoked for every accepted context update.
func (h *Host) Subscribe(fn func(domain.ContextUpdate)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Execute runs the named tool from the active set. The handler result is
// returned as-is. When the tool carries a transition callback, it is invoked
// after, and only after, the handler reports success; a handler failure
// leaves the scenario where it was.
func (h *Host) Execute(ctx context.Context, name string, args map[string]any) (any, error) {
	h.mu.Lock()
	tool, ok := h.tools[name]
	h.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotActive, name)
	}
	if tool.Handler == nil {
		return nil, fmt.Errorf("tool %s has no handler bound", name)
	}

	out, err := tool.Handler(ctx, args)
	if err != nil {
		h.logger.Warn("tool handler failed; transition skipped",
			"tool", name, "err", err)
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	if tool.Transition != nil {
		if err := tool.Transition.Invoke(ctx); err != nil {
			return out, fmt.Errorf("tool %s succeeded but transition failed: %w", name, err)
		}
	}

	return out, nil
}

// Messages returns a copy of the accumulated transcript.
func (h *Host) Messages() []domain.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Message(nil), h.messages...)
}

// Tools returns the active tool set in registration order.
func (h *Host) Tools() []domain.RuntimeTool {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.RuntimeTool, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.tools[name])
	}
	return out
}

// ToolNames returns the names of the active tools in registration order.
func (h *Host) ToolNames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

var _ ports.Injector = (*Host)(nil)
