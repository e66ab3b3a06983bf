// Package registry manages named tool handlers for scenarios loaded from
// declarative sources (YAML files, loam directories), where the document can
// name a function but cannot carry its implementation.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/parley/pkg/domain"
)

// Registry maps tool names to handler implementations.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]domain.Handler
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{
		handlers: make(map[string]domain.Handler),
	}
}

// Register adds a handler to the registry.
// If a handler with the same name exists, it is overwritten.
func (r *Registry) Register(name string, h domain.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Lookup returns the handler registered under name.
func (r *Registry) Lookup(name string) (domain.Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Bind attaches registered handlers to every function of the config, matched
// by tool name. Plain tools must have a handler registered; transition tools
// may go without one (the wrapper substitutes domain.DefaultHandler).
func (r *Registry) Bind(cfg domain.ScenarioConfig) (domain.ScenarioConfig, error) {
	out := cfg.Clone()

	for id, node := range out.Nodes {
		for i, def := range node.Functions {
			switch t := def.(type) {
			case domain.PlainTool:
				h, ok := r.Lookup(t.Name)
				if !ok {
					return domain.ScenarioConfig{}, fmt.Errorf("node %s: no handler registered for tool %q", id, t.Name)
				}
				t.Handler = h
				node.Functions[i] = t
			case domain.TransitionTool:
				if h, ok := r.Lookup(t.Name); ok {
					t.Handler = h
					node.Functions[i] = t
				}
			}
		}
		out.Nodes[id] = node
	}

	return out, nil
}
