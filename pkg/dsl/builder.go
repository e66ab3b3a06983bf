package dsl

import (
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/schema"
)

// Builder manages the graph construction.
type Builder struct {
	initial string
	nodes   map[string]*NodeBuilder
}

// New creates a new scenario builder with the given initial node.
func New(initialNode string) *Builder {
	return &Builder{
		initial: initialNode,
		nodes:   make(map[string]*NodeBuilder),
	}
}

// Node creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{builder: b}
	b.nodes[id] = nb
	return nb
}

// Build compiles and validates the scenario configuration.
func (b *Builder) Build() (domain.ScenarioConfig, error) {
	cfg := domain.ScenarioConfig{
		InitialNode: b.initial,
		Nodes:       make(map[string]domain.NodeConfig, len(b.nodes)),
	}
	for id, nb := range b.nodes {
		cfg.Nodes[id] = nb.node
	}

	if err := schema.Validate(cfg); err != nil {
		return domain.ScenarioConfig{}, err
	}
	return cfg, nil
}
