package dsl

import "github.com/aretw0/parley/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.NodeConfig
	builder *Builder
}

// Role appends system role messages (persona/instructions) to the node.
func (n *NodeBuilder) Role(contents ...string) *NodeBuilder {
	for _, c := range contents {
		n.node.RoleMessages = append(n.node.RoleMessages, domain.SystemMessage(c))
	}
	return n
}

// Task appends system task messages to the node.
func (n *NodeBuilder) Task(contents ...string) *NodeBuilder {
	for _, c := range contents {
		n.node.TaskMessages = append(n.node.TaskMessages, domain.SystemMessage(c))
	}
	return n
}

// Handle adds a plain tool with the given handler.
func (n *NodeBuilder) Handle(name, description string, params map[string]any, h domain.Handler) *NodeBuilder {
	n.node.Functions = append(n.node.Functions, domain.PlainTool{
		Name:        name,
		Description: description,
		Parameters:  params,
		Handler:     h,
	})
	return n
}

// Go adds a transition tool with the default handler: invoking it reports
// success and moves the scenario to target.
func (n *NodeBuilder) Go(name, description, target string) *NodeBuilder {
	n.node.Functions = append(n.node.Functions, domain.TransitionTool{
		Name:         name,
		Description:  description,
		TransitionTo: target,
	})
	return n
}

// GoWith adds a transition tool with its own handler; the transition fires
// only after the handler reports success.
func (n *NodeBuilder) GoWith(name, description string, params map[string]any, h domain.Handler, target string) *NodeBuilder {
	n.node.Functions = append(n.node.Functions, domain.TransitionTool{
		Name:         name,
		Description:  description,
		Parameters:   params,
		Handler:      h,
		TransitionTo: target,
	})
	return n
}

// Build returns the underlying domain.NodeConfig.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.NodeConfig {
	return n.node
}
