package domain

import (
	"context"
	"time"
)

// ContextUpdate is the outbound event produced on every transition. It
// instructs the surrounding message pipeline to append Messages and register
// Tools. It is built fresh per transition, handed to the injector, and then
// forgotten by the controller.
type ContextUpdate struct {
	// Messages is the node's role messages followed by its task messages,
	// each list keeping its internal order.
	Messages []Message `json:"messages"`

	// Tools is the node's wrapped function set.
	Tools []RuntimeTool `json:"tools"`
}

// TransitionEvent describes a completed node change.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	// From is empty for the initial transition out of the uninitialized state.
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	// Initial marks the transition fired by Start.
	Initial bool `json:"initial,omitempty"`
}

// ToolWrapEvent describes a tool definition being wrapped for a node.
type ToolWrapEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Node      string    `json:"node"`
	Tool      string    `json:"tool"`
	// Transitional is true when the wrapped tool carries a transition callback.
	Transitional bool `json:"transitional"`
}

// LifecycleHooks defines callbacks for controller observability.
// Hooks are invoked synchronously on the transition path; they layer on top
// of error propagation and never replace it.
type LifecycleHooks struct {
	OnTransition    func(context.Context, *TransitionEvent)
	OnContextUpdate func(context.Context, *ContextUpdate)
	OnToolWrap      func(context.Context, *ToolWrapEvent)
}
