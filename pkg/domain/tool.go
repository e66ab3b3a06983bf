package domain

import (
	"context"
	"maps"
)

// Handler is the signature for a tool implementation.
// It receives a context and a map of arguments, and returns a result or error.
// Execution is owned by the host/executor collaborator, never by this core.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// DefaultHandler is substituted at wrap time for transition tools that declare
// no handler of their own. It accepts any arguments and reports unconditional
// success without side effects.
func DefaultHandler(ctx context.Context, args map[string]any) (any, error) {
	return map[string]any{"status": "success"}, nil
}

// ToolDef is the sealed union of the two tool variants a node may declare.
// Only PlainTool and TransitionTool implement it; the transition wrapper
// handles both exhaustively.
type ToolDef interface {
	// ToolName returns the function name exposed to the LLM runtime.
	ToolName() string

	sealed()
}

// PlainTool is a tool with a handler and no state effect.
type PlainTool struct {
	Name        string
	Description string
	// Parameters holds the JSON-schema for the tool arguments.
	// Treated as an opaque, pre-validated leaf shape.
	Parameters map[string]any
	Handler    Handler
}

func (t PlainTool) ToolName() string { return t.Name }
func (PlainTool) sealed()            {}

// TransitionTool is a tool whose successful execution moves the scenario to
// TransitionTo. Handler is optional; DefaultHandler is substituted at wrap time.
type TransitionTool struct {
	Name         string
	Description  string
	Parameters   map[string]any
	Handler      Handler
	TransitionTo string
}

func (t TransitionTool) ToolName() string { return t.Name }
func (TransitionTool) sealed()            {}

// TransitionCallback moves the owning scenario to a fixed target node.
//
// Contract for the tool-execution collaborator: invoke exactly once, after
// and only after the tool's handler reports success. Never invoke it when the
// handler fails, and never invoke a handler concurrently with a pending
// transition on the same scenario.
type TransitionCallback interface {
	Invoke(ctx context.Context) error
}

// RuntimeTool is the outward-facing tool shape handed to the tool-execution
// collaborator after wrapping. The transition target is never exposed
// directly; a transition-capable tool carries it only inside Transition.
type RuntimeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Handler     Handler        `json:"-"`

	// Transition is nil for plain tools.
	Transition TransitionCallback `json:"-"`
}

// CloneParameters returns an isolated shallow copy of a parameters schema.
func CloneParameters(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	return maps.Clone(params)
}
