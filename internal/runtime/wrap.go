package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// transitionCallback moves a scenario to a fixed target node. It is an
// explicit interface value rather than a lexical capture so the one-call,
// no-argument contract stays visible on the runtime tool definition.
type transitionCallback struct {
	setter ports.NodeSetter
	target string
}

func (c *transitionCallback) Invoke(ctx context.Context) error {
	return c.setter.SetNode(ctx, c.target)
}

// Target reports the node this callback moves to. Used for introspection
// and graph rendering; the tool-execution collaborator never needs it.
func (c *transitionCallback) Target() string { return c.target }

// WrapTool converts a tool definition into the runtime shape exposed to the
// tool-execution collaborator.
//
// A plain tool passes through as an isolated copy with no transition
// attached. A transition tool is copied with its target stripped and a
// callback bound to the given setter; a missing handler is replaced with
// domain.DefaultHandler. The input definition is never mutated, and nothing
// is invoked here: running "handler, then on success the callback" is the
// executor's job.
func WrapTool(setter ports.NodeSetter, def domain.ToolDef) domain.RuntimeTool {
	switch t := def.(type) {
	case domain.PlainTool:
		return domain.RuntimeTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  domain.CloneParameters(t.Parameters),
			Handler:     t.Handler,
		}
	case domain.TransitionTool:
		handler := t.Handler
		if handler == nil {
			handler = domain.DefaultHandler
		}
		return domain.RuntimeTool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  domain.CloneParameters(t.Parameters),
			Handler:     handler,
			Transition:  &transitionCallback{setter: setter, target: t.TransitionTo},
		}
	default:
		// The union is sealed; a third variant cannot be constructed outside
		// pkg/domain.
		panic(fmt.Sprintf("runtime: unknown tool variant %T", def))
	}
}

// TransitionTarget reports the destination of a wrapped tool, if it carries
// one produced by WrapTool.
func TransitionTarget(tool domain.RuntimeTool) (string, bool) {
	cb, ok := tool.Transition.(*transitionCallback)
	if !ok {
		return "", false
	}
	return cb.target, true
}
