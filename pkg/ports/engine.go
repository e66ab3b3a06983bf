package ports

import "context"

// NodeSetter is the capability a transition callback is bound to. The
// scenario state machine implements it; the transition wrapper captures it
// together with a target node id.
type NodeSetter interface {
	// SetNode moves the scenario to nodeID. It fails with
	// *domain.InvalidNodeError for ids outside the validated graph.
	SetNode(ctx context.Context, nodeID string) error
}

// NodeReader exposes the externally observable state of a scenario.
type NodeReader interface {
	// CurrentNode returns the active node id. ok is false before the first
	// Start/SetNode call.
	CurrentNode() (id string, ok bool)
}
