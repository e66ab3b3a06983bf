package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrToolNotActive is returned when a tool is invoked outside the node that
// registered it.
var ErrToolNotActive = errors.New("tool not active in current node")

// InvalidNodeError is returned by SetNode when asked for a node id absent
// from the validated graph. It indicates a programming error in the caller;
// the scenario's state is left untouched.
type InvalidNodeError struct {
	Node string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node: %q is not defined in the scenario", e.Node)
}
