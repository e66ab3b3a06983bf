package domain

import "time"

// SessionState is the persistable snapshot of a scenario's position. It
// carries the machine position only; conversation history persistence is an
// external concern.
type SessionState struct {
	// CurrentNode is the identifier of the active node. Empty before the
	// first transition.
	CurrentNode string `json:"current_node"`

	// Initialized records whether Start has fired.
	Initialized bool `json:"initialized"`

	// UpdatedAt is the time of the last persisted transition.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionState creates a snapshot positioned at the given node.
func NewSessionState(node string) *SessionState {
	return &SessionState{
		CurrentNode: node,
		Initialized: true,
		UpdatedAt:   time.Now().UTC(),
	}
}
