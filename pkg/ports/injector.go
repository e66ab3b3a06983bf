package ports

import (
	"context"
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// EntryCoordinate addresses the point in the message-processing graph where
// context updates enter. It is caller-supplied and fixed for the lifetime of
// a scenario.
type EntryCoordinate string

// Injector is the pipeline capability consumed by the controller. The
// controller calls Inject with exactly one ContextUpdate per transition.
//
// Delivery may be asynchronous behind this interface, but implementations
// must preserve submission order for updates of the same scenario. Failures
// are reported as *DeliveryError; the controller neither retries nor
// swallows them.
type Injector interface {
	Inject(ctx context.Context, entry EntryCoordinate, updates []domain.ContextUpdate) error
}

// DeliveryError reports a failed context-update delivery. It is surfaced
// unchanged to the Start/SetNode caller.
type DeliveryError struct {
	Entry EntryCoordinate
	Err   error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("context update delivery to %q failed: %v", e.Entry, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
