package parley

import (
	"context"
	"log/slog"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/schema"
)

// Version is the library version, surfaced by the CLI and adapters.
var Version = "0.3.0"

// Scenario is one declarative conversation graph plus the live state machine
// tracking progress through it. Create one per active conversation session;
// it holds no external resources, so releasing the reference is teardown
// enough.
type Scenario struct {
	cfg     domain.ScenarioConfig
	machine *runtime.Machine
}

// Option defines a functional option for configuring a Scenario.
type Option func(*options)

type options struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// WithLogger sets a custom structured logger for the scenario.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// New validates the configuration and builds a scenario around it. Validation
// happens here, eagerly: a structurally unsound graph fails with a
// *schema.SchemaViolation listing every violation, and no partial scenario is
// ever returned. The config is cloned and treated as immutable afterwards.
func New(cfg domain.ScenarioConfig, injector ports.Injector, entry ports.EntryCoordinate, opts ...Option) (*Scenario, error) {
	if err := schema.Validate(cfg); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	owned := cfg.Clone()

	machineOpts := []runtime.MachineOption{}
	if o.logger != nil {
		machineOpts = append(machineOpts, runtime.WithLogger(o.logger))
	}
	machineOpts = append(machineOpts, runtime.WithHooks(o.hooks))

	return &Scenario{
		cfg:     owned,
		machine: runtime.NewMachine(owned, injector, entry, machineOpts...),
	}, nil
}

// Start fires the initial transition into the configured initial node.
// Calling it twice is tolerated: the second call is a silent no-op and never
// delivers a second ContextUpdate.
func (s *Scenario) Start(ctx context.Context) error {
	return s.machine.Start(ctx)
}

// SetNode moves the scenario to nodeID, delivering one ContextUpdate. See
// ports.NodeSetter for the failure contract.
func (s *Scenario) SetNode(ctx context.Context, nodeID string) error {
	return s.machine.SetNode(ctx, nodeID)
}

// Resume positions a fresh scenario at nodeID and re-primes the pipeline
// with that node's context. It is used when rehydrating a session from a
// persisted SessionState; on an already-started scenario it is a no-op.
func (s *Scenario) Resume(ctx context.Context, nodeID string) error {
	return s.machine.Restore(ctx, nodeID)
}

// CurrentNode returns the active node id. ok is false before the first
// Start/SetNode call.
func (s *Scenario) CurrentNode() (id string, ok bool) {
	return s.machine.CurrentNode()
}

// Started reports whether the initial transition has fired.
func (s *Scenario) Started() bool {
	return s.machine.Initialized()
}

// Snapshot captures the persistable position of the scenario.
func (s *Scenario) Snapshot() *domain.SessionState {
	node, _ := s.machine.CurrentNode()
	return &domain.SessionState{
		CurrentNode: node,
		Initialized: s.machine.Initialized(),
	}
}

// Describe renders the scenario graph as a Mermaid flowchart. Once started,
// the active node is highlighted.
func (s *Scenario) Describe() string {
	var overlay *graph.Overlay
	if node, ok := s.machine.CurrentNode(); ok {
		overlay = &graph.Overlay{CurrentNode: node}
	}
	return graph.GenerateMermaid(s.cfg, overlay)
}

// Config returns a defensive copy of the validated configuration.
func (s *Scenario) Config() domain.ScenarioConfig {
	return s.cfg.Clone()
}

var _ ports.NodeSetter = (*Scenario)(nil)
var _ ports.NodeReader = (*Scenario)(nil)
