package schema

import (
	"context"
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler(ctx context.Context, args map[string]any) (any, error) {
	return nil, nil
}

func validConfig() domain.ScenarioConfig {
	return domain.ScenarioConfig{
		InitialNode: "greeting",
		Nodes: map[string]domain.NodeConfig{
			"greeting": {
				RoleMessages: []domain.Message{domain.SystemMessage("You are helpful.")},
				TaskMessages: []domain.Message{domain.SystemMessage("Say hello.")},
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "go_next", TransitionTo: "farewell"},
				},
			},
			"farewell": {
				TaskMessages: []domain.Message{domain.SystemMessage("Say goodbye.")},
				Functions:    []domain.ToolDef{},
			},
		},
	}
}

func TestValidateAcceptsSoundConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateAcceptsSelfLoop(t *testing.T) {
	cfg := domain.ScenarioConfig{
		InitialNode: "loop",
		Nodes: map[string]domain.NodeConfig{
			"loop": {
				TaskMessages: []domain.Message{domain.SystemMessage("again")},
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "retry", TransitionTo: "loop"},
				},
			},
		},
	}
	assert.NoError(t, Validate(cfg))
}

func TestValidateMissingInitialNode(t *testing.T) {
	cfg := validConfig()
	cfg.InitialNode = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_node: required")
}

func TestValidateUnknownInitialNode(t *testing.T) {
	cfg := validConfig()
	cfg.InitialNode = "Z"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Z" is not defined in nodes`)
}

func TestValidateUnreachableTransitionTarget(t *testing.T) {
	cfg := validConfig()
	node := cfg.Nodes["farewell"]
	node.Functions = []domain.ToolDef{
		domain.TransitionTool{Name: "jump", TransitionTo: "Q"},
	}
	cfg.Nodes["farewell"] = node

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable node: Q")
	assert.Contains(t, err.Error(), "nodes.farewell.functions[0]")
}

func TestValidateEmptyNodes(t *testing.T) {
	err := Validate(domain.ScenarioConfig{InitialNode: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must define at least one node")
}

func TestValidateMissingTaskMessages(t *testing.T) {
	cfg := validConfig()
	node := cfg.Nodes["greeting"]
	node.TaskMessages = nil
	cfg.Nodes["greeting"] = node

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes.greeting.task_messages: required")
}

func TestValidatePlainToolNeedsHandler(t *testing.T) {
	cfg := validConfig()
	node := cfg.Nodes["farewell"]
	node.Functions = []domain.ToolDef{
		domain.PlainTool{Name: "lookup"},
	}
	cfg.Nodes["farewell"] = node

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required for a plain tool")
}

func TestValidateTransitionToolNeedsTarget(t *testing.T) {
	cfg := validConfig()
	node := cfg.Nodes["farewell"]
	node.Functions = []domain.ToolDef{
		domain.TransitionTool{Name: "jump"},
	}
	cfg.Nodes["farewell"] = node

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required for a transition tool")
}

// Every violation is reported together, not just the first one found.
func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := domain.ScenarioConfig{
		InitialNode: "missing",
		Nodes: map[string]domain.NodeConfig{
			"a": {
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "jump", TransitionTo: "nowhere"},
				},
			},
		},
	}

	err := Validate(cfg)
	require.Error(t, err)

	violations := Violations(err)
	// task_messages missing, initial node unknown, transition target unknown.
	assert.Len(t, violations, 3)
}

func TestValidateToolNameRequired(t *testing.T) {
	cfg := validConfig()
	node := cfg.Nodes["farewell"]
	node.Functions = []domain.ToolDef{
		domain.PlainTool{Handler: noopHandler},
	}
	cfg.Nodes["farewell"] = node

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes.farewell.functions[0].name: required")
}

func TestViolationsOnForeignError(t *testing.T) {
	assert.Nil(t, Violations(assert.AnError))
}
