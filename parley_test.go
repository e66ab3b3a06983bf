package parley_test

import (
	"context"
	"testing"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/aretw0/parley/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func greetingConfig() domain.ScenarioConfig {
	return domain.ScenarioConfig{
		InitialNode: "greeting",
		Nodes: map[string]domain.NodeConfig{
			"greeting": {
				RoleMessages: []domain.Message{domain.SystemMessage("You are helpful.")},
				TaskMessages: []domain.Message{domain.SystemMessage("Say hello.")},
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "go", TransitionTo: "farewell"},
				},
			},
			"farewell": {
				TaskMessages: []domain.Message{domain.SystemMessage("Say goodbye.")},
				Functions:    []domain.ToolDef{},
			},
		},
	}
}

func TestScenarioLifecycle(t *testing.T) {
	host := runner.NewHost("test")
	scenario, err := parley.New(greetingConfig(), host, "test")
	require.NoError(t, err)

	ctx := context.Background()

	_, ok := scenario.CurrentNode()
	assert.False(t, ok, "no node is active before Start")
	assert.False(t, scenario.Started())

	require.NoError(t, scenario.Start(ctx))

	node, ok := scenario.CurrentNode()
	assert.True(t, ok)
	assert.Equal(t, "greeting", node)
	assert.True(t, scenario.Started())

	msgs := host.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "You are helpful.", msgs[0].Content)
	assert.Equal(t, "Say hello.", msgs[1].Content)
	assert.Equal(t, []string{"go"}, host.ToolNames())
}

func TestScenarioTransitionViaTool(t *testing.T) {
	host := runner.NewHost("test")
	scenario, err := parley.New(greetingConfig(), host, "test")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, scenario.Start(ctx))

	out, err := host.Execute(ctx, "go", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "success"}, out)

	node, _ := scenario.CurrentNode()
	assert.Equal(t, "farewell", node)

	msgs := host.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "Say goodbye.", msgs[2].Content)
	assert.Empty(t, host.ToolNames(), "the farewell node registers no tools")
}

func TestNewRejectsUnknownInitialNode(t *testing.T) {
	cfg := greetingConfig()
	cfg.InitialNode = "Z"

	_, err := parley.New(cfg, runner.NewHost("test"), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Z" is not defined in nodes`)
	assert.NotEmpty(t, schema.Violations(err))
}

func TestNewRejectsUnreachableTarget(t *testing.T) {
	cfg := greetingConfig()
	node := cfg.Nodes["farewell"]
	node.Functions = []domain.ToolDef{
		domain.TransitionTool{Name: "jump", TransitionTo: "Q"},
	}
	cfg.Nodes["farewell"] = node

	_, err := parley.New(cfg, runner.NewHost("test"), "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable node: Q")
}

func TestStartTwiceDeliversOnce(t *testing.T) {
	host := runner.NewHost("test")
	scenario, err := parley.New(greetingConfig(), host, "test")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, scenario.Start(ctx))
	require.NoError(t, scenario.Start(ctx))

	assert.Len(t, host.Messages(), 2, "the initial update must not be re-delivered")
}

// The config handed to New stays caller-owned: later mutation must not leak
// into the running scenario.
func TestNewClonesConfig(t *testing.T) {
	cfg := greetingConfig()
	host := runner.NewHost("test")
	scenario, err := parley.New(cfg, host, "test")
	require.NoError(t, err)

	delete(cfg.Nodes, "farewell")

	ctx := context.Background()
	require.NoError(t, scenario.Start(ctx))
	require.NoError(t, scenario.SetNode(ctx, "farewell"))
}

func TestSnapshotAndResume(t *testing.T) {
	host := runner.NewHost("test")
	scenario, err := parley.New(greetingConfig(), host, "test")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, scenario.Start(ctx))
	require.NoError(t, scenario.SetNode(ctx, "farewell"))

	snap := scenario.Snapshot()
	assert.Equal(t, "farewell", snap.CurrentNode)
	assert.True(t, snap.Initialized)

	// A fresh scenario resumed from the snapshot re-primes its own pipeline.
	host2 := runner.NewHost("test")
	resumed, err := parley.New(greetingConfig(), host2, "test")
	require.NoError(t, err)
	require.NoError(t, resumed.Resume(ctx, snap.CurrentNode))

	node, _ := resumed.CurrentNode()
	assert.Equal(t, "farewell", node)

	msgs := host2.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Say goodbye.", msgs[0].Content)
}

func TestDescribeHighlightsCurrentNode(t *testing.T) {
	host := runner.NewHost("test")
	scenario, err := parley.New(greetingConfig(), host, "test")
	require.NoError(t, err)

	out := scenario.Describe()
	assert.Contains(t, out, "graph TD")
	assert.NotContains(t, out, "classDef current", "nothing to highlight before Start")

	require.NoError(t, scenario.Start(context.Background()))
	assert.Contains(t, scenario.Describe(), "class greeting current;")
}

func TestConfigReturnsDefensiveCopy(t *testing.T) {
	scenario, err := parley.New(greetingConfig(), runner.NewHost("test"), "test")
	require.NoError(t, err)

	cfg := scenario.Config()
	delete(cfg.Nodes, "farewell")

	assert.Len(t, scenario.Config().Nodes, 2)
}
