package schema

import (
	"testing"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawValidScenario() map[string]any {
	return map[string]any{
		"initial_node": "greeting",
		"nodes": map[string]any{
			"greeting": map[string]any{
				"role_messages": []map[string]any{
					{"content": "You are helpful."},
				},
				"task_messages": []map[string]any{
					{"role": "system", "content": "Say hello."},
				},
				"functions": []map[string]any{
					{
						"name":          "go_next",
						"description":   "Move on",
						"transition_to": "farewell",
					},
				},
			},
			"farewell": map[string]any{
				"task_messages": []map[string]any{
					{"content": "Say goodbye."},
				},
				"functions": []map[string]any{},
			},
		},
	}
}

func TestDecodeValidScenario(t *testing.T) {
	cfg, err := Decode(rawValidScenario())
	require.NoError(t, err)

	assert.Equal(t, "greeting", cfg.InitialNode)
	require.Len(t, cfg.Nodes, 2)

	greeting := cfg.Nodes["greeting"]
	require.Len(t, greeting.Functions, 1)

	tt, ok := greeting.Functions[0].(domain.TransitionTool)
	require.True(t, ok, "transition_to key must produce a TransitionTool")
	assert.Equal(t, "go_next", tt.Name)
	assert.Equal(t, "farewell", tt.TransitionTo)
	assert.Nil(t, tt.Handler, "decoded tools carry no handlers")
}

func TestDecodeDefaultsMessageRole(t *testing.T) {
	cfg, err := Decode(rawValidScenario())
	require.NoError(t, err)

	msgs := cfg.Nodes["greeting"].RoleMessages
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
}

func TestDecodePlainToolVariant(t *testing.T) {
	raw := rawValidScenario()
	node := raw["nodes"].(map[string]any)["farewell"].(map[string]any)
	node["functions"] = []map[string]any{
		{"name": "lookup", "description": "Fetch data"},
	}

	cfg, err := Decode(raw)
	require.NoError(t, err)

	fns := cfg.Nodes["farewell"].Functions
	require.Len(t, fns, 1)
	_, ok := fns[0].(domain.PlainTool)
	assert.True(t, ok, "entries without transition_to decode as plain tools")
}

// An empty transition_to still selects the transition variant; the shortfall
// is then reported by Validate, not silently reinterpreted as a plain tool.
func TestDecodeEmptyTransitionTargetKeepsVariant(t *testing.T) {
	raw := rawValidScenario()
	node := raw["nodes"].(map[string]any)["farewell"].(map[string]any)
	node["functions"] = []map[string]any{
		{"name": "jump", "transition_to": ""},
	}

	cfg, err := Decode(raw)
	require.NoError(t, err)

	fns := cfg.Nodes["farewell"].Functions
	require.Len(t, fns, 1)
	tt, ok := fns[0].(domain.TransitionTool)
	require.True(t, ok)
	assert.Empty(t, tt.TransitionTo)
}

// Closed-world policy: a misspelled transition key is an error, never a
// silently-dropped field that downgrades the tool to plain.
func TestDecodeRejectsMisspelledTransitionKey(t *testing.T) {
	raw := rawValidScenario()
	node := raw["nodes"].(map[string]any)["greeting"].(map[string]any)
	node["functions"] = []map[string]any{
		{"name": "go_next", "transitionTo": "farewell"},
	}

	_, err := Decode(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transitionTo")
}

func TestDecodeRejectsUnknownTopLevelKey(t *testing.T) {
	raw := rawValidScenario()
	raw["start_node"] = "greeting"

	_, err := Decode(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_node")
}

func TestDecodeRejectsUnknownNodeKey(t *testing.T) {
	raw := rawValidScenario()
	node := raw["nodes"].(map[string]any)["greeting"].(map[string]any)
	node["taskMessages"] = []map[string]any{{"content": "typo"}}

	_, err := Decode(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskMessages")
}

func TestDecodeFunctionsAbsentVsEmpty(t *testing.T) {
	raw := rawValidScenario()
	node := raw["nodes"].(map[string]any)["farewell"].(map[string]any)
	delete(node, "functions")

	_, err := Decode(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nodes.farewell.functions")
	assert.Contains(t, err.Error(), "required (may be empty)")

	// Explicitly empty is fine.
	node["functions"] = []map[string]any{}
	cfg, err := Decode(raw)
	require.NoError(t, err)
	assert.Empty(t, cfg.Nodes["farewell"].Functions)
}

func TestDecodeNoPartialConfigOnError(t *testing.T) {
	raw := rawValidScenario()
	raw["bogus"] = true

	cfg, err := Decode(raw)
	require.Error(t, err)
	assert.Empty(t, cfg.InitialNode)
	assert.Nil(t, cfg.Nodes)
}
