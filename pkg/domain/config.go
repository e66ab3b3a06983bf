package domain

// RoleSystem is the role carried by every message a scenario emits.
// Leaf message shapes are assumed pre-validated by the surrounding pipeline;
// the controller only orders and forwards them.
const RoleSystem = "system"

// Message is a single system-role message attached to a node.
type Message struct {
	Role    string `json:"role" yaml:"role" mapstructure:"role"`
	Content string `json:"content" yaml:"content" mapstructure:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NodeConfig is one state of the conversation.
type NodeConfig struct {
	// RoleMessages establish persona/instructions. Optional; typically only
	// meaningful on the first node visited.
	RoleMessages []Message `json:"role_messages,omitempty" yaml:"role_messages,omitempty" mapstructure:"role_messages"`

	// TaskMessages describe the immediate task for this node. Required.
	TaskMessages []Message `json:"task_messages" yaml:"task_messages" mapstructure:"task_messages"`

	// Functions are the tools callable while this node is active.
	// Required, may be empty.
	Functions []ToolDef `json:"functions" yaml:"functions" mapstructure:"-"`
}

// ScenarioConfig is the full declarative conversation graph.
//
// Invariants (checked once, at construction, by pkg/schema):
//   - InitialNode must be a key of Nodes.
//   - Every TransitionTo target appearing in any node's functions must be a key of Nodes.
//
// A validated config is treated as immutable for the lifetime of the state
// machine built from it.
type ScenarioConfig struct {
	InitialNode string                `json:"initial_node" yaml:"initial_node" mapstructure:"initial_node"`
	Nodes       map[string]NodeConfig `json:"nodes" yaml:"nodes" mapstructure:"-"`
}

// Clone returns a deep copy of the config (handlers are shared by reference).
func (c ScenarioConfig) Clone() ScenarioConfig {
	out := ScenarioConfig{
		InitialNode: c.InitialNode,
		Nodes:       make(map[string]NodeConfig, len(c.Nodes)),
	}
	for id, node := range c.Nodes {
		out.Nodes[id] = node.clone()
	}
	return out
}

func (n NodeConfig) clone() NodeConfig {
	out := NodeConfig{}
	if n.RoleMessages != nil {
		out.RoleMessages = append([]Message(nil), n.RoleMessages...)
	}
	if n.TaskMessages != nil {
		out.TaskMessages = append([]Message(nil), n.TaskMessages...)
	}
	if n.Functions != nil {
		out.Functions = make([]ToolDef, len(n.Functions))
		copy(out.Functions, n.Functions)
	}
	return out
}
