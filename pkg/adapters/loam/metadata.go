package loam

// NodeMetadata is the frontmatter header of a scenario node document.
// It uses "mapstructure" tags to match standard frontmatter/YAML keys.
type NodeMetadata struct {
	ID string `json:"id" mapstructure:"id"`

	// Initial marks the scenario's entry node. Exactly one document should
	// set it.
	Initial bool `json:"initial" mapstructure:"initial"`

	// RoleMessages carry persona/instruction content, usually only on the
	// initial node.
	RoleMessages []string `json:"role_messages" mapstructure:"role_messages"`

	// Functions declares the node's tools. The transition variant is
	// recognized by a non-empty transition_to.
	Functions []FunctionMetadata `json:"functions" mapstructure:"functions"`
}

// FunctionMetadata is one tool declaration in a node document.
type FunctionMetadata struct {
	Name         string         `json:"name" mapstructure:"name"`
	Description  string         `json:"description" mapstructure:"description"`
	Parameters   map[string]any `json:"parameters" mapstructure:"parameters"`
	TransitionTo string         `json:"transition_to" mapstructure:"transition_to"`
}
