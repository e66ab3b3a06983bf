package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/parley/pkg/domain"
)

// Validate checks a scenario configuration against the structural rules of
// the conversation graph. It collects every violation and returns them
// together as a *SchemaViolation, in rule order:
//
//  1. Shape conformance (initial node present, node map non-empty, task
//     messages required, well-formed tool variants).
//  2. The initial node must be a key of the node map.
//  3. Every transition target must be a key of the node map ("unreachable
//     node: X", naming the offender).
//
// A nil return means the config satisfies every invariant; callers may treat
// it as immutable and never re-validate.
func Validate(cfg domain.ScenarioConfig) error {
	var errs []error

	// 1. Shape conformance
	if cfg.InitialNode == "" {
		errs = append(errs, &Violation{Path: "initial_node", Reason: "required"})
	}
	if len(cfg.Nodes) == 0 {
		errs = append(errs, &Violation{Path: "nodes", Reason: "must define at least one node"})
	}

	for _, id := range sortedNodeIDs(cfg.Nodes) {
		node := cfg.Nodes[id]
		path := "nodes." + id

		if len(node.TaskMessages) == 0 {
			errs = append(errs, &Violation{Path: path + ".task_messages", Reason: "required"})
		}

		for i, def := range node.Functions {
			fnPath := fmt.Sprintf("%s.functions[%d]", path, i)
			errs = append(errs, validateTool(fnPath, def)...)
		}
	}

	// 2. Initial-node membership
	if cfg.InitialNode != "" && len(cfg.Nodes) > 0 {
		if _, ok := cfg.Nodes[cfg.InitialNode]; !ok {
			errs = append(errs, &Violation{
				Path:   "initial_node",
				Reason: fmt.Sprintf("%q is not defined in nodes", cfg.InitialNode),
			})
		}
	}

	// 3. Transition-target membership
	for _, id := range sortedNodeIDs(cfg.Nodes) {
		node := cfg.Nodes[id]
		for i, def := range node.Functions {
			tt, ok := def.(domain.TransitionTool)
			if !ok || tt.TransitionTo == "" {
				continue
			}
			if _, defined := cfg.Nodes[tt.TransitionTo]; !defined {
				errs = append(errs, &Violation{
					Path:   fmt.Sprintf("nodes.%s.functions[%d]", id, i),
					Reason: fmt.Sprintf("unreachable node: %s", tt.TransitionTo),
				})
			}
		}
	}

	if len(errs) > 0 {
		return &SchemaViolation{Violations: errs}
	}
	return nil
}

func validateTool(path string, def domain.ToolDef) []error {
	var errs []error

	switch t := def.(type) {
	case domain.PlainTool:
		if t.Name == "" {
			errs = append(errs, &Violation{Path: path + ".name", Reason: "required"})
		}
		if t.Handler == nil {
			errs = append(errs, &Violation{Path: path + ".handler", Reason: "required for a plain tool"})
		}
	case domain.TransitionTool:
		if t.Name == "" {
			errs = append(errs, &Violation{Path: path + ".name", Reason: "required"})
		}
		if t.TransitionTo == "" {
			errs = append(errs, &Violation{Path: path + ".transition_to", Reason: "required for a transition tool"})
		}
	case nil:
		errs = append(errs, &Violation{Path: path, Reason: "tool definition is nil"})
	default:
		errs = append(errs, &Violation{Path: path, Reason: fmt.Sprintf("unknown tool variant %T", def)})
	}

	return errs
}

func sortedNodeIDs(nodes map[string]domain.NodeConfig) []string {
	ids := make([]string, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
