package schema

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// rawScenario mirrors the wire shape of a scenario document. Functions are
// kept raw because the tool variant is decided per entry.
type rawScenario struct {
	InitialNode string             `mapstructure:"initial_node"`
	Nodes       map[string]rawNode `mapstructure:"nodes"`
}

type rawNode struct {
	RoleMessages []rawMessage      `mapstructure:"role_messages"`
	TaskMessages []rawMessage      `mapstructure:"task_messages"`
	Functions    *[]map[string]any `mapstructure:"functions"`
}

type rawMessage struct {
	Role    string `mapstructure:"role"`
	Content string `mapstructure:"content"`
}

type rawTool struct {
	Name         string         `mapstructure:"name"`
	Description  string         `mapstructure:"description"`
	Parameters   map[string]any `mapstructure:"parameters"`
	TransitionTo string         `mapstructure:"transition_to"`
}

// Decode converts untyped configuration data (e.g. parsed YAML or JSON) into
// a typed scenario config under a closed-world policy: unknown keys at the
// scenario, node, function, and message levels are rejected rather than
// silently dropped. A misspelled "transition_to" therefore fails decoding
// instead of quietly producing a plain tool; no spelling normalization is
// attempted.
//
// Decoded tools carry no handlers; callers bind them afterwards (see
// pkg/registry) and then run Validate.
func Decode(raw map[string]any) (domain.ScenarioConfig, error) {
	var scenario rawScenario
	var errs []error

	errs = append(errs, strictDecode("", raw, &scenario)...)

	cfg := domain.ScenarioConfig{
		InitialNode: scenario.InitialNode,
		Nodes:       make(map[string]domain.NodeConfig, len(scenario.Nodes)),
	}

	for id, rn := range scenario.Nodes {
		path := "nodes." + id

		node := domain.NodeConfig{
			RoleMessages: convertMessages(rn.RoleMessages),
			TaskMessages: convertMessages(rn.TaskMessages),
		}

		if rn.Functions == nil {
			errs = append(errs, &Violation{Path: path + ".functions", Reason: "required (may be empty)"})
		} else {
			node.Functions = make([]domain.ToolDef, 0, len(*rn.Functions))
			for i, rawFn := range *rn.Functions {
				fnPath := fmt.Sprintf("%s.functions[%d]", path, i)
				def, fnErrs := decodeTool(fnPath, rawFn)
				errs = append(errs, fnErrs...)
				if def != nil {
					node.Functions = append(node.Functions, def)
				}
			}
		}

		cfg.Nodes[id] = node
	}

	if len(errs) > 0 {
		return domain.ScenarioConfig{}, &SchemaViolation{Violations: errs}
	}
	return cfg, nil
}

// decodeTool decides the variant by the presence of the transition_to key
// and strict-decodes the entry accordingly.
func decodeTool(path string, raw map[string]any) (domain.ToolDef, []error) {
	var spec rawTool
	if errs := strictDecode(path, raw, &spec); len(errs) > 0 {
		return nil, errs
	}

	if _, isTransition := raw["transition_to"]; isTransition {
		return domain.TransitionTool{
			Name:         spec.Name,
			Description:  spec.Description,
			Parameters:   spec.Parameters,
			TransitionTo: spec.TransitionTo,
		}, nil
	}

	return domain.PlainTool{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters:  spec.Parameters,
	}, nil
}

// strictDecode runs mapstructure with ErrorUnused so caller typos surface as
// violations instead of being silently ignored.
func strictDecode(path string, input any, out any) []error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return []error{&Violation{Path: path, Reason: err.Error()}}
	}

	if err := decoder.Decode(input); err != nil {
		if merr, ok := err.(*mapstructure.Error); ok {
			errs := make([]error, 0, len(merr.Errors))
			for _, msg := range merr.Errors {
				errs = append(errs, &Violation{Path: path, Reason: msg})
			}
			return errs
		}
		return []error{&Violation{Path: path, Reason: err.Error()}}
	}

	return nil
}

func convertMessages(raw []rawMessage) []domain.Message {
	if raw == nil {
		return nil
	}
	out := make([]domain.Message, len(raw))
	for i, m := range raw {
		role := m.Role
		if role == "" {
			role = domain.RoleSystem
		}
		out[i] = domain.Message{Role: role, Content: m.Content}
	}
	return out
}
