// Package graph renders scenario configurations as Mermaid flowcharts for
// documentation and the `parley graph` command.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// Overlay contains dynamic state data to visualize on the graph.
type Overlay struct {
	CurrentNode string
}

// GenerateMermaid produces a Mermaid flowchart from a scenario config.
// The initial node renders as a ((circle)); every other node as a rectangle.
// Transition edges are labeled with the tool name that fires them; plain
// tools are annotated on the node itself. Nodes are emitted in sorted order
// so output is deterministic.
func GenerateMermaid(cfg domain.ScenarioConfig, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make([]string, 0, len(cfg.Nodes))
	for id := range cfg.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		node := cfg.Nodes[id]
		safeID := sanitizeMermaidID(id)

		opener, closer := "[", "]"
		if id == cfg.InitialNode {
			opener, closer = "((", "))" // Circle
		}

		label := id
		if plain := plainToolNames(node); len(plain) > 0 {
			label = fmt.Sprintf("%s <br/> 🔧 %s", id, strings.Join(plain, ", "))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		for _, def := range node.Functions {
			tt, ok := def.(domain.TransitionTool)
			if !ok {
				continue
			}
			safeTo := sanitizeMermaidID(tt.TransitionTo)
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, tt.Name, safeTo))
		}
	}

	if overlay != nil && overlay.CurrentNode != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
	}

	return sb.String()
}

func plainToolNames(node domain.NodeConfig) []string {
	var names []string
	for _, def := range node.Functions {
		if pt, ok := def.(domain.PlainTool); ok {
			names = append(names, pt.Name)
		}
	}
	return names
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
