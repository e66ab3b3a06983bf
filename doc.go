/*
Package parley is a declarative conversation-flow controller for LLM-driven dialogues.

Parley describes a dialogue as a directed graph of named nodes, each carrying
system messages and a set of callable tools, some of which trigger a
transition to another node. The controller validates the graph for structural
soundness, tracks the single currently-active node, and on every transition
emits a context update instructing the surrounding message pipeline to append
the new node's messages and register its tools.

The controller never executes tools and never talks to an LLM provider. The
host application ("Host") owns I/O and tool execution; this Hexagonal
Architecture allows Parley to be embedded in any interface: CLI, HTTP server,
or agent infrastructure.

# Quick Start

	cfg := domain.ScenarioConfig{
		InitialNode: "greeting",
		Nodes: map[string]domain.NodeConfig{
			"greeting": {
				RoleMessages: []domain.Message{domain.SystemMessage("You are a friendly barista.")},
				TaskMessages: []domain.Message{domain.SystemMessage("Greet the customer and take their order.")},
				Functions: []domain.ToolDef{
					domain.TransitionTool{Name: "order_taken", TransitionTo: "farewell"},
				},
			},
			"farewell": {
				TaskMessages: []domain.Message{domain.SystemMessage("Thank the customer and say goodbye.")},
				Functions:    []domain.ToolDef{},
			},
		},
	}

	host := runner.NewHost("llm-context")
	scenario, err := parley.New(cfg, host, "llm-context")
	if err != nil {
		// *schema.SchemaViolation listing every structural problem
	}
	_ = scenario.Start(ctx)
*/
package parley
