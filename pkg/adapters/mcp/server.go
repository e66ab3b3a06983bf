// Package mcp exposes a live scenario as an MCP server. Every function the
// scenario declares is registered as an MCP tool; invocation is gated to the
// active node at call time, and a successful handler fires the transition
// through the Host, honoring the collaborator contract.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server wraps a scenario and its Host and exposes them over MCP.
type Server struct {
	scenario  *parley.Scenario
	host      *runner.Host
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance over a started (or startable)
// scenario.
func NewServer(scenario *parley.Scenario, host *runner.Host) *Server {
	s := &Server{
		scenario:  scenario,
		host:      host,
		mcpServer: server.NewMCPServer("parley-mcp", strings.TrimSpace(parley.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// registerTools registers every function declared anywhere in the scenario,
// deduplicated by name. Calls for tools outside the active node fail with a
// gating error instead of executing.
func (s *Server) registerTools() {
	cfg := s.scenario.Config()

	type declared struct {
		description string
		parameters  map[string]any
	}
	seen := make(map[string]declared)
	var names []string

	for _, node := range cfg.Nodes {
		for _, def := range node.Functions {
			name := def.ToolName()
			if _, ok := seen[name]; ok {
				continue
			}
			var d declared
			switch t := def.(type) {
			case domain.PlainTool:
				d = declared{description: t.Description, parameters: t.Parameters}
			case domain.TransitionTool:
				d = declared{description: t.Description, parameters: t.Parameters}
			}
			seen[name] = d
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		d := seen[name]
		tool := s.buildTool(name, d.description, d.parameters)
		s.mcpServer.AddTool(tool, s.handleToolCall(name))
	}

	// TOOL: current_node
	s.mcpServer.AddTool(mcp.NewTool("current_node",
		mcp.WithDescription("Get the scenario's currently active node."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		node, ok := s.scenario.CurrentNode()
		if !ok {
			return mcp.NewToolResultText(`{"current_node": null}`), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf(`{"current_node": %q}`, node)), nil
	})
}

func (s *Server) buildTool(name, description string, parameters map[string]any) mcp.Tool {
	if len(parameters) > 0 {
		if schemaBytes, err := json.Marshal(parameters); err == nil {
			return mcp.NewToolWithRawSchema(name, description, schemaBytes)
		}
	}
	return mcp.NewTool(name, mcp.WithDescription(description))
}

func (s *Server) handleToolCall(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.host.Execute(ctx, name, request.GetArguments())
		if err != nil {
			if errors.Is(err, domain.ErrToolNotActive) {
				node, _ := s.scenario.CurrentNode()
				return mcp.NewToolResultError(fmt.Sprintf("tool %s is not available in node %q", name, node)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("execution failed: %v", err)), nil
		}

		payload, merr := json.Marshal(map[string]any{
			"result":       result,
			"current_node": currentNodeOrNil(s.scenario),
		})
		if merr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("result encoding failed: %v", merr)), nil
		}
		return mcp.NewToolResultText(string(payload)), nil
	}
}

func currentNodeOrNil(sc *parley.Scenario) any {
	if node, ok := sc.CurrentNode(); ok {
		return node
	}
	return nil
}

func (s *Server) registerResources() {
	// EXPOSE: parley://graph
	s.mcpServer.AddResource(mcp.NewResource("parley://graph", "Scenario Graph (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		node, _ := s.scenario.CurrentNode()
		mermaid := graph.GenerateMermaid(s.scenario.Config(), &graph.Overlay{CurrentNode: node})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "parley://graph",
				MIMEType: "text/plain",
				Text:     mermaid,
			},
		}, nil
	})
}
