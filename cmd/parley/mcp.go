package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/parley"
	mcpAdapter "github.com/aretw0/parley/pkg/adapters/mcp"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the scenario as an MCP server",
	Long:  `Starts the scenario and serves its tools over the Model Context Protocol. Tools are gated to the active node: invoking a tool from another node fails without executing.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMCP(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("sse-port", 0, "Serve over SSE on this port instead of stdio")
}

func runMCP(cmd *cobra.Command) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	host := runner.NewHost("mcp")
	scenario, err := parley.New(cfg, host, "mcp")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scenario.Start(ctx); err != nil {
		return err
	}

	srv := mcpAdapter.NewServer(scenario, host)

	if port, _ := cmd.Flags().GetInt("sse-port"); port > 0 {
		return srv.ServeSSE(ctx, port)
	}
	return srv.ServeStdio()
}
