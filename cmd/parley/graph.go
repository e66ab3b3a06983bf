package main

import (
	"fmt"
	"os"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Render the scenario as a Mermaid flowchart",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadScenario(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(graph.GenerateMermaid(cfg, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
