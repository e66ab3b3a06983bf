package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "parley",
	Short: "Parley is a declarative conversation-flow controller for LLM dialogues",
	Long:  `Parley describes a dialogue as a graph of nodes carrying system messages and tools. The CLI validates scenario documents, renders the graph, and simulates flows interactively.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "", "Scenario YAML document")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Loam directory containing one document per node")
}
