package main

import (
	"fmt"
	"os"

	"github.com/aretw0/parley/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario document",
	Long:  `Loads the scenario, runs the structural validator, and prints every violation found (unknown fields, missing task messages, unreachable transition targets).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadScenario(cmd)
		if err != nil {
			reportViolations(err)
			os.Exit(1)
		}

		if err := schema.Validate(cfg); err != nil {
			reportViolations(err)
			os.Exit(1)
		}

		fmt.Printf("OK: %d nodes, initial node %q\n", len(cfg.Nodes), cfg.InitialNode)
	},
}

func reportViolations(err error) {
	if violations := schema.Violations(err); violations != nil {
		fmt.Fprintf(os.Stderr, "Scenario is invalid (%d violations):\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
