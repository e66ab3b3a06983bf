package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the scenario interactively",
	Long:  `Starts the scenario and plays the tool-execution collaborator: it prints each node's messages, lists the active tools, and lets you invoke one (standing in for the LLM) until you quit.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInteractive(cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("verbose", false, "Log transitions to stderr")
}

func runInteractive(cmd *cobra.Command) error {
	cfg, err := loadScenario(cmd)
	if err != nil {
		return err
	}

	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	render := func(s string) string { return s }
	if isTTY {
		glam := tui.NewRenderer()
		render = func(s string) string {
			out, err := glam(s)
			if err != nil {
				return s
			}
			return out
		}
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	const entry ports.EntryCoordinate = "cli"
	host := runner.NewHost(entry, runner.WithLogger(logging.New(level)))
	host.Subscribe(func(update domain.ContextUpdate) {
		for _, msg := range update.Messages {
			fmt.Print(render(msg.Content))
			fmt.Println()
		}
	})

	scenario, err := parley.New(cfg, host, entry, parley.WithLogger(logging.New(level)))
	if err != nil {
		return err
	}

	if isTTY {
		tui.PrintBanner(strings.TrimSpace(parley.Version))
	}

	ctx := context.Background()
	if err := scenario.Start(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		node, _ := scenario.CurrentNode()
		names := host.ToolNames()

		fmt.Printf("\n[%s] tools: %s\n", node, strings.Join(names, ", "))
		fmt.Print("> ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		name, rawArgs, _ := strings.Cut(line, " ")
		toolArgs := map[string]any{}
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
				fmt.Printf("invalid args (expected JSON object): %v\n", err)
				continue
			}
		}

		result, err := host.Execute(ctx, name, toolArgs)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}

		if out, err := json.Marshal(result); err == nil {
			fmt.Printf("result: %s\n", out)
		}
	}
}
