package main

import (
	"context"
	"fmt"

	loamAdapter "github.com/aretw0/parley/pkg/adapters/loam"
	"github.com/aretw0/parley/pkg/adapters/yamlfile"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/spf13/cobra"
)

// loadScenario resolves the --file/--dir flags into a scenario config.
//
// Plain tools declared in documents carry no implementation, so the CLI
// binds a simulator stub that echoes its arguments and reports success.
// Transition tools keep the default-handler behavior of the wrapper.
func loadScenario(cmd *cobra.Command) (domain.ScenarioConfig, error) {
	file, _ := cmd.Flags().GetString("file")
	dir, _ := cmd.Flags().GetString("dir")

	if file == "" && dir == "" {
		return domain.ScenarioConfig{}, fmt.Errorf("either --file or --dir is required")
	}
	if file != "" && dir != "" {
		return domain.ScenarioConfig{}, fmt.Errorf("--file and --dir are mutually exclusive")
	}

	if file != "" {
		cfg, err := yamlfile.New(nil).Load(file)
		if err != nil {
			return domain.ScenarioConfig{}, err
		}
		return bindStubs(cfg), nil
	}

	loader, err := loamAdapter.Open(dir, nil)
	if err != nil {
		return domain.ScenarioConfig{}, err
	}
	cfg, err := loader.Load(context.Background())
	if err != nil {
		return domain.ScenarioConfig{}, err
	}
	return bindStubs(cfg), nil
}

func bindStubs(cfg domain.ScenarioConfig) domain.ScenarioConfig {
	reg := registry.New()
	for _, node := range cfg.Nodes {
		for _, def := range node.Functions {
			if pt, ok := def.(domain.PlainTool); ok && pt.Handler == nil {
				reg.Register(pt.Name, stubHandler(pt.Name))
			}
		}
	}
	bound, err := reg.Bind(cfg)
	if err != nil {
		// Bind only fails for plain tools with no registered handler, and we
		// just registered one for each.
		return cfg
	}
	return bound
}

func stubHandler(name string) domain.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		return map[string]any{"status": "success", "tool": name, "args": args}, nil
	}
}
