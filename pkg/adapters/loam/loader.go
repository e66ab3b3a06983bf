// Package loam loads a scenario from a Loam document repository: one
// markdown file per node, frontmatter for tool declarations, and the
// document body as the node's task message.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
)

// Loader adapts a Loam repository to a scenario source.
type Loader struct {
	Repo     *loam.TypedRepository[NodeMetadata]
	Registry *registry.Registry
}

// New creates a loader over an existing typed repository. reg may be nil.
func New(repo *loam.TypedRepository[NodeMetadata], reg *registry.Registry) *Loader {
	return &Loader{Repo: repo, Registry: reg}
}

// Open initializes a Loam repository at path and returns a loader over it.
// The repository is opened read-only: the controller never modifies the
// graph, only reads it.
func Open(path string, reg *registry.Registry) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}

	return New(loam.NewTypedRepository[NodeMetadata](repo), reg), nil
}

// Load assembles a scenario config from every document in the repository.
// Each document becomes one node: frontmatter declares the functions, the
// body becomes the task message. The result is not yet validated; pass it to
// parley.New before use.
func (l *Loader) Load(ctx context.Context) (domain.ScenarioConfig, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return domain.ScenarioConfig{}, fmt.Errorf("loam list failed: %w", err)
	}

	cfg := domain.ScenarioConfig{
		Nodes: make(map[string]domain.NodeConfig, len(docs)),
	}

	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if _, exists := cfg.Nodes[id]; exists {
			return domain.ScenarioConfig{}, fmt.Errorf("duplicate node id %q (document %s)", id, doc.ID)
		}

		node, err := l.buildNode(doc.Data, doc.Content)
		if err != nil {
			return domain.ScenarioConfig{}, fmt.Errorf("node %s: %w", id, err)
		}
		cfg.Nodes[id] = node

		if doc.Data.Initial {
			if cfg.InitialNode != "" {
				return domain.ScenarioConfig{}, fmt.Errorf("multiple initial nodes: %s and %s", cfg.InitialNode, id)
			}
			cfg.InitialNode = id
		}
	}

	if l.Registry != nil {
		cfg, err = l.Registry.Bind(cfg)
		if err != nil {
			return domain.ScenarioConfig{}, err
		}
	}

	return cfg, nil
}

func (l *Loader) buildNode(meta NodeMetadata, content string) (domain.NodeConfig, error) {
	node := domain.NodeConfig{
		Functions: make([]domain.ToolDef, 0, len(meta.Functions)),
	}

	for _, roleContent := range meta.RoleMessages {
		node.RoleMessages = append(node.RoleMessages, domain.SystemMessage(roleContent))
	}

	task := strings.TrimSpace(content)
	if task != "" {
		node.TaskMessages = []domain.Message{domain.SystemMessage(task)}
	}

	for _, fn := range meta.Functions {
		if fn.TransitionTo != "" {
			node.Functions = append(node.Functions, domain.TransitionTool{
				Name:         fn.Name,
				Description:  fn.Description,
				Parameters:   fn.Parameters,
				TransitionTo: fn.TransitionTo,
			})
			continue
		}
		node.Functions = append(node.Functions, domain.PlainTool{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		})
	}

	return node, nil
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, filepath.Ext(id))
}
