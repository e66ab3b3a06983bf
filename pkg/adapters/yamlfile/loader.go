// Package yamlfile loads scenario configurations from YAML documents.
//
// The document is parsed into untyped maps and then strict-decoded by
// pkg/schema, so unknown or misspelled fields fail loudly instead of being
// dropped. Handlers are bound afterwards from a registry, since YAML can
// name a function but not implement it.
package yamlfile

import (
	"fmt"
	"os"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Loader reads scenario documents from the filesystem.
type Loader struct {
	// Registry provides handler implementations for the tools the document
	// names. Optional; without it all handlers stay unbound and only
	// transition tools (which default) survive validation.
	Registry *registry.Registry
}

// New creates a loader binding handlers from reg. reg may be nil.
func New(reg *registry.Registry) *Loader {
	return &Loader{Registry: reg}
}

// Load reads, strict-decodes, and handler-binds the scenario at path. The
// result is not yet validated; pass it to parley.New (or schema.Validate)
// before use.
func (l *Loader) Load(path string) (domain.ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ScenarioConfig{}, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return l.Parse(data)
}

// Parse decodes a scenario document from raw YAML bytes.
func (l *Loader) Parse(data []byte) (domain.ScenarioConfig, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.ScenarioConfig{}, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg, err := schema.Decode(normalizeKeys(raw))
	if err != nil {
		return domain.ScenarioConfig{}, err
	}

	if l.Registry != nil {
		cfg, err = l.Registry.Bind(cfg)
		if err != nil {
			return domain.ScenarioConfig{}, err
		}
	}

	return cfg, nil
}

// normalizeKeys converts yaml.v3's map[any]any containers (produced for
// nested mappings in some documents) into map[string]any for mapstructure.
func normalizeKeys(value map[string]any) map[string]any {
	out := make(map[string]any, len(value))
	for k, v := range value {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeKeys(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
