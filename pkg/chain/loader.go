package chain

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type fileDocument struct {
	Default int64   `yaml:"default"`
	Chains  []Chain `yaml:"chains"`
}

// LoadFile reads chain descriptors from a YAML file and merges them over the
// built-in defaults. Entries with an existing id replace the default.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chain: read %s: %w", path, err)
	}
	return Load(data, path)
}

// Load parses YAML descriptors (see LoadFile). source is only used in error
// messages.
func Load(data []byte, source string) (*Registry, error) {
	registry := NewDefaultRegistry()
	if len(strings.TrimSpace(string(data))) == 0 {
		return registry, nil
	}

	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("chain: parse %s: %w", source, err)
	}

	for _, c := range doc.Chains {
		if c.Multicall.Address == "" {
			c.Multicall.Address = Multicall3Address
		}
		if err := registry.Put(c); err != nil {
			return nil, fmt.Errorf("chain: %s: %w", source, err)
		}
	}
	if doc.Default != 0 {
		if err := registry.SetDefault(doc.Default); err != nil {
			return nil, fmt.Errorf("chain: %s: %w", source, err)
		}
	}
	return registry, nil
}
