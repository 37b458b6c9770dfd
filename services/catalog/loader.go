package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a catalog override.
// JSON files parse as well since JSON is a subset of YAML.
type catalogFile struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// LoadFile reads a provider table from path and builds a catalog from it
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(b)
}

// Parse builds a catalog from YAML or JSON bytes
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	if len(file.Providers) == 0 {
		return nil, fmt.Errorf("catalog file declares no providers")
	}
	return NewCatalog(file.Providers)
}
