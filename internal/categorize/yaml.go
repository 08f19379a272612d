package categorize

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a keyword table.
type File struct {
	Categories []Rule `yaml:"categories"`
}

// Parse reads a keyword table from YAML. Document order is table order.
func Parse(data []byte) (*Table, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Categories) == 0 {
		return nil, errors.New("keyword table has no categories")
	}
	seen := make(map[string]bool, len(f.Categories))
	for i, r := range f.Categories {
		if r.Category == "" {
			return nil, fmt.Errorf("category %d: missing name", i)
		}
		if seen[r.Category] {
			return nil, fmt.Errorf("category %q listed twice", r.Category)
		}
		seen[r.Category] = true
	}
	return New(f.Categories), nil
}

// LoadFile reads a keyword table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyword table: %w", err)
	}
	return Parse(data)
}

// Load returns the table at path, or DefaultTable when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	return LoadFile(path)
}
