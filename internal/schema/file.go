package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a schema file:
//
//	schemas:
//	  - key: inventory
//	    label: Inventory counts
//	    required: [sku, quantity]
//	    optional: [note]
//	    types:
//	      quantity: number
type File struct {
	Schemas []FieldConfig `yaml:"schemas"`
}

// LoadFile reads and parses a YAML schema file from the given path.
func LoadFile(path string) ([]FieldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file %s: %w", path, err)
	}

	cfgs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema file %s: %w", path, err)
	}
	return cfgs, nil
}

// Parse decodes YAML schema definitions and validates each entry.
func Parse(data []byte) ([]FieldConfig, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse schema YAML: %w", err)
	}

	for i := range f.Schemas {
		c := &f.Schemas[i]
		if c.Optional == nil {
			c.Optional = []string{}
		}
		if c.Types == nil {
			c.Types = map[string]FieldType{}
		}
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return f.Schemas, nil
}

// Load builds the registry used at runtime: the built-ins, overlaid with the
// schemas in path when path is non-empty.
func Load(path string) (*Registry, error) {
	cfgs := Defaults()
	if path != "" {
		extra, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfgs = Merge(cfgs, extra)
	}
	return NewRegistry(cfgs...)
}
