package schema

import (
	"fmt"
	"sort"
)

// Registry is an immutable lookup of FieldConfigs keyed by data type.
// Build one at startup and pass it to whatever needs it.
type Registry struct {
	configs map[string]FieldConfig
	order   []string
}

// NewRegistry validates and indexes the given configurations.
// Duplicate keys and inconsistent configurations are rejected.
func NewRegistry(cfgs ...FieldConfig) (*Registry, error) {
	r := &Registry{configs: make(map[string]FieldConfig, len(cfgs))}

	for _, c := range cfgs {
		if err := c.validate(); err != nil {
			return nil, err
		}
		if _, exists := r.configs[c.Key]; exists {
			return nil, fmt.Errorf("schema already registered: %s", c.Key)
		}
		r.configs[c.Key] = c.clone()
		r.order = append(r.order, c.Key)
	}

	sort.Strings(r.order)
	return r, nil
}

// MustDefault returns a registry holding the built-in schemas.
// The built-ins are static, so a failure here is a programming error.
func MustDefault() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(fmt.Sprintf("built-in schemas invalid: %v", err))
	}
	return r
}

// Get returns a copy of the configuration for key.
func (r *Registry) Get(key string) (FieldConfig, bool) {
	c, ok := r.configs[key]
	if !ok {
		return FieldConfig{}, false
	}
	return c.clone(), true
}

// Keys returns all registered data types, sorted.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// All returns every configuration sorted by key.
func (r *Registry) All() []FieldConfig {
	out := make([]FieldConfig, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.configs[k].clone())
	}
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	return len(r.configs)
}

// Merge layers overrides on top of base: an override with the same key replaces
// the base entry, new keys are appended.
func Merge(base, overrides []FieldConfig) []FieldConfig {
	idx := make(map[string]int, len(base))
	out := make([]FieldConfig, 0, len(base)+len(overrides))
	for _, c := range base {
		idx[c.Key] = len(out)
		out = append(out, c)
	}
	for _, c := range overrides {
		if i, ok := idx[c.Key]; ok {
			out[i] = c
			continue
		}
		idx[c.Key] = len(out)
		out = append(out, c)
	}
	return out
}
