// Package checker holds the accessibility rule modules. Every module is
// pure and stateless: it reads an immutable snapshot and returns findings,
// never errors. Malformed markup is a finding, not a failure.
package checker

import (
	"fmt"
	"sort"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// Rule identifies one check a module performs. The inventory is fixed per
// module so passed/total counts stay independent of how many issues a page
// triggers.
type Rule struct {
	ID          string
	Description string
}

// Module evaluates one category of accessibility rules against a snapshot.
type Module interface {
	Category() accessibility.Category
	Weight() float64
	Rules() []Rule
	Evaluate(snap *snapshot.Snapshot) []accessibility.Issue
}

// Registry holds the enabled modules in stable evaluation order.
type Registry struct {
	order   []accessibility.Category
	modules map[accessibility.Category]Module
}

// NewRegistry builds a registry from modules, rejecting duplicates.
func NewRegistry(modules ...Module) (*Registry, error) {
	r := &Registry{
		modules: make(map[accessibility.Category]Module, len(modules)),
	}
	for _, m := range modules {
		cat := m.Category()
		if _, dup := r.modules[cat]; dup {
			return nil, fmt.Errorf("duplicate checker for category %q", cat)
		}
		r.modules[cat] = m
		r.order = append(r.order, cat)
	}
	if len(r.modules) == 0 {
		return nil, fmt.Errorf("registry needs at least one checker")
	}
	return r, nil
}

// DefaultRegistry wires every built-in module.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		NewARIA(),
		NewSemantic(),
		NewImage(),
		NewMedia(),
		NewVisual(),
		NewKeyboard(),
	)
	if err != nil {
		// Built-in modules have unique categories.
		panic(err)
	}
	return r
}

// Modules returns the enabled modules for the given options in registration
// order.
func (r *Registry) Modules(opts accessibility.CheckOptions) []Module {
	out := make([]Module, 0, len(r.order))
	for _, cat := range r.order {
		if opts.Enabled(cat) {
			out = append(out, r.modules[cat])
		}
	}
	return out
}

// Lookup returns the module for a category.
func (r *Registry) Lookup(cat accessibility.Category) (Module, bool) {
	m, ok := r.modules[cat]
	return m, ok
}

// Categories lists registered categories in registration order.
func (r *Registry) Categories() []accessibility.Category {
	return append([]accessibility.Category(nil), r.order...)
}

// Weights returns each registered module's weight keyed by category.
func (r *Registry) Weights() map[accessibility.Category]float64 {
	out := make(map[accessibility.Category]float64, len(r.modules))
	for cat, m := range r.modules {
		out[cat] = m.Weight()
	}
	return out
}

// NormalizedWeights scales the enabled categories' weights to sum to 1 so
// disabling a category never inflates the remaining ones.
func (r *Registry) NormalizedWeights(opts accessibility.CheckOptions) map[accessibility.Category]float64 {
	var sum float64
	enabled := make([]accessibility.Category, 0, len(r.order))
	for _, cat := range r.order {
		if opts.Enabled(cat) {
			enabled = append(enabled, cat)
			sum += r.modules[cat].Weight()
		}
	}
	out := make(map[accessibility.Category]float64, len(enabled))
	if sum == 0 {
		return out
	}
	for _, cat := range enabled {
		out[cat] = r.modules[cat].Weight() / sum
	}
	return out
}

// RuleIDs returns a module's rule identifiers sorted for stable output.
func RuleIDs(m Module) []string {
	rules := m.Rules()
	ids := make([]string, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}
