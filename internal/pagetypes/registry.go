// Package pagetypes holds the static page type hierarchy of the site tree.
//
// The table is built once at startup from YAML and answers subtype, versioning
// and excluded_children lookups by type name. excluded_children can be
// overridden per type at runtime.
package pagetypes

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"sitetree/internal/domain/models/sitetree"

	"gopkg.in/yaml.v3"
)

//go:embed config/pagetypes.yaml
var defaultConfig []byte

// file is the on-disk layout of a page type table
type file struct {
	PageTypes []sitetree.PageType `yaml:"page_types"`
}

// Registry is the page type table. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	types     map[string]*sitetree.PageType
	order     []string            // declaration order
	subtypes  map[string][]string // direct subtypes, declaration order
	overrides map[string][]string // runtime excluded_children, keyed by type name
}

// NewRegistry loads the embedded default page type table
func NewRegistry() (*Registry, error) {
	return Parse(defaultConfig)
}

// LoadFile loads a page type table from a YAML file
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse builds a registry from YAML bytes
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal page types: %w", err)
	}
	return New(f.PageTypes)
}

// New builds a registry from a list of page types, validating the hierarchy
func New(types []sitetree.PageType) (*Registry, error) {
	if err := validateTable(types); err != nil {
		return nil, err
	}

	r := &Registry{
		types:     make(map[string]*sitetree.PageType, len(types)),
		order:     make([]string, 0, len(types)),
		subtypes:  make(map[string][]string),
		overrides: make(map[string][]string),
	}

	for i := range types {
		pt := types[i]
		pt.ExcludedChildren = slices.Clone(pt.ExcludedChildren)
		r.types[pt.Name] = &pt
		r.order = append(r.order, pt.Name)
		if pt.Parent != "" {
			r.subtypes[pt.Parent] = append(r.subtypes[pt.Parent], pt.Name)
		}
	}

	return r, nil
}

// Get returns a copy of a registered type with its effective excluded_children
func (r *Registry) Get(name string) (*sitetree.PageType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, ok := r.types[name]
	if !ok {
		return nil, false
	}
	out := *pt
	out.ExcludedChildren = r.excludedChildrenLocked(name)
	return &out, true
}

// Has reports whether name is a registered type
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.types[name]
	return ok
}

// List returns every registered type in declaration order
func (r *Registry) List() []sitetree.PageType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]sitetree.PageType, 0, len(r.order))
	for _, name := range r.order {
		pt := *r.types[name]
		pt.ExcludedChildren = r.excludedChildrenLocked(name)
		out = append(out, pt)
	}
	return out
}

// SubtypesOf returns name followed by all of its transitive subtypes.
// An unregistered name yields just itself.
func (r *Registry) SubtypesOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []string{name}
	var walk func(string)
	walk = func(n string) {
		for _, child := range r.subtypes[n] {
			out = append(out, child)
			walk(child)
		}
	}
	walk(name)
	return out
}

// BaseTypeOf returns the root ancestor of name; unregistered names are their own base
func (r *Registry) BaseTypeOf(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := name
	for {
		pt, ok := r.types[base]
		if !ok || pt.Parent == "" {
			return base
		}
		base = pt.Parent
	}
}

// SupportsVersioning reports whether name or any ancestor is versioned
func (r *Registry) SupportsVersioning(name string) bool {
	return r.inherits(name, func(pt *sitetree.PageType) bool { return pt.Versioned })
}

// HasShowInMenus reports whether name or any ancestor declares the show-in-menus flag
func (r *Registry) HasShowInMenus(name string) bool {
	return r.inherits(name, func(pt *sitetree.PageType) bool { return pt.ShowInMenus })
}

// ExcludedChildren returns the effective excluded_children of a type: its own
// list (runtime override first, static declaration otherwise) followed by the
// lists inherited from its ancestors, without duplicates.
func (r *Registry) ExcludedChildren(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.excludedChildrenLocked(name)
}

// SetExcludedChildren overrides the excluded_children declared on a type.
// A nil or empty list clears the type's own exclusions; inherited ones remain.
func (r *Registry) SetExcludedChildren(name string, excluded []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; !ok {
		return fmt.Errorf("unknown page type: %s", name)
	}
	for _, child := range excluded {
		if _, ok := r.types[child]; !ok {
			return fmt.Errorf("unknown excluded page type %s for %s", child, name)
		}
	}

	r.overrides[name] = slices.Clone(excluded)
	return nil
}

func (r *Registry) excludedChildrenLocked(name string) []string {
	var out []string
	seen := make(map[string]struct{})

	for current := name; current != ""; {
		own, overridden := r.overrides[current]
		pt, ok := r.types[current]
		if !overridden && ok {
			own = pt.ExcludedChildren
		}
		for _, child := range own {
			if _, dup := seen[child]; !dup {
				seen[child] = struct{}{}
				out = append(out, child)
			}
		}
		if !ok {
			break
		}
		current = pt.Parent
	}

	if out == nil {
		out = []string{}
	}
	return out
}

func (r *Registry) inherits(name string, has func(*sitetree.PageType) bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for current := name; current != ""; {
		pt, ok := r.types[current]
		if !ok {
			return false
		}
		if has(pt) {
			return true
		}
		current = pt.Parent
	}
	return false
}
