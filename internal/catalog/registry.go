package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Registry holds the catalogs of every known category.
type Registry struct {
	catalogs map[string]*Catalog
}

// NewRegistry builds catalogs from parsed files, resolving "extends" chains.
// Each category must appear at most once in files.
func NewRegistry(files []*File) (*Registry, error) {
	byCategory := make(map[string]*File, len(files))
	for _, f := range files {
		if _, ok := byCategory[f.Category]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, f.Category)
		}
		byCategory[f.Category] = f
	}

	r := &Registry{catalogs: make(map[string]*Catalog, len(files))}
	building := make(map[string]bool)

	var build func(category string, chain []string) (*Catalog, error)
	build = func(category string, chain []string) (*Catalog, error) {
		if c, ok := r.catalogs[category]; ok {
			return c, nil
		}
		if building[category] {
			return nil, fmt.Errorf("%w: %s", ErrExtendsCycle, strings.Join(append(chain, category), " -> "))
		}
		f := byCategory[category]
		building[category] = true
		defer delete(building, category)

		c := newCatalog(category)
		if f.Extends != "" {
			if _, ok := byCategory[f.Extends]; !ok {
				return nil, fmt.Errorf("%w: %q extends %q", ErrUnknownParent, category, f.Extends)
			}
			parent, err := build(f.Extends, append(chain, category))
			if err != nil {
				return nil, err
			}
			c.inherit(parent)
		}
		if err := c.apply(f); err != nil {
			return nil, fmt.Errorf("catalog %q: %w", category, err)
		}
		r.catalogs[category] = c
		return c, nil
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		if _, err := build(category, nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Load builds the registry from the built-in catalogs plus, when extraDir is
// non-empty, the catalog files in extraDir. A file in extraDir replaces the
// built-in catalog of the same category.
func Load(extraDir string) (*Registry, error) {
	files, err := Builtin()
	if err != nil {
		return nil, err
	}
	if extraDir != "" {
		extra, err := ReadDir(extraDir)
		if err != nil {
			return nil, err
		}
		files = overlay(files, extra)
	}
	return NewRegistry(files)
}

// overlay replaces base files by category with those in top and appends the
// rest.
func overlay(base, top []*File) []*File {
	out := make([]*File, 0, len(base)+len(top))
	replaced := make(map[string]*File, len(top))
	for _, f := range top {
		replaced[f.Category] = f
	}
	for _, f := range base {
		if r, ok := replaced[f.Category]; ok {
			out = append(out, r)
			delete(replaced, f.Category)
			continue
		}
		out = append(out, f)
	}
	for _, f := range top {
		if _, ok := replaced[f.Category]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Catalog returns the catalog of category.
func (r *Registry) Catalog(category string) (*Catalog, error) {
	c, ok := r.catalogs[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return c, nil
}

// Categories returns every category key, sorted.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.catalogs))
	for category := range r.catalogs {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// PresetTemplates returns the presets of every category as unsaved
// templates, ordered by category and then declaration order.
func (r *Registry) PresetTemplates() []*types.Template {
	var out []*types.Template
	for _, category := range r.Categories() {
		for _, p := range r.catalogs[category].Presets() {
			out = append(out, &types.Template{
				Slug:     p.Slug,
				Name:     p.Name,
				Category: category,
				Sections: p.Sections,
				Order:    p.Order,
			})
		}
	}
	return out
}
