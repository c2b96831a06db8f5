// Package resolver turns a template's section configuration into the fields
// its customization form presents. Resolution runs over an immutable
// catalog, never fails, and returns fresh copies on every call; a Resolver
// is safe for concurrent use.
package resolver

import (
	"cmp"
	"context"
	"slices"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/internal/logging"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Resolver resolves fields against one category's catalog.
type Resolver struct {
	cat *catalog.Catalog
	log logging.Logger
}

// New returns a resolver over cat. A nil log discards messages.
func New(cat *catalog.Catalog, log logging.Logger) *Resolver {
	if log == nil {
		log = logging.Discard()
	}
	return &Resolver{
		cat: cat,
		log: log.With("category", cat.Category()),
	}
}

// Catalog returns the catalog the resolver reads from.
func (r *Resolver) Catalog() *catalog.Catalog {
	return r.cat
}

// DetectActiveSections returns the names of the enabled sections of cfg.
//
// When hint is non-empty its order is authoritative: sections are returned
// in hint order, hint entries that cfg does not configure are skipped, and
// active sections the hint leaves out follow in config order. Without a hint
// the config's own order is used. A nil cfg yields an empty result.
func DetectActiveSections(cfg *types.SectionsConfig, hint types.OrderHint) []string {
	if cfg.Len() == 0 {
		return []string{}
	}

	out := make([]string, 0, cfg.Len())
	seen := make(map[string]bool, cfg.Len())
	add := func(name string) {
		if seen[name] {
			return
		}
		v, ok := cfg.Get(name)
		if !ok {
			return
		}
		seen[name] = true
		if v.Active() {
			out = append(out, name)
		}
	}

	for _, e := range hint {
		add(e.Section)
	}
	for _, name := range cfg.Names() {
		add(name)
	}
	return out
}

// AvailableFields returns the union of the default fields of the active
// sections, deduplicated by key and stable-sorted by field category. Unknown
// sections and keys without a definition are dropped.
func (r *Resolver) AvailableFields(ctx context.Context, active []string) []types.FieldDefinition {
	return r.resolve(ctx, active, func(string) string { return "" }).fields
}

// AvailableFieldsForVariant is AvailableFields, except that a section whose
// configured variant is declared for it contributes the variant's field keys
// instead of its defaults. Any other variant falls back to the defaults.
func (r *Resolver) AvailableFieldsForVariant(ctx context.Context, active []string, cfg *types.SectionsConfig) []types.FieldDefinition {
	return r.resolve(ctx, active, func(section string) string {
		v, _ := cfg.Get(section)
		return v.Variant()
	}).fields
}

// resolution is the outcome of resolving a set of active sections.
type resolution struct {
	fields []types.FieldDefinition
	// applied is the variant used per known section, "" for the defaults.
	applied map[string]string
	// exposes holds the field keys each known section contributed.
	exposes map[string]map[string]bool
}

// resolve unions the field keys of the active sections, using variantOf to
// pick each section's variant.
func (r *Resolver) resolve(ctx context.Context, active []string, variantOf func(string) string) resolution {
	out := []types.FieldDefinition{}
	applied := make(map[string]string, len(active))
	exposes := make(map[string]map[string]bool, len(active))
	seen := make(map[string]bool)
	for _, name := range active {
		keys, variant, ok := r.sectionKeys(ctx, name, variantOf(name))
		if !ok {
			continue
		}
		applied[name] = variant
		exposes[name] = make(map[string]bool, len(keys))
		for _, key := range keys {
			exposes[name][key] = true
			if seen[key] {
				continue
			}
			seen[key] = true
			f, ok := r.cat.Field(key)
			if !ok {
				r.log.Warn(ctx, "dropping unknown field", "key", key, "section", name)
				continue
			}
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, func(a, b types.FieldDefinition) int {
		return cmp.Compare(a.Category, b.Category)
	})
	return resolution{fields: out, applied: applied, exposes: exposes}
}

// sectionKeys returns the field keys section contributes and the variant
// that supplied them, or "" when the defaults were used. ok is false for a
// section the catalog does not define.
func (r *Resolver) sectionKeys(ctx context.Context, section, variant string) (keys []string, applied string, ok bool) {
	s, ok := r.cat.Section(section)
	if !ok {
		r.log.Warn(ctx, "dropping unknown section", "section", section)
		return nil, "", false
	}
	if variant == "" {
		return s.DefaultFieldKeys, "", true
	}
	v, found := r.cat.Variant(variant)
	if !found || v.Section != section {
		r.log.Debug(ctx, "variant not declared for section, using defaults", "section", section, "variant", variant)
		return s.DefaultFieldKeys, "", true
	}
	return v.FieldKeys, variant, true
}

// SectionGroup is the fields assigned to one active section.
type SectionGroup struct {
	Section string                  `json:"section"`
	Fields  []types.FieldDefinition `json:"fields"`
}

// GroupByOrderedSections assigns every field to the first section in active
// that owns it, so a field shared by several active sections appears exactly
// once. Groups follow active order, fields keep their input order, groups
// left empty are omitted, and fields without an active owner are dropped.
func GroupByOrderedSections(fields []types.FieldDefinition, active []string) []SectionGroup {
	return groupFields(fields, active, nil)
}

// groupFields is GroupByOrderedSections with an optional eligible predicate.
// An owner for which eligible reports false is passed over, unless no owner
// of the field is eligible.
func groupFields(fields []types.FieldDefinition, active []string, eligible func(section, key string) bool) []SectionGroup {
	rank := make(map[string]int, len(active))
	for i, name := range active {
		if _, ok := rank[name]; !ok {
			rank[name] = i
		}
	}

	buckets := make([][]types.FieldDefinition, len(active))
	for _, f := range fields {
		best, fallback := -1, -1
		for _, s := range f.Sections {
			i, ok := rank[s]
			if !ok {
				continue
			}
			if fallback < 0 || i < fallback {
				fallback = i
			}
			if eligible != nil && !eligible(s, f.Key) {
				continue
			}
			if best < 0 || i < best {
				best = i
			}
		}
		if best < 0 {
			best = fallback
		}
		if best >= 0 {
			buckets[best] = append(buckets[best], f.Clone())
		}
	}

	groups := []SectionGroup{}
	for i, name := range active {
		if len(buckets[i]) == 0 {
			continue
		}
		groups = append(groups, SectionGroup{Section: name, Fields: buckets[i]})
	}
	return groups
}

// FilterByMode returns fields unchanged in full mode. In basic mode it keeps
// only the catalog's basic allow-list, preserving the caller's order.
func (r *Resolver) FilterByMode(fields []types.FieldDefinition, mode types.Mode) []types.FieldDefinition {
	out := make([]types.FieldDefinition, 0, len(fields))
	for _, f := range fields {
		if mode == types.ModeBasic && !r.cat.IsBasic(f.Key) {
			continue
		}
		out = append(out, f.Clone())
	}
	return out
}
