package resolver

import (
	"context"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Form is everything the customization form renders for one template.
type Form struct {
	Category string      `json:"category"`
	Mode     types.Mode  `json:"mode"`
	Groups   []FormGroup `json:"groups"`
}

// FormGroup is one section heading of a form. Variant is the layout whose
// field set was applied, or "" when the section defaults were used. A group
// for a section the catalog does not define carries only the section name.
type FormGroup struct {
	Section types.SectionDefinition `json:"section"`
	Variant string                  `json:"variant,omitempty"`
	Fields  []types.FieldDefinition `json:"fields"`
}

// FieldCount returns the number of fields across all groups.
func (f Form) FieldCount() int {
	n := 0
	for _, g := range f.Groups {
		n += len(g.Fields)
	}
	return n
}

// Form detects the active sections of cfg, resolves their fields honoring
// each section's variant, groups them by first active owner, and applies the
// mode filter per group. Groups left empty are dropped. A known section
// only claims a field its applied variant or defaults actually list; a field
// no such owner lists goes to its first active owner.
//
// A section's variant is the one named by its config value, else the one
// named by hint, else none.
func (r *Resolver) Form(ctx context.Context, cfg *types.SectionsConfig, hint types.OrderHint, mode types.Mode) Form {
	if mode == "" {
		mode = types.ModeFull
	}
	form := Form{Category: r.cat.Category(), Mode: mode, Groups: []FormGroup{}}

	active := DetectActiveSections(cfg, hint)
	res := r.resolve(ctx, active, func(section string) string {
		return selectVariant(cfg, hint, section)
	})
	exposes := func(section, key string) bool {
		keys, known := res.exposes[section]
		return !known || keys[key]
	}

	for _, g := range groupFields(res.fields, active, exposes) {
		kept := r.FilterByMode(g.Fields, mode)
		if len(kept) == 0 {
			continue
		}
		section, ok := r.cat.Section(g.Section)
		if !ok {
			section = types.SectionDefinition{Name: g.Section}
		}
		form.Groups = append(form.Groups, FormGroup{
			Section: section,
			Variant: res.applied[g.Section],
			Fields:  kept,
		})
	}
	return form
}

func selectVariant(cfg *types.SectionsConfig, hint types.OrderHint, section string) string {
	if v, ok := cfg.Get(section); ok && v.Variant() != "" {
		return v.Variant()
	}
	variant, _ := hint.Variant(section)
	return variant
}
