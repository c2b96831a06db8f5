// Package catalog holds the field, section, and variant tables of every
// template category. Catalogs are declared in YAML (built-ins are embedded,
// extra ones can be read from a directory), support single inheritance via
// "extends", and are immutable once built. Lookups return copies, so any
// number of goroutines may read a catalog without coordination.
package catalog

import (
	"errors"
	"slices"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Load and lookup errors.
var (
	ErrMissingCategory   = errors.New("catalog category must not be empty")
	ErrDuplicateCategory = errors.New("duplicate catalog category")
	ErrDuplicateField    = errors.New("duplicate field key")
	ErrDuplicateSection  = errors.New("duplicate section name")
	ErrInvalidField      = errors.New("invalid field")
	ErrInvalidSection    = errors.New("invalid section")
	ErrInvalidInputType  = errors.New("invalid input type")
	ErrUnknownParent     = errors.New("unknown parent catalog")
	ErrExtendsCycle      = errors.New("catalog extends cycle")
	ErrUnknownCategory   = errors.New("unknown catalog category")
)

// Preset is a ready-made template instance shipped with a catalog.
type Preset struct {
	Slug     string
	Name     string
	Sections *types.SectionsConfig
	Order    types.OrderHint
}

// Catalog is the resolved table set of one category.
type Catalog struct {
	category string
	label    string
	parent   string

	fields     map[string]types.FieldDefinition
	fieldOrder []string

	sections     map[string]types.SectionDefinition
	sectionOrder []string

	variants     map[string]types.VariantFieldSet
	variantOrder []string

	basic    []string
	basicSet map[string]bool

	presets []Preset

	// duplicateVariants records variant keys declared under more than one
	// section; the later declaration wins.
	duplicateVariants []string
}

func newCatalog(category string) *Catalog {
	return &Catalog{
		category: category,
		fields:   make(map[string]types.FieldDefinition),
		sections: make(map[string]types.SectionDefinition),
		variants: make(map[string]types.VariantFieldSet),
		basicSet: make(map[string]bool),
	}
}

// inherit copies the tables of parent into c. Presets are not inherited.
func (c *Catalog) inherit(parent *Catalog) {
	c.parent = parent.category
	c.label = parent.label
	for _, k := range parent.fieldOrder {
		c.putField(parent.fields[k].Clone())
	}
	for _, name := range parent.sectionOrder {
		c.putSection(parent.sections[name].Clone())
	}
	for _, k := range parent.variantOrder {
		v := parent.variants[k]
		v.FieldKeys = slices.Clone(v.FieldKeys)
		c.putVariant(v)
	}
	c.setBasic(parent.basic)
	c.duplicateVariants = slices.Clone(parent.duplicateVariants)
}

func (c *Catalog) putField(f types.FieldDefinition) {
	if _, ok := c.fields[f.Key]; !ok {
		c.fieldOrder = append(c.fieldOrder, f.Key)
	}
	c.fields[f.Key] = f
}

func (c *Catalog) dropField(key string) {
	if _, ok := c.fields[key]; !ok {
		return
	}
	delete(c.fields, key)
	c.fieldOrder = slices.DeleteFunc(c.fieldOrder, func(k string) bool { return k == key })
}

func (c *Catalog) putSection(s types.SectionDefinition) {
	if _, ok := c.sections[s.Name]; !ok {
		c.sectionOrder = append(c.sectionOrder, s.Name)
	}
	c.sections[s.Name] = s
}

func (c *Catalog) putVariant(v types.VariantFieldSet) {
	if _, ok := c.variants[v.VariantKey]; !ok {
		c.variantOrder = append(c.variantOrder, v.VariantKey)
	}
	c.variants[v.VariantKey] = v
}

func (c *Catalog) setBasic(keys []string) {
	c.basic = slices.Clone(keys)
	c.basicSet = make(map[string]bool, len(keys))
	for _, k := range keys {
		c.basicSet[k] = true
	}
}

// apply overlays the declarations of f onto c.
func (c *Catalog) apply(f *File) error {
	if f.Label != "" {
		c.label = f.Label
	}

	for _, key := range f.DropFields {
		c.dropField(key)
	}
	for _, fld := range f.Fields {
		def := types.FieldDefinition{
			Key:         fld.Key,
			Label:       fld.Label,
			InputType:   types.InputType(fld.Type),
			Sections:    slices.Clone(fld.Sections),
			Category:    fld.Category,
			Placeholder: fld.Placeholder,
		}
		if fld.MaxLength > 0 || fld.MaxItems > 0 {
			def.Constraints = &types.FieldConstraints{MaxLength: fld.MaxLength, MaxItems: fld.MaxItems}
		}
		c.putField(def)
	}

	for _, s := range f.Sections {
		def, inherited := c.sections[s.Name]
		if !inherited {
			def = types.SectionDefinition{Name: s.Name}
		}
		if s.Label != "" {
			def.Label = s.Label
		}
		if s.Icon != "" {
			def.Icon = s.Icon
		}
		if len(s.Fields) > 0 {
			def.DefaultFieldKeys = slices.Clone(s.Fields)
		}
		c.putSection(def)

		decls, err := s.variants()
		if err != nil {
			return err
		}
		for _, d := range decls {
			if prev, ok := c.variants[d.key]; ok && prev.Section != s.Name {
				c.duplicateVariants = append(c.duplicateVariants, d.key)
			}
			c.putVariant(types.VariantFieldSet{
				VariantKey: d.key,
				Section:    s.Name,
				FieldKeys:  slices.Clone(d.fields),
			})
		}
	}

	if len(f.BasicFields) > 0 {
		c.setBasic(f.BasicFields)
	}

	for _, p := range f.Presets {
		cfg, err := p.sectionsConfig()
		if err != nil {
			return err
		}
		hint, err := p.orderHint()
		if err != nil {
			return err
		}
		preset := Preset{Slug: p.Slug, Name: p.Name, Sections: cfg, Order: hint}
		if i := slices.IndexFunc(c.presets, func(x Preset) bool { return x.Slug == p.Slug }); i >= 0 {
			c.presets[i] = preset
			continue
		}
		c.presets = append(c.presets, preset)
	}
	return nil
}

// Category returns the catalog's category key.
func (c *Catalog) Category() string { return c.category }

// Label returns the display name of the category.
func (c *Catalog) Label() string { return c.label }

// Parent returns the category this catalog extends, or "".
func (c *Catalog) Parent() string { return c.parent }

// Field returns the definition of key.
func (c *Catalog) Field(key string) (types.FieldDefinition, bool) {
	f, ok := c.fields[key]
	if !ok {
		return types.FieldDefinition{}, false
	}
	return f.Clone(), true
}

// Section returns the definition of the named section.
func (c *Catalog) Section(name string) (types.SectionDefinition, bool) {
	s, ok := c.sections[name]
	if !ok {
		return types.SectionDefinition{}, false
	}
	return s.Clone(), true
}

// Variant returns the field set of a variant key.
func (c *Catalog) Variant(key string) (types.VariantFieldSet, bool) {
	v, ok := c.variants[key]
	if !ok {
		return types.VariantFieldSet{}, false
	}
	v.FieldKeys = slices.Clone(v.FieldKeys)
	return v, true
}

// Fields returns every field in declaration order.
func (c *Catalog) Fields() []types.FieldDefinition {
	out := make([]types.FieldDefinition, 0, len(c.fieldOrder))
	for _, k := range c.fieldOrder {
		out = append(out, c.fields[k].Clone())
	}
	return out
}

// Sections returns every section in declaration order.
func (c *Catalog) Sections() []types.SectionDefinition {
	out := make([]types.SectionDefinition, 0, len(c.sectionOrder))
	for _, name := range c.sectionOrder {
		out = append(out, c.sections[name].Clone())
	}
	return out
}

// SectionVariants returns the variant keys declared for section, in
// declaration order.
func (c *Catalog) SectionVariants(section string) []string {
	var out []string
	for _, k := range c.variantOrder {
		if c.variants[k].Section == section {
			out = append(out, k)
		}
	}
	return out
}

// BasicFieldKeys returns the allow-list used by basic editing mode.
func (c *Catalog) BasicFieldKeys() []string {
	return slices.Clone(c.basic)
}

// IsBasic reports whether key is shown in basic editing mode.
func (c *Catalog) IsBasic(key string) bool {
	return c.basicSet[key]
}

// Presets returns the catalog's template presets.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = Preset{
			Slug:     p.Slug,
			Name:     p.Name,
			Sections: p.Sections.Clone(),
			Order:    slices.Clone(p.Order),
		}
	}
	return out
}
