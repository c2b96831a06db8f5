// Field, section, and variant definitions that make up a template catalog.
package types

import "slices"

// InputType selects the form control used to edit a field.
type InputType string

// Input types understood by the customization form.
const (
	InputText       InputType = "text"
	InputTextarea   InputType = "textarea"
	InputURL        InputType = "url"
	InputImage      InputType = "image"
	InputDate       InputType = "date"
	InputDatetime   InputType = "datetime"
	InputTime       InputType = "time"
	InputToggle     InputType = "toggle"
	InputColor      InputType = "color"
	InputMultiImage InputType = "multi-image"
)

// validInputTypes is the set of recognized input types.
var validInputTypes = map[InputType]bool{
	InputText:       true,
	InputTextarea:   true,
	InputURL:        true,
	InputImage:      true,
	InputDate:       true,
	InputDatetime:   true,
	InputTime:       true,
	InputToggle:     true,
	InputColor:      true,
	InputMultiImage: true,
}

// IsValidInputType reports whether t is a recognized input type.
func IsValidInputType(t InputType) bool {
	return validInputTypes[t]
}

// FieldConstraints bounds user input for a field. Zero values mean unbounded.
type FieldConstraints struct {
	MaxLength int `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	MaxItems  int `json:"max_items,omitempty" yaml:"max_items,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c FieldConstraints) IsZero() bool {
	return c.MaxLength == 0 && c.MaxItems == 0
}

// FieldDefinition describes one editable value of an invitation template.
// A field usually belongs to exactly one section; shared fields such as the
// couple's names list every section they may appear under, in priority order.
type FieldDefinition struct {
	Key         string            `json:"key"`
	Label       string            `json:"label"`
	InputType   InputType         `json:"input_type"`
	Sections    []string          `json:"sections"`
	Category    string            `json:"category"`
	Placeholder string            `json:"placeholder,omitempty"`
	Constraints *FieldConstraints `json:"constraints,omitempty"`
}

// OwnedBy reports whether section is one of the field's owning sections.
func (f FieldDefinition) OwnedBy(section string) bool {
	return slices.Contains(f.Sections, section)
}

// Clone returns a deep copy so callers can modify the result without
// touching catalog data.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	out.Sections = slices.Clone(f.Sections)
	if f.Constraints != nil {
		c := *f.Constraints
		out.Constraints = &c
	}
	return out
}

// SectionDefinition describes a named block of a template.
type SectionDefinition struct {
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	Icon             string   `json:"icon,omitempty"`
	DefaultFieldKeys []string `json:"default_field_keys"`
}

// Clone returns a deep copy of the section definition.
func (s SectionDefinition) Clone() SectionDefinition {
	out := s
	out.DefaultFieldKeys = slices.Clone(s.DefaultFieldKeys)
	return out
}

// VariantFieldSet lists the fields exposed by one visual layout of a section.
// FieldKeys is usually narrower than the section's default list.
type VariantFieldSet struct {
	VariantKey string   `json:"variant_key"`
	Section    string   `json:"section"`
	FieldKeys  []string `json:"field_keys"`
}
