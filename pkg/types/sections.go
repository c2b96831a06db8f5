// Persisted per-template section configuration and its JSON encoding.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
)

// sectionValueKind records which JSON shape a SectionValue was written in so
// that it round-trips unchanged.
type sectionValueKind int

const (
	kindInvalid sectionValueKind = iota
	kindBool
	kindObject
	kindString
)

// SectionValue is the configuration of one section in a template instance.
// On the wire it is a boolean, a string naming the chosen variant, or an
// object {"enabled": bool, "variant": string}.
type SectionValue struct {
	kind    sectionValueKind
	enabled bool
	variant string
}

// Enabled returns a boolean section value.
func Enabled(on bool) SectionValue {
	return SectionValue{kind: kindBool, enabled: on}
}

// UseVariant returns a string section value selecting variant.
func UseVariant(variant string) SectionValue {
	return SectionValue{kind: kindString, enabled: true, variant: variant}
}

// SectionObject returns an object section value.
func SectionObject(enabled bool, variant string) SectionValue {
	return SectionValue{kind: kindObject, enabled: enabled, variant: variant}
}

// Active reports whether the section is enabled: true, an object whose
// enabled flag is not false, or any string.
func (v SectionValue) Active() bool {
	switch v.kind {
	case kindString:
		return true
	case kindBool, kindObject:
		return v.enabled
	default:
		return false
	}
}

// Variant returns the chosen variant key, or "" when none is named.
func (v SectionValue) Variant() string {
	return v.variant
}

// UnmarshalJSON accepts every shape a stored configuration may hold.
// Unrecognized shapes decode to an inactive value rather than failing. Inside
// an object, an enabled member that is not a boolean leaves the section
// enabled and a variant member that is not a string names no variant.
func (v *SectionValue) UnmarshalJSON(data []byte) error {
	*v = SectionValue{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Enabled(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = UseVariant(s)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*v = SectionObject(objectEnabled(obj["enabled"]), objectVariant(obj["variant"]))
	}
	return nil
}

// objectEnabled reports whether an object's enabled member is anything other
// than the literal false. A missing or non-boolean member counts as enabled.
func objectEnabled(raw json.RawMessage) bool {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return true
	}
	return b
}

// objectVariant returns the object's variant member when it is a string.
func objectVariant(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// MarshalJSON writes the value back in the shape it was read in.
func (v SectionValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindBool:
		return json.Marshal(v.enabled)
	case kindString:
		return json.Marshal(v.variant)
	case kindObject:
		obj := struct {
			Enabled bool   `json:"enabled"`
			Variant string `json:"variant,omitempty"`
		}{v.enabled, v.variant}
		return json.Marshal(obj)
	default:
		return []byte("null"), nil
	}
}

// SectionEntry is one named section value in a SectionsConfig.
type SectionEntry struct {
	Name  string
	Value SectionValue
}

// SectionsConfig maps section names to their configuration while keeping
// the order entries were written in. Decoding JSON keeps document order. A
// config built from a Go map is ordered alphabetically because map order
// carries no meaning. A nil *SectionsConfig behaves as an empty config.
type SectionsConfig struct {
	entries []SectionEntry
	index   map[string]int
}

// NewSectionsConfig builds a config from a map, ordering keys alphabetically.
func NewSectionsConfig(values map[string]SectionValue) *SectionsConfig {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	c := &SectionsConfig{}
	for _, name := range names {
		c.Set(name, values[name])
	}
	return c
}

// Set stores the value for name. A new name is appended; an existing name
// keeps its position.
func (c *SectionsConfig) Set(name string, v SectionValue) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].Value = v
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, SectionEntry{Name: name, Value: v})
}

// Get returns the value for name.
func (c *SectionsConfig) Get(name string) (SectionValue, bool) {
	if c == nil || c.index == nil {
		return SectionValue{}, false
	}
	i, ok := c.index[name]
	if !ok {
		return SectionValue{}, false
	}
	return c.entries[i].Value, true
}

// Len returns the number of configured sections.
func (c *SectionsConfig) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Names returns section names in config order.
func (c *SectionsConfig) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the entries in config order.
func (c *SectionsConfig) Entries() []SectionEntry {
	if c == nil {
		return nil
	}
	return slices.Clone(c.entries)
}

// Clone returns an independent copy of the config. Cloning nil yields nil.
func (c *SectionsConfig) Clone() *SectionsConfig {
	if c == nil {
		return nil
	}
	out := &SectionsConfig{}
	for _, e := range c.entries {
		out.Set(e.Name, e.Value)
	}
	return out
}

// UnmarshalJSON decodes a JSON object, preserving key order. A repeated key
// keeps its first position and its last value.
func (c *SectionsConfig) UnmarshalJSON(data []byte) error {
	*c = SectionsConfig{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sections config: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("sections config: expected key, got %v", tok)
		}
		var v SectionValue
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("sections config %q: %w", name, err)
		}
		c.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the config as an object in config order.
func (c SectionsConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OrderEntry is one [section, variant] pair of an OrderHint.
type OrderEntry struct {
	Section string
	Variant string
}

// UnmarshalJSON decodes a two-element array. The second element names a
// variant when it is a string; any other value means no variant.
func (e *OrderEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) == 0 {
		return fmt.Errorf("order entry: empty pair")
	}
	var section string
	if err := json.Unmarshal(pair[0], &section); err != nil {
		return fmt.Errorf("order entry: section name: %w", err)
	}
	*e = OrderEntry{Section: section}
	if len(pair) > 1 {
		var variant string
		if err := json.Unmarshal(pair[1], &variant); err == nil {
			e.Variant = variant
		}
	}
	return nil
}

// MarshalJSON writes [section, variant], or [section, true] without a variant.
func (e OrderEntry) MarshalJSON() ([]byte, error) {
	if e.Variant == "" {
		return json.Marshal([]any{e.Section, true})
	}
	return json.Marshal([]any{e.Section, e.Variant})
}

// OrderHint preserves the authoring order of a template's sections.
type OrderHint []OrderEntry

// UnmarshalJSON decodes the pair list, skipping malformed pairs.
func (h *OrderHint) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(OrderHint, 0, len(raw))
	for _, r := range raw {
		var e OrderEntry
		if err := json.Unmarshal(r, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	*h = out
	return nil
}

// Variant returns the variant the hint names for section.
func (h OrderHint) Variant(section string) (string, bool) {
	for _, e := range h {
		if e.Section == section {
			return e.Variant, e.Variant != ""
		}
	}
	return "", false
}
