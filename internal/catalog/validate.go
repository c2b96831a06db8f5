package catalog

import (
	"fmt"
	"sort"
)

// Issue is one data-authoring gap found by Validate. Issues never stop a
// catalog from loading; resolution drops whatever they point at.
type Issue struct {
	Category string `json:"category"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Category, i.Subject, i.Message)
}

// Validate reports references that do not resolve: section or variant field
// keys without a definition, fields listed under a section they are not
// owned by, fields owned by unknown sections, fields no section or variant
// lists, variant keys declared under
// more than one section, unknown basic-mode keys, and presets naming
// unknown sections or variants. The result is sorted by subject, then
// message.
func (c *Catalog) Validate() []Issue {
	var issues []Issue
	add := func(subject, format string, args ...any) {
		issues = append(issues, Issue{
			Category: c.category,
			Subject:  subject,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	listed := make(map[string]bool, len(c.fieldOrder))
	for _, name := range c.sectionOrder {
		for _, key := range c.sections[name].DefaultFieldKeys {
			listed[key] = true
		}
	}
	for _, key := range c.variantOrder {
		for _, fk := range c.variants[key].FieldKeys {
			listed[fk] = true
		}
	}

	for _, key := range c.fieldOrder {
		f := c.fields[key]
		subject := "field " + key
		if !listed[key] {
			add(subject, "not listed by any section or variant")
		}
		if len(f.Sections) == 0 {
			add(subject, "has no owning section")
		}
		for _, s := range f.Sections {
			if _, ok := c.sections[s]; !ok {
				add(subject, "owned by unknown section %q", s)
			}
		}
	}

	checkKeys := func(subject, section string, keys []string) {
		for _, key := range keys {
			f, ok := c.fields[key]
			if !ok {
				add(subject, "references unknown field %q", key)
				continue
			}
			if !f.OwnedBy(section) {
				add(subject, "lists field %q owned by %v", key, f.Sections)
			}
		}
	}
	for _, name := range c.sectionOrder {
		s := c.sections[name]
		checkKeys("section "+name, name, s.DefaultFieldKeys)
	}
	for _, key := range c.variantOrder {
		v := c.variants[key]
		checkKeys("variant "+key, v.Section, v.FieldKeys)
	}
	for _, key := range c.duplicateVariants {
		add("variant "+key, "declared under more than one section; %q wins", c.variants[key].Section)
	}

	for _, key := range c.basic {
		if _, ok := c.fields[key]; !ok {
			add("basic_fields", "references unknown field %q", key)
		}
	}

	for _, p := range c.presets {
		subject := "preset " + p.Slug
		for _, e := range p.Sections.Entries() {
			if _, ok := c.sections[e.Name]; !ok {
				add(subject, "configures unknown section %q", e.Name)
				continue
			}
			c.checkPresetVariant(subject, e.Name, e.Value.Variant(), add)
		}
		for _, e := range p.Order {
			if _, ok := p.Sections.Get(e.Section); !ok {
				add(subject, "orders section %q that it does not configure", e.Section)
			}
			c.checkPresetVariant(subject, e.Section, e.Variant, add)
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Subject != issues[j].Subject {
			return issues[i].Subject < issues[j].Subject
		}
		return issues[i].Message < issues[j].Message
	})
	return dedupeIssues(issues)
}

func (c *Catalog) checkPresetVariant(subject, section, variant string, add func(string, string, ...any)) {
	if variant == "" {
		return
	}
	v, ok := c.variants[variant]
	if !ok {
		add(subject, "selects unknown variant %q for %q", variant, section)
		return
	}
	if v.Section != section {
		add(subject, "selects variant %q of %q for %q", variant, v.Section, section)
	}
}

// dedupeIssues drops adjacent repeats from a sorted list.
func dedupeIssues(issues []Issue) []Issue {
	var out []Issue
	for _, is := range issues {
		if n := len(out); n > 0 && out[n-1] == is {
			continue
		}
		out = append(out, is)
	}
	return out
}
