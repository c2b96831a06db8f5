// Catalog file parsing. A catalog file is YAML describing one category's
// fields, sections, variants, basic allow-list, and template presets.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// File is one parsed catalog file before inheritance is applied.
type File struct {
	// Path is where the file was read from; empty for in-memory input.
	Path string `yaml:"-"`

	Category    string   `yaml:"category"`
	Label       string   `yaml:"label"`
	Extends     string   `yaml:"extends"`
	BasicFields []string `yaml:"basic_fields"`

	// DropFields removes inherited field definitions before Fields apply.
	DropFields []string      `yaml:"drop_fields"`
	Fields     []fileField   `yaml:"fields"`
	Sections   []fileSection `yaml:"sections"`
	Presets    []filePreset  `yaml:"presets"`
}

type fileField struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Type        string   `yaml:"type"`
	Sections    []string `yaml:"sections"`
	Category    string   `yaml:"category"`
	Placeholder string   `yaml:"placeholder"`
	MaxLength   int      `yaml:"max_length"`
	MaxItems    int      `yaml:"max_items"`
}

type fileSection struct {
	Name   string   `yaml:"name"`
	Label  string   `yaml:"label"`
	Icon   string   `yaml:"icon"`
	Fields []string `yaml:"fields"`

	// Variants is a mapping of variant key to field keys. It is kept as a
	// node so declaration order survives decoding.
	Variants yaml.Node `yaml:"variants"`
}

type filePreset struct {
	Slug     string      `yaml:"slug"`
	Name     string      `yaml:"name"`
	Sections yaml.Node   `yaml:"sections"`
	Order    []yaml.Node `yaml:"order"`
}

// Parse decodes a catalog file and checks its structure. It does not check
// cross references; see Catalog.Validate.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// check enforces the per-file rules that make a catalog unusable when broken.
func (f *File) check() error {
	if strings.TrimSpace(f.Category) == "" {
		return ErrMissingCategory
	}

	keys := make(map[string]bool, len(f.Fields))
	for _, fld := range f.Fields {
		if fld.Key == "" {
			return fmt.Errorf("%w: field with empty key", ErrInvalidField)
		}
		if keys[fld.Key] {
			return fmt.Errorf("%w: field %q", ErrDuplicateField, fld.Key)
		}
		keys[fld.Key] = true
		if !types.IsValidInputType(types.InputType(fld.Type)) {
			return fmt.Errorf("%w: field %q has type %q", ErrInvalidInputType, fld.Key, fld.Type)
		}
	}

	names := make(map[string]bool, len(f.Sections))
	for _, s := range f.Sections {
		if s.Name == "" {
			return fmt.Errorf("%w: section with empty name", ErrInvalidSection)
		}
		if names[s.Name] {
			return fmt.Errorf("%w: section %q", ErrDuplicateSection, s.Name)
		}
		names[s.Name] = true
		if _, err := s.variants(); err != nil {
			return fmt.Errorf("section %q: %w", s.Name, err)
		}
	}

	for _, p := range f.Presets {
		if !types.IsValidSlug(p.Slug) {
			return fmt.Errorf("%w: preset %q", types.ErrInvalidSlug, p.Slug)
		}
		if _, err := p.sectionsConfig(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Slug, err)
		}
		if _, err := p.orderHint(); err != nil {
			return fmt.Errorf("preset %q: %w", p.Slug, err)
		}
	}
	return nil
}

// variantDecl is one variant declared under a section, in file order.
type variantDecl struct {
	key    string
	fields []string
}

// variants walks the variants mapping in declaration order.
func (s fileSection) variants() ([]variantDecl, error) {
	n := s.Variants
	if n.Kind == 0 || n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: variants must be a mapping", ErrInvalidSection)
	}
	out := make([]variantDecl, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var keys []string
		if err := n.Content[i+1].Decode(&keys); err != nil {
			return nil, fmt.Errorf("variant %q: %w", n.Content[i].Value, err)
		}
		out = append(out, variantDecl{key: n.Content[i].Value, fields: keys})
	}
	return out, nil
}

// sectionsConfig converts the preset's sections mapping, keeping its order.
func (p filePreset) sectionsConfig() (*types.SectionsConfig, error) {
	cfg := &types.SectionsConfig{}
	n := p.Sections
	if n.Kind == 0 || n.Tag == "!!null" {
		return cfg, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("sections must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		v, err := sectionValueFromNode(n.Content[i+1])
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", name, err)
		}
		cfg.Set(name, v)
	}
	return cfg, nil
}

func sectionValueFromNode(n *yaml.Node) (types.SectionValue, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!bool" {
			var b bool
			if err := n.Decode(&b); err != nil {
				return types.SectionValue{}, err
			}
			return types.Enabled(b), nil
		}
		return types.UseVariant(n.Value), nil
	case yaml.MappingNode:
		var obj struct {
			Enabled *bool  `yaml:"enabled"`
			Variant string `yaml:"variant"`
		}
		if err := n.Decode(&obj); err != nil {
			return types.SectionValue{}, err
		}
		return types.SectionObject(obj.Enabled == nil || *obj.Enabled, obj.Variant), nil
	default:
		return types.SectionValue{}, fmt.Errorf("unsupported section value")
	}
}

// orderHint converts the preset's [section, variant] pairs. A non-string
// second element means no variant.
func (p filePreset) orderHint() (types.OrderHint, error) {
	if len(p.Order) == 0 {
		return nil, nil
	}
	hint := make(types.OrderHint, 0, len(p.Order))
	for _, n := range p.Order {
		if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
			return nil, fmt.Errorf("order entries must be [section, variant] pairs")
		}
		e := types.OrderEntry{Section: n.Content[0].Value}
		if len(n.Content) > 1 && n.Content[1].Tag == "!!str" {
			e.Variant = n.Content[1].Value
		}
		hint = append(hint, e)
	}
	return hint, nil
}

// ReadFS parses every *.yaml and *.yml file at the root of fsys, in path
// order. Two files declaring the same category is an error.
func ReadFS(fsys fs.FS) ([]*File, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("listing catalogs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	seen := make(map[string]string, len(names))
	files := make([]*File, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		f, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		f.Path = name
		if prev, ok := seen[f.Category]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateCategory, f.Category, prev, name)
		}
		seen[f.Category] = name
		files = append(files, f)
	}
	return files, nil
}

// ReadDir parses the catalog files in dir.
func ReadDir(dir string) ([]*File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog dir %s: not a directory", dir)
	}
	files, err := ReadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		f.Path = filepath.Join(dir, f.Path)
	}
	return files, nil
}
