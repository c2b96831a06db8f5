// Text output for the invitekit CLI.
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/internal/resolver"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Column widths for tabular output.
const (
	columnWidthKey      = 28
	columnWidthType     = 14
	columnWidthCategory = 10
	columnWidthSlug     = 24
)

// theme colors, as 256-color palette indices.
var (
	colorHeader  = lipgloss.Color("75")
	colorFaint   = lipgloss.Color("245")
	colorVariant = lipgloss.Color("178")
	colorWarn    = lipgloss.Color("203")
)

// textRenderer styles output written to one writer. Writers that are not
// terminals get plain text.
type textRenderer struct {
	w        io.Writer
	header   lipgloss.Style
	faint    lipgloss.Style
	variant  lipgloss.Style
	warn     lipgloss.Style
	key      lipgloss.Style
	itype    lipgloss.Style
	category lipgloss.Style
	slug     lipgloss.Style
}

func newTextRenderer(w io.Writer) textRenderer {
	r := lipgloss.NewRenderer(w)
	return textRenderer{
		w:        w,
		header:   r.NewStyle().Foreground(colorHeader).Bold(true),
		faint:    r.NewStyle().Foreground(colorFaint),
		variant:  r.NewStyle().Foreground(colorVariant),
		warn:     r.NewStyle().Foreground(colorWarn),
		key:      r.NewStyle().Width(columnWidthKey),
		itype:    r.NewStyle().Width(columnWidthType).Foreground(colorFaint),
		category: r.NewStyle().Width(columnWidthCategory).Foreground(colorFaint),
		slug:     r.NewStyle().Width(columnWidthSlug),
	}
}

// form prints a resolved form as an outline of section headings and their
// fields. title names what was resolved.
func (tr textRenderer) form(title string, f resolver.Form) {
	fmt.Fprintln(tr.w, tr.header.Render(title)+" "+
		tr.faint.Render(fmt.Sprintf("(%s, %s mode, %d fields)", f.Category, f.Mode, f.FieldCount())))
	if len(f.Groups) == 0 {
		fmt.Fprintln(tr.w, tr.faint.Render("  no active sections"))
		return
	}
	for _, g := range f.Groups {
		heading := g.Section.Name
		if g.Section.Label != "" {
			heading = g.Section.Label + " " + tr.faint.Render("("+g.Section.Name+")")
		}
		line := "▸ " + heading
		if g.Variant != "" {
			line += " " + tr.variant.Render("["+g.Variant+"]")
		}
		fmt.Fprintln(tr.w, line)
		for _, field := range g.Fields {
			tr.fieldRow("    ", field)
		}
	}
}

func (tr textRenderer) fieldRow(indent string, f types.FieldDefinition) {
	row := indent + tr.key.Render(f.Key) + tr.itype.Render(string(f.InputType)) + tr.category.Render(f.Category) + f.Label
	if c := f.Constraints; c != nil {
		var parts []string
		if c.MaxLength > 0 {
			parts = append(parts, fmt.Sprintf("max %d chars", c.MaxLength))
		}
		if c.MaxItems > 0 {
			parts = append(parts, fmt.Sprintf("max %d items", c.MaxItems))
		}
		row += " " + tr.faint.Render("("+strings.Join(parts, ", ")+")")
	}
	fmt.Fprintln(tr.w, row)
}

// catalogs prints one line per category.
func (tr textRenderer) catalogs(summaries []catalogSummary) {
	for _, s := range summaries {
		line := tr.slug.Render(s.Category) + s.Label
		if s.Extends != "" {
			line += " " + tr.faint.Render("extends "+s.Extends)
		}
		line += " " + tr.faint.Render(fmt.Sprintf("(%d fields, %d sections, %d presets)", s.Fields, s.Sections, s.Presets))
		fmt.Fprintln(tr.w, line)
	}
}

// sections prints the sections of cat with their default fields and
// variants.
func (tr textRenderer) sections(cat *catalog.Catalog) {
	for _, s := range cat.Sections() {
		fmt.Fprintln(tr.w, tr.header.Render(s.Label)+" "+tr.faint.Render("("+s.Name+")"))
		fmt.Fprintln(tr.w, "    defaults: "+strings.Join(s.DefaultFieldKeys, ", "))
		for _, vk := range cat.SectionVariants(s.Name) {
			v, _ := cat.Variant(vk)
			fmt.Fprintln(tr.w, "    "+tr.variant.Render(vk)+": "+strings.Join(v.FieldKeys, ", "))
		}
	}
}

// fields prints the field table of cat. Basic-mode fields are marked with *.
func (tr textRenderer) fields(cat *catalog.Catalog) {
	for _, f := range cat.Fields() {
		marker := "  "
		if cat.IsBasic(f.Key) {
			marker = "* "
		}
		tr.fieldRow(marker, f)
	}
}

// issues prints catalog validation issues.
func (tr textRenderer) issues(issues []catalog.Issue) {
	for _, issue := range issues {
		fmt.Fprintln(tr.w, tr.warn.Render(issue.String()))
	}
}

// templates prints one line per stored template.
func (tr textRenderer) templates(templates []*types.Template) {
	if len(templates) == 0 {
		fmt.Fprintln(tr.w, tr.faint.Render("no templates"))
		return
	}
	for _, t := range templates {
		fmt.Fprintln(tr.w, tr.slug.Render(t.Slug)+tr.category.Render(t.Category)+t.Name+" "+tr.faint.Render(t.TemplateID))
	}
}

// template prints one stored template with its section configuration.
func (tr textRenderer) template(t *types.Template) {
	fmt.Fprintln(tr.w, tr.header.Render(t.Name)+" "+tr.faint.Render("("+t.Slug+")"))
	fmt.Fprintf(tr.w, "id:       %s\n", t.TemplateID)
	fmt.Fprintf(tr.w, "category: %s\n", t.Category)
	fmt.Fprintf(tr.w, "created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tr.w, "updated:  %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(tr.w, "sections:")
	for _, e := range t.Sections.Entries() {
		state := "off"
		if e.Value.Active() {
			state = "on"
		}
		line := "    " + tr.key.Render(e.Name) + state
		if v := e.Value.Variant(); v != "" {
			line += " " + tr.variant.Render("["+v+"]")
		}
		fmt.Fprintln(tr.w, line)
	}
	if len(t.Order) > 0 {
		names := make([]string, len(t.Order))
		for i, e := range t.Order {
			names[i] = e.Section
		}
		fmt.Fprintln(tr.w, "order:    "+strings.Join(names, " > "))
	}
}
