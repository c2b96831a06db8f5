package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// catalogSummary is one line of "catalog list".
type catalogSummary struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Extends  string `json:"extends,omitempty"`
	Fields   int    `json:"fields"`
	Sections int    `json:"sections"`
	Presets  int    `json:"presets"`
}

// sectionDetail is one entry of "catalog sections --json".
type sectionDetail struct {
	types.SectionDefinition
	Variants []types.VariantFieldSet `json:"variants"`
}

// fieldDetail is one entry of "catalog fields --json".
type fieldDetail struct {
	types.FieldDefinition
	Basic bool `json:"basic"`
}

func (a *app) newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the field and section catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List catalog categories",
		Args:  cobra.NoArgs,
		RunE:  a.runCatalogList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "sections [category]",
		Short: "Show the sections of a category with their variants",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runCatalogSections,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "fields [category]",
		Short: "Show the field table of a category",
		Long:  "Show the field table of a category. Fields shown in basic mode are marked with *.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runCatalogFields,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate [category...]",
		Short: "Report catalog references that do not resolve",
		Long: "Report section or variant field keys without a definition, fields listed under\n" +
			"sections that do not own them, and presets naming unknown sections or variants.\n" +
			"Exits with status 1 when any issue is found. Validates every category by default.",
		RunE: a.runCatalogValidate,
	})
	return cmd
}

func (a *app) runCatalogList(cmd *cobra.Command, args []string) error {
	reg, err := a.loadRegistry(cmd.Context())
	if err != nil {
		return err
	}
	summaries := []catalogSummary{}
	for _, category := range reg.Categories() {
		cat, err := reg.Catalog(category)
		if err != nil {
			return sysError(err)
		}
		summaries = append(summaries, catalogSummary{
			Category: category,
			Label:    cat.Label(),
			Extends:  cat.Parent(),
			Fields:   len(cat.Fields()),
			Sections: len(cat.Sections()),
			Presets:  len(cat.Presets()),
		})
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), summaries)
	}
	newTextRenderer(cmd.OutOrStdout()).catalogs(summaries)
	return nil
}

func (a *app) runCatalogSections(cmd *cobra.Command, args []string) error {
	cat, err := a.catalogFor(cmd.Context(), optionalArg(args))
	if err != nil {
		return err
	}

	if a.flags.jsonMode {
		details := []sectionDetail{}
		for _, s := range cat.Sections() {
			d := sectionDetail{SectionDefinition: s, Variants: []types.VariantFieldSet{}}
			for _, vk := range cat.SectionVariants(s.Name) {
				v, _ := cat.Variant(vk)
				d.Variants = append(d.Variants, v)
			}
			details = append(details, d)
		}
		return writeJSON(cmd.OutOrStdout(), details)
	}
	newTextRenderer(cmd.OutOrStdout()).sections(cat)
	return nil
}

func (a *app) runCatalogFields(cmd *cobra.Command, args []string) error {
	cat, err := a.catalogFor(cmd.Context(), optionalArg(args))
	if err != nil {
		return err
	}

	if a.flags.jsonMode {
		details := []fieldDetail{}
		for _, f := range cat.Fields() {
			details = append(details, fieldDetail{FieldDefinition: f, Basic: cat.IsBasic(f.Key)})
		}
		return writeJSON(cmd.OutOrStdout(), details)
	}
	newTextRenderer(cmd.OutOrStdout()).fields(cat)
	return nil
}

func (a *app) runCatalogValidate(cmd *cobra.Command, args []string) error {
	reg, err := a.loadRegistry(cmd.Context())
	if err != nil {
		return err
	}
	categories := args
	if len(categories) == 0 {
		categories = reg.Categories()
	}

	issues := []catalog.Issue{}
	for _, category := range categories {
		cat, err := reg.Catalog(category)
		if err != nil {
			return userError(err)
		}
		issues = append(issues, cat.Validate()...)
	}

	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		if err := writeJSON(out, issues); err != nil {
			return err
		}
	} else if len(issues) == 0 {
		fmt.Fprintf(out, "%d catalogs ok\n", len(categories))
	} else {
		newTextRenderer(out).issues(issues)
	}

	if len(issues) > 0 {
		return userError(fmt.Errorf("found %d catalog issues", len(issues)))
	}
	return nil
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
