package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

func (a *app) newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage stored template instances",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored templates, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTemplateList(cmd, category)
		},
	}
	list.Flags().StringVar(&category, "category", "", "only templates of this category")

	var replace bool
	add := &cobra.Command{
		Use:   "add <file.jsonc>",
		Short: "Store a template read from a JSON file",
		Long: "Store a template read from a JSON file. Comments and trailing commas are allowed.\n" +
			"The file holds slug, name, category, sections, and optionally order; a missing\n" +
			"category selects the configured default.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTemplateAdd(cmd, args[0], replace)
		},
	}
	add.Flags().BoolVar(&replace, "replace", false, "replace a stored template with the same slug")

	cmd.AddCommand(list, add)
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id|slug>",
		Short: "Display a stored template",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTemplateShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|slug>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runTemplateDelete,
	})
	return cmd
}

func (a *app) runTemplateList(cmd *cobra.Command, category string) error {
	backend, table, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Detach()

	filter := types.Filter{}
	if category != "" {
		filter[types.FilterCategory] = category
	}
	templates, err := table.Fetch(filter)
	if err != nil {
		return classify(fmt.Errorf("fetch templates: %w", err))
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), templates)
	}
	newTextRenderer(cmd.OutOrStdout()).templates(templates)
	return nil
}

func (a *app) runTemplateShow(cmd *cobra.Command, args []string) error {
	backend, table, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Detach()

	t, err := lookupTemplate(table, args[0])
	if err != nil {
		return err
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), t)
	}
	newTextRenderer(cmd.OutOrStdout()).template(t)
	return nil
}

func (a *app) runTemplateAdd(cmd *cobra.Command, path string, replace bool) error {
	ctx := cmd.Context()

	var t types.Template
	if err := readJSONCFile(path, &t); err != nil {
		return err
	}
	if t.Category == "" {
		t.Category = a.config.GetString(cfgKeyCategory)
	}
	cat, err := a.catalogFor(ctx, t.Category)
	if err != nil {
		return err
	}
	a.warnUnresolved(ctx, cat, &t)

	backend, table, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer backend.Detach()

	id := t.TemplateID
	if id == "" && replace {
		existing, err := table.GetBySlug(t.Slug)
		switch {
		case err == nil:
			id = existing.TemplateID
		case !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrInvalidSlug):
			return classify(fmt.Errorf("look up %s: %w", t.Slug, err))
		}
	}

	if _, err := table.Set(id, &t); err != nil {
		return classify(fmt.Errorf("store template: %w", err))
	}
	a.log.Info(ctx, "template stored", "id", t.TemplateID, "slug", t.Slug)

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), &t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%s)\n", t.Slug, t.TemplateID)
	return nil
}

func (a *app) runTemplateDelete(cmd *cobra.Command, args []string) error {
	backend, table, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Detach()

	t, err := lookupTemplate(table, args[0])
	if err != nil {
		return err
	}
	if err := table.Delete(t.TemplateID); err != nil {
		return classify(fmt.Errorf("delete template: %w", err))
	}

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"deleted": t.TemplateID, "slug": t.Slug})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s (%s)\n", t.Slug, t.TemplateID)
	return nil
}

// warnUnresolved logs sections and variants of t that cat does not declare.
// Such entries are stored as written and ignored at resolution time.
func (a *app) warnUnresolved(ctx context.Context, cat *catalog.Catalog, t *types.Template) {
	for _, e := range t.Sections.Entries() {
		if _, ok := cat.Section(e.Name); !ok {
			a.log.Warn(ctx, "template configures unknown section", "slug", t.Slug, "section", e.Name)
			continue
		}
		if v := e.Value.Variant(); v != "" {
			if decl, ok := cat.Variant(v); !ok || decl.Section != e.Name {
				a.log.Warn(ctx, "template names undeclared variant", "slug", t.Slug, "section", e.Name, "variant", v)
			}
		}
	}
}
