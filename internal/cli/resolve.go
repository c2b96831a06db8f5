package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/invitekit/internal/resolver"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// resolveFlags holds the flags of the resolve command.
type resolveFlags struct {
	template string
	file     string
	category string
	mode     string
}

// resolveInput is the section setup read from a --file config.
type resolveInput struct {
	Name     string                `json:"name"`
	Category string                `json:"category"`
	Sections *types.SectionsConfig `json:"sections"`
	Order    types.OrderHint       `json:"order"`
}

func (a *app) newResolveCmd() *cobra.Command {
	var rf resolveFlags
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Show the customization form of a template",
		Long: "Resolve which fields the customization form of a template shows, grouped under\n" +
			"the section that claims them first. The sections come from a stored template\n" +
			"(--template) or a JSON config file (--file, comments allowed).",
		Example: "  invitekit resolve --template romantico-floral --mode basic\n" +
			"  invitekit resolve --file setup.jsonc --category event --json",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runResolve(cmd, rf)
		},
	}
	cmd.Flags().StringVar(&rf.template, "template", "", "stored template ID or slug")
	cmd.Flags().StringVar(&rf.file, "file", "", "JSON file with sections and order")
	cmd.Flags().StringVar(&rf.category, "category", "", "catalog category (default: the template's, then config)")
	cmd.Flags().StringVar(&rf.mode, "mode", "", "editing mode: basic or full (default: config)")
	cmd.MarkFlagsMutuallyExclusive("template", "file")
	cmd.MarkFlagsOneRequired("template", "file")
	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, rf resolveFlags) error {
	ctx := cmd.Context()

	modeName := rf.mode
	if modeName == "" {
		modeName = a.config.GetString(cfgKeyMode)
	}
	mode, err := types.ParseMode(modeName)
	if err != nil {
		return userError(err)
	}

	var in resolveInput
	if rf.file != "" {
		if err := readJSONCFile(rf.file, &in); err != nil {
			return err
		}
		if in.Name == "" {
			in.Name = rf.file
		}
	} else {
		backend, table, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		t, err := lookupTemplate(table, rf.template)
		backend.Detach()
		if err != nil {
			return err
		}
		in = resolveInput{Name: t.Name, Category: t.Category, Sections: t.Sections, Order: t.Order}
	}

	category := rf.category
	if category == "" {
		category = in.Category
	}
	cat, err := a.catalogFor(ctx, category)
	if err != nil {
		return err
	}

	form := resolver.New(cat, a.log).Form(ctx, in.Sections, in.Order, mode)
	a.log.Debug(ctx, "form resolved", "groups", len(form.Groups), "fields", form.FieldCount())

	if a.flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), form)
	}
	newTextRenderer(cmd.OutOrStdout()).form(in.Name, form)
	return nil
}
