// Shared helpers for invitekit CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/mesh-intelligence/invitekit/internal/sqlite"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// openStore attaches the template store, seeding the catalog presets into an
// empty store. The caller must defer backend.Detach().
func (a *app) openStore(ctx context.Context) (*sqlite.Backend, types.TemplateTable, error) {
	reg, err := a.loadRegistry(ctx)
	if err != nil {
		return nil, nil, err
	}
	dataDir, err := a.dataDir()
	if err != nil {
		return nil, nil, err
	}

	cfg := types.Config{
		Backend: a.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
		Presets: reg.PresetTemplates(),
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, nil, classify(fmt.Errorf("attach store: %w", err))
	}
	table, err := backend.Templates()
	if err != nil {
		backend.Detach()
		return nil, nil, sysError(fmt.Errorf("open templates: %w", err))
	}
	a.log.Debug(ctx, "store attached", "data_dir", dataDir)
	return backend, table, nil
}

// lookupTemplate finds a template by ID when ref parses as a UUID and by
// slug otherwise.
func lookupTemplate(table types.TemplateTable, ref string) (*types.Template, error) {
	var (
		t   *types.Template
		err error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		t, err = table.Get(ref)
	} else {
		t, err = table.GetBySlug(ref)
	}
	if err != nil {
		return nil, classify(fmt.Errorf("template %q: %w", ref, err))
	}
	return t, nil
}

// readJSONCFile reads a JSON file that may carry comments and trailing
// commas and decodes it into v.
func readJSONCFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return userError(fmt.Errorf("read %s: %w", path, err))
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return userError(fmt.Errorf("parse %s: %w", path, err))
	}
	return nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	fmt.Fprintln(w, string(output))
	return nil
}
