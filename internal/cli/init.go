package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/invitekit/internal/paths"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// configFile holds the settings init writes to a fresh config.yaml.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	CatalogDir string `yaml:"catalog_dir,omitempty"`
	Category   string `yaml:"category"`
	Mode       string `yaml:"mode"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Initialize invitekit configuration and storage",
		Long:        "Create the configuration and data directories, then attach the template store once,\nseeding the catalog presets into an empty store.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: ""},
		RunE:        a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	// Directories given as flags are recorded so later runs find them.
	cfg := configFile{
		Backend:    types.BackendSQLite,
		DataDir:    a.flags.dataDir,
		CatalogDir: a.flags.catalogDir,
		Category:   defaultCategory,
		Mode:       string(types.ModeFull),
		LogLevel:   defaultLogLevel,
		LogFormat:  defaultLogFormat,
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir), cfg); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	if err := a.setup(cmd); err != nil {
		return err
	}

	backend, table, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer backend.Detach()

	templates, err := table.Fetch(nil)
	if err != nil {
		return sysError(fmt.Errorf("count templates: %w", err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "invitekit initialized successfully")
	fmt.Fprintf(out, "config: %s\n", paths.ConfigFile(configDir))
	fmt.Fprintf(out, "data: %s\n", backend.DataDir())
	fmt.Fprintf(out, "templates: %d\n", len(templates))
	return nil
}

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string, cfg configFile) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
