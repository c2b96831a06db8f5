// Config loading for the invitekit CLI.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/internal/logging"
	"github.com/mesh-intelligence/invitekit/internal/paths"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "INVITEKIT"

	cfgKeyBackend    = "backend"
	cfgKeyDataDir    = "data_dir"
	cfgKeyCatalogDir = "catalog_dir"
	cfgKeyCategory   = "category"
	cfgKeyMode       = "mode"
	cfgKeyLogLevel   = "log_level"
	cfgKeyLogFormat  = "log_format"

	defaultCategory  = "wedding"
	defaultLogLevel  = "warn"
	defaultLogFormat = "text"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# invitekit configuration

# Backend selection
backend: sqlite

# Template store directory (optional; overridable by --data-dir flag)
# data_dir:

# Directory of extra catalog YAML files (optional; overridable by --catalog-dir flag)
# catalog_dir:

# Category used when a template or config file names none
category: wedding

# Editing mode for resolve: basic or full
mode: full

# Logging: level debug|info|warn|error, format text|json
log_level: warn
log_format: text
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run. A missing
// config.yaml is not an error. Keys other than the directories can be
// overridden with INVITEKIT_<KEY> environment variables.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}

	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyCategory, defaultCategory)
	v.SetDefault(cfgKeyMode, string(types.ModeFull))
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	// Directory keys follow the flag > config > env chain in internal/paths,
	// so only the remaining keys are bound to the environment here.
	v.SetEnvPrefix(envPrefix)
	for _, key := range []string{cfgKeyBackend, cfgKeyCategory, cfgKeyMode, cfgKeyLogLevel, cfgKeyLogFormat} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// setup loads the configuration and builds the logger for cmd.
func (a *app) setup(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return sysError(fmt.Errorf("load config: %w", err))
	}

	level := a.flags.logLevel
	if level == "" {
		level = v.GetString(cfgKeyLogLevel)
	}
	log, err := logging.New(level, v.GetString(cfgKeyLogFormat), cmd.ErrOrStderr())
	if err != nil {
		return userError(fmt.Errorf("configure logging: %w", err))
	}

	a.configDir = configDir
	a.config = v
	a.log = log
	a.log.Debug(cmd.Context(), "config loaded", "config_dir", configDir)
	return nil
}

// dataDir resolves the template store directory.
func (a *app) dataDir() (string, error) {
	dir, err := paths.ResolveDataDir(a.flags.dataDir, a.config.GetString(cfgKeyDataDir))
	if err != nil {
		return "", sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return dir, nil
}

// loadRegistry builds the catalog registry once per command run. Catalog
// files supplied by the user that fail to load are user errors.
func (a *app) loadRegistry(ctx context.Context) (*catalog.Registry, error) {
	if a.registry != nil {
		return a.registry, nil
	}
	dir, err := paths.ResolveCatalogDir(a.flags.catalogDir, a.config.GetString(cfgKeyCatalogDir))
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve catalog dir: %w", err))
	}
	reg, err := catalog.Load(dir)
	if err != nil {
		return nil, userError(fmt.Errorf("load catalogs: %w", err))
	}
	a.log.Debug(ctx, "catalogs loaded", "catalog_dir", dir, "categories", reg.Categories())
	a.registry = reg
	return reg, nil
}

// catalogFor returns the catalog of category, falling back to the
// configured default category when category is empty.
func (a *app) catalogFor(ctx context.Context, category string) (*catalog.Catalog, error) {
	reg, err := a.loadRegistry(ctx)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = a.config.GetString(cfgKeyCategory)
	}
	cat, err := reg.Catalog(category)
	if err != nil {
		return nil, userError(err)
	}
	return cat, nil
}
