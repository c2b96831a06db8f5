// Package paths resolves the configuration, data, and catalog directories
// used by invitekit.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration subdirectory.
const AppName = "invitekit"

// ConfigFileName is the configuration file read from the config directory.
const ConfigFileName = "config.yaml"

// DefaultDataDirName is the CWD-relative data directory used when nothing
// else selects one.
const DefaultDataDirName = ".invitekit-db"

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "INVITEKIT_CONFIG_DIR"
	EnvDataDir    = "INVITEKIT_DATA_DIR"
	EnvCatalogDir = "INVITEKIT_CATALOG_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/invitekit (fallback ~/.config/invitekit)
// macOS:   ~/Library/Application Support/invitekit
// Windows: %APPDATA%/invitekit
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// ConfigFile returns the path of the configuration file inside dir.
func ConfigFile(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > INVITEKIT_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if dir, ok := firstSet(flag, os.Getenv(EnvConfigDir)); ok {
		return filepath.Abs(dir)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the template store directory following the
// precedence chain: flag > config.yaml value > INVITEKIT_DATA_DIR env >
// $(CWD)/.invitekit-db.
func ResolveDataDir(flag, configValue string) (string, error) {
	if dir, ok := firstSet(flag, configValue, os.Getenv(EnvDataDir)); ok {
		return filepath.Abs(dir)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveCatalogDir returns the directory of extra catalog files following
// the precedence chain: flag > config.yaml value > INVITEKIT_CATALOG_DIR env.
// It returns "" when none is set, meaning only built-in catalogs load.
func ResolveCatalogDir(flag, configValue string) (string, error) {
	if dir, ok := firstSet(flag, configValue, os.Getenv(EnvCatalogDir)); ok {
		return filepath.Abs(dir)
	}
	return "", nil
}

func firstSet(values ...string) (string, bool) {
	for _, v := range values {
		if v != "" {
			return v, true
		}
	}
	return "", false
}
