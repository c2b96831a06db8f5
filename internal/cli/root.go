// Package cli implements the invitekit command-line interface.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/invitekit/internal/catalog"
	"github.com/mesh-intelligence/invitekit/internal/logging"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// skipSetup marks commands that run without loading config.yaml.
const skipSetup = "invitekit/skip-setup"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	catalogDir string
	jsonMode   bool
	logLevel   string
}

// app is the state shared by the commands of one root command.
type app struct {
	flags     rootFlags
	configDir string
	config    *viper.Viper
	log       logging.Logger
	registry  *catalog.Registry
}

// NewRootCmd creates the top-level "invitekit" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logging.Discard()}

	root := &cobra.Command{
		Use:   "invitekit",
		Short: "Resolve the customization form of invitation templates",
		Long: "invitekit reads the field, section, and variant catalogs of each template category,\n" +
			"stores template instances, and resolves which fields their customization form shows.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipSetup]; ok {
				return nil
			}
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (env INVITEKIT_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "template store directory (default: .invitekit-db)")
	root.PersistentFlags().StringVar(&a.flags.catalogDir, "catalog-dir", "", "directory of extra catalog files")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError(err)
	})

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newCatalogCmd())
	root.AddCommand(a.newTemplateCmd())
	root.AddCommand(a.newResolveCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return ExitCode(NewRootCmd().Execute())
}

// exitError carries the exit code a failure maps to.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// ExitCode maps an error returned by the root command to an exit code.
// Errors not marked otherwise come from cobra argument or flag checks and
// are user errors.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitUserError
}

// userSentinels are the errors caused by bad input rather than a failing
// system.
var userSentinels = []error{
	types.ErrNotFound,
	types.ErrInvalidID,
	types.ErrInvalidData,
	types.ErrInvalidName,
	types.ErrInvalidSlug,
	types.ErrInvalidCategory,
	types.ErrDuplicateSlug,
	types.ErrInvalidFilter,
	types.ErrInvalidMode,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	catalog.ErrUnknownCategory,
	logging.ErrInvalidLevel,
	logging.ErrInvalidFormat,
}

// classify marks err as a user error when it wraps one of userSentinels and
// as a system error otherwise.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, s := range userSentinels {
		if errors.Is(err, s) {
			return userError(err)
		}
	}
	return sysError(err)
}
