package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/invitekit/pkg/invitekit"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the invitekit version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipSetup: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "invitekit v%s\nmodule: %s\n", invitekit.Version, invitekit.ModulePath)
			return nil
		},
	}
}
