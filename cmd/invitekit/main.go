// Command invitekit inspects template catalogs, stores template instances,
// and resolves their customization forms.
package main

import (
	"os"

	"github.com/mesh-intelligence/invitekit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
