package catalog

import (
	"embed"
	"io/fs"
)

//go:embed catalogs/*.yaml
var builtinFS embed.FS

// Builtin parses the catalogs compiled into the binary.
func Builtin() ([]*File, error) {
	sub, err := fs.Sub(builtinFS, "catalogs")
	if err != nil {
		return nil, err
	}
	return ReadFS(sub)
}
