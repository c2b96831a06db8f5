// Package sqlite provides the public constructor for the SQLite template
// store while keeping its implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/invitekit/internal/sqlite"
	"github.com/mesh-intelligence/invitekit/pkg/types"
)

// NewBackend creates a new SQLite template store.
// The store is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".invitekit-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
