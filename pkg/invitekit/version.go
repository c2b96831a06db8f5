// Package invitekit carries build metadata for the invitekit module.
package invitekit

// Version is the current release of invitekit.
const Version = "0.1.0"

// ModulePath is the Go module path of invitekit.
const ModulePath = "github.com/mesh-intelligence/invitekit"
