// Package backend selects and constructs the persistence backend. The
// mode is chosen once at startup and never changes for the life of the
// session; there is no migration path between modes.
package backend

import (
	"context"

	"finestra/internal/persist"
)

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the backend instance and optional cleanup function.
type Result struct {
	Backend persist.Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// Local-cache specific
	DataDirectory string

	// Remote specific
	SQLiteDBPath string
	AccountID    string
}

// Type represents the persistence mode.
type Type string

const (
	// LocalBackend keeps session state in per-entry JSON files with no
	// account boundary.
	LocalBackend Type = "local"
	// RemoteBackend keeps session state in SQLite keyed by account id.
	RemoteBackend Type = "remote"
)

// String implements fmt.Stringer.
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid.
func (t Type) IsValid() bool {
	switch t {
	case LocalBackend, RemoteBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types.
func Types() []Type {
	return []Type{LocalBackend, RemoteBackend}
}
