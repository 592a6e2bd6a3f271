package backend

import (
	"context"

	"organizador/internal/storage"
)

// CleanupFunc releases the resources a backend holds open.
type CleanupFunc func() error

// BackendResult contains the gateway instance and optional cleanup function.
type BackendResult struct {
	Gateway storage.Gateway
	Cleanup CleanupFunc
}

// Factory creates storage gateways based on configuration.
type Factory interface {
	CreateGateway(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for gateway creation.
type Config struct {
	Type      BackendType
	Namespace string

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of storage backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
