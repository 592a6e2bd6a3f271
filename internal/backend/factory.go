package backend

import (
	"context"
	"fmt"
	"log/slog"

	"organizador/internal/storage"
	"organizador/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateGateway implements Factory.CreateGateway
func (f *DefaultFactory) CreateGateway(_ context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteGateway(config)
	case MemoryBackend:
		return f.createMemoryGateway(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteGateway(config Config) (*BackendResult, error) {
	gw, err := storage.NewSQLiteGatewayNS(config.SQLiteDBPath, config.Namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite gateway: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"namespace", config.Namespace)

	return &BackendResult{
		Gateway: gw,
		Cleanup: gw.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryGateway(config Config) (*BackendResult, error) {
	gw := memory.NewNS(config.Namespace)

	f.logger.Info("Initialized memory backend", "namespace", config.Namespace)

	return &BackendResult{
		Gateway: gw,
		Cleanup: nil,
	}, nil
}
