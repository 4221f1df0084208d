package backend

import (
	"context"
	"fmt"

	"finestra/internal/log"
	"finestra/internal/persist/localcache"
	"finestra/internal/persist/remote"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory.
func NewFactory(logger *log.Logger) Factory {
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case LocalBackend:
		return f.createLocalBackend(config)
	case RemoteBackend:
		return f.createRemoteBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createLocalBackend(config Config) (*Result, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	cache, err := localcache.New(dataDir, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize local cache backend: %w", err)
	}

	f.logger.Info("initialized local cache backend", "data_directory", dataDir)
	return &Result{Backend: cache, Cleanup: cache.Close}, nil
}

func (f *DefaultFactory) createRemoteBackend(config Config) (*Result, error) {
	store, err := remote.New(config.SQLiteDBPath, config.AccountID, f.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize remote backend: %w", err)
	}

	f.logger.Info("initialized remote backend",
		"db_path", config.SQLiteDBPath,
		log.FieldAccountID, config.AccountID)
	return &Result{Backend: store, Cleanup: store.Close}, nil
}

// Validate checks that the configuration is complete for the chosen type.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RemoteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for remote backend")
		}
		if c.AccountID == "" {
			return fmt.Errorf("account id is required for remote backend")
		}
	case LocalBackend:
		// DataDirectory defaults to "data" when empty.
	}

	return nil
}
