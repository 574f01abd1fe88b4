// Package repomanager opens the storage backend named in the server config
// and hands out its repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/dmitrijs2005/vaultsync/internal/server/repositories/vaults"
)

type RepositoryManager interface {
	Vaults() vaults.Repository
	Close() error
}

// New opens the backend selected by cfg.Storage. The PostgreSQL backend is
// migrated before it is returned.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		return NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
	case config.StorageBolt:
		return NewBoltRepositoryManager(cfg.BoltFile)
	case config.StorageMemory, "":
		return NewMemoryRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
