package repomanager

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/server/repositories/vaults"
	bolt "go.etcd.io/bbolt"
)

// BoltRepositoryManager keeps everything in a single bbolt file.
type BoltRepositoryManager struct {
	db     *bolt.DB
	vaults *vaults.BoltRepository
}

func NewBoltRepositoryManager(path string) (*BoltRepositoryManager, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open %s: %w", path, err)
	}

	repo, err := vaults.NewBoltRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltRepositoryManager{db: db, vaults: repo}, nil
}

func (m *BoltRepositoryManager) Vaults() vaults.Repository {
	return m.vaults
}

func (m *BoltRepositoryManager) Close() error {
	return m.db.Close()
}
