package repomanager

import "github.com/dmitrijs2005/vaultsync/internal/server/repositories/vaults"

// MemoryRepositoryManager loses everything on exit. Used for demos and tests.
type MemoryRepositoryManager struct {
	vaults *vaults.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{vaults: vaults.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Vaults() vaults.Repository {
	return m.vaults
}

func (m *MemoryRepositoryManager) Close() error {
	return nil
}
