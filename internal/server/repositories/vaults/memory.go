package vaults

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/server/models"
)

// MemoryRepository is a map guarded by a mutex. Records are copied on the
// way in and out.
type MemoryRepository struct {
	mu     sync.Mutex
	vaults map[string]*models.Vault
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{vaults: map[string]*models.Vault{}, now: time.Now}
}

func (r *MemoryRepository) Get(ctx context.Context, username string) (*models.Vault, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vaults[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, v *models.Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vaults[v.Username]; ok {
		return common.ErrorAlreadyExists
	}
	rec := v.Clone()
	rec.CreatedAt = r.now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	r.vaults[v.Username] = rec
	return nil
}

func (r *MemoryRepository) CompareAndSwap(ctx context.Context, oldHash string, next *models.Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.vaults[next.Username]
	if !ok {
		return common.ErrorNotFound
	}
	if cur.Hash != oldHash {
		return common.ErrNotFastForward
	}
	cur.Data, cur.Hash = next.Data, next.Hash
	cur.Verifier = append([]byte(nil), next.Verifier...)
	cur.UpdatedAt = r.now().UTC()
	return nil
}

func (r *MemoryRepository) SetTfaSecret(ctx context.Context, username, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.vaults[username]
	if !ok {
		return common.ErrorNotFound
	}
	cur.TfaSecret = secret
	cur.UpdatedAt = r.now().UTC()
	return nil
}
