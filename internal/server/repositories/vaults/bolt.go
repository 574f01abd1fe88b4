package vaults

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/server/models"
	bolt "go.etcd.io/bbolt"
)

var bucketVaults = []byte("vaults")

// BoltRepository keeps each vault as a JSON value keyed by username in a
// single bbolt bucket. bbolt serializes writers, which makes the
// read-check-write of CompareAndSwap atomic.
type BoltRepository struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBoltRepository creates the bucket if needed.
func NewBoltRepository(db *bolt.DB) (*BoltRepository, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVaults)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}
	return &BoltRepository{db: db, now: time.Now}, nil
}

func load(b *bolt.Bucket, username string) (*models.Vault, error) {
	raw := b.Get([]byte(username))
	if raw == nil {
		return nil, common.ErrorNotFound
	}
	v := &models.Vault{}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, fmt.Errorf("bolt: decode %s: %w", username, err)
	}
	return v, nil
}

func store(b *bolt.Bucket, v *models.Vault) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(v.Username), raw)
}

func (r *BoltRepository) Get(ctx context.Context, username string) (*models.Vault, error) {
	var v *models.Vault
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		v, err = load(tx.Bucket(bucketVaults), username)
		return err
	})
	return v, err
}

func (r *BoltRepository) Create(ctx context.Context, v *models.Vault) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVaults)
		if b.Get([]byte(v.Username)) != nil {
			return common.ErrorAlreadyExists
		}
		rec := v.Clone()
		rec.CreatedAt = r.now().UTC()
		rec.UpdatedAt = rec.CreatedAt
		return store(b, rec)
	})
}

func (r *BoltRepository) CompareAndSwap(ctx context.Context, oldHash string, next *models.Vault) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVaults)
		cur, err := load(b, next.Username)
		if err != nil {
			return err
		}
		if cur.Hash != oldHash {
			return common.ErrNotFastForward
		}
		cur.Data, cur.Hash = next.Data, next.Hash
		cur.Verifier = append([]byte(nil), next.Verifier...)
		cur.UpdatedAt = r.now().UTC()
		return store(b, cur)
	})
}

func (r *BoltRepository) SetTfaSecret(ctx context.Context, username, secret string) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketVaults)
		cur, err := load(b, username)
		if err != nil {
			return err
		}
		cur.TfaSecret = secret
		cur.UpdatedAt = r.now().UTC()
		return store(b, cur)
	})
}
