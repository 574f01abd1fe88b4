package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/client/client"
	"github.com/dmitrijs2005/vaultsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/dbx"
)

const (
	keyConfig      = "config"
	keyEnvelope    = "envelope"
	keyFingerprint = "fingerprint"
)

// CachedVault is what the cache keeps per user: the server's public config
// and the last ciphertext seen, never plaintext.
type CachedVault struct {
	Config      client.ServerConfig
	Envelope    string
	Fingerprint string
}

// Cache persists CachedVault records in the metadata table, scoped by
// server and username.
type Cache struct {
	db     *sql.DB
	server string
}

// NewCache returns a cache for vaults of server stored in db.
func NewCache(db *sql.DB, server string) *Cache {
	return &Cache{db: db, server: server}
}

func (c *Cache) prefix(username string) string {
	return fmt.Sprintf("vault/%s/%s/", c.server, username)
}

// Save writes v for username in a single transaction.
func (c *Cache) Save(ctx context.Context, username string, v CachedVault) error {
	cfg, err := json.Marshal(v.Config)
	if err != nil {
		return err
	}
	p := c.prefix(username)

	return dbx.WithTx(ctx, c.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, p+keyConfig, cfg); err != nil {
			return err
		}
		if err := repo.Set(ctx, p+keyEnvelope, []byte(v.Envelope)); err != nil {
			return err
		}
		return repo.Set(ctx, p+keyFingerprint, []byte(v.Fingerprint))
	})
}

// Load returns the cached vault of username or common.ErrorNotFound.
func (c *Cache) Load(ctx context.Context, username string) (*CachedVault, error) {
	values, err := metadata.NewSQLiteRepository(c.db).List(ctx, c.prefix(username))
	if err != nil {
		return nil, err
	}

	p := c.prefix(username)
	cfg, ok := values[p+keyConfig]
	if !ok {
		return nil, fmt.Errorf("cached vault for %s: %w", username, common.ErrorNotFound)
	}

	v := &CachedVault{
		Envelope:    string(values[p+keyEnvelope]),
		Fingerprint: string(values[p+keyFingerprint]),
	}
	if err := json.Unmarshal(cfg, &v.Config); err != nil {
		return nil, fmt.Errorf("cached config for %s: %w", username, err)
	}
	return v, nil
}

// Forget removes everything cached for username.
func (c *Cache) Forget(ctx context.Context, username string) error {
	return metadata.NewSQLiteRepository(c.db).Clear(ctx, c.prefix(username))
}
