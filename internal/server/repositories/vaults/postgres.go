package vaults

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/dbx"
	"github.com/dmitrijs2005/vaultsync/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, username string) (*models.Vault, error) {
	query :=
		`SELECT username, verifier, data, hash, tfa_secret, created_at, updated_at
		 FROM vaults WHERE username = $1`

	v := &models.Vault{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&v.Username, &v.Verifier, &v.Data, &v.Hash, &v.TfaSecret, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Create(ctx context.Context, v *models.Vault) error {
	query :=
		`INSERT INTO vaults (username, verifier, data, hash)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (username) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, v.Username, v.Verifier, v.Data, v.Hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrorAlreadyExists)
}

func (r *PostgresRepository) CompareAndSwap(ctx context.Context, oldHash string, next *models.Vault) error {
	query :=
		`UPDATE vaults SET data = $1, hash = $2, verifier = $3, updated_at = now()
		 WHERE username = $4 AND hash = $5`

	res, err := r.db.ExecContext(ctx, query, next.Data, next.Hash, next.Verifier, next.Username, oldHash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrNotFastForward)
}

func (r *PostgresRepository) SetTfaSecret(ctx context.Context, username, secret string) error {
	query := `UPDATE vaults SET tfa_secret = $1, updated_at = now() WHERE username = $2`

	res, err := r.db.ExecContext(ctx, query, secret, username)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res, common.ErrorNotFound)
}

func expectOne(res sql.Result, otherwise error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return otherwise
	}
	return nil
}
