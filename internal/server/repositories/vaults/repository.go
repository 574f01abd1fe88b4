// Package vaults stores one Vault per username. Every backend implements
// the same compare-and-swap contract so the service can accept a push only
// when the stored fingerprint is still the one the client started from.
package vaults

import (
	"context"

	"github.com/dmitrijs2005/vaultsync/internal/server/models"
)

// Repository persists vaults.
//
// Get returns common.ErrorNotFound for an unknown user. Create returns
// common.ErrorAlreadyExists when the user exists. CompareAndSwap replaces
// data, hash and verifier of next.Username only while the stored hash
// equals oldHash, otherwise it returns common.ErrNotFastForward and leaves
// the record untouched.
type Repository interface {
	Get(ctx context.Context, username string) (*models.Vault, error)
	Create(ctx context.Context, v *models.Vault) error
	CompareAndSwap(ctx context.Context, oldHash string, next *models.Vault) error
	SetTfaSecret(ctx context.Context, username, secret string) error
}
