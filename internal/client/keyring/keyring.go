// Package keyring keeps master secrets in the OS keyring, keyed by server
// and username.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "vaultsync"

// ErrNotFound is returned when no secret is stored for the account.
var ErrNotFound = keyring.ErrNotFound

func account(server, username string) string {
	return username + "@" + server
}

// Save stores the master secret.
func Save(server, username, secret string) error {
	return keyring.Set(serviceName, account(server, username), secret)
}

// Load returns the stored master secret or ErrNotFound.
func Load(server, username string) (string, error) {
	return keyring.Get(serviceName, account(server, username))
}

// Forget removes the stored secret. Forgetting a missing secret is not an
// error.
func Forget(server, username string) error {
	err := keyring.Delete(serviceName, account(server, username))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Has reports whether a secret is stored.
func Has(server, username string) bool {
	_, err := Load(server, username)
	return err == nil
}
