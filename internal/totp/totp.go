// Package totp wraps github.com/pquerna/otp with the usual
// authenticator-app parameters: HMAC-SHA1, 6 digits, 30 s step, and codes
// from the neighbouring steps accepted for clock skew.
package totp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	Step      = 30 * time.Second
	Digits    = 6
	Issuer    = "vaultsync"
	secretLen = 20
)

var opts = totp.ValidateOpts{
	Period:    uint(Step / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// NewKey creates a fresh secret for account. The key renders as the
// otpauth:// URI authenticator apps import.
func NewKey(account string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: account,
		Period:      opts.Period,
		SecretSize:  secretLen,
		Digits:      opts.Digits,
		Algorithm:   opts.Algorithm,
	})
}

// GenerateSecret returns a fresh base32 secret. It panics if the system
// random source fails.
func GenerateSecret() string {
	k, err := NewKey(Issuer)
	if err != nil {
		panic(err)
	}
	return k.Secret()
}

// ValidSecret reports whether secret decodes as base32.
func ValidSecret(secret string) bool {
	if secret == "" {
		return false
	}
	_, err := Code(secret, time.Unix(0, 0))
	return err == nil
}

// Code returns the code for secret at t.
func Code(secret string, t time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, t, opts)
}

// Verify checks code against secret at t, allowing one step of skew.
func Verify(code, secret string, t time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, t, opts)
	return err == nil && ok
}
