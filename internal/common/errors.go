// Package common defines shared constants and sentinel errors used across
// client and server layers of vaultsync. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Session errors.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Transport errors.
	ErrNetwork              = errors.New("network error")
	ErrBadServerResponse    = errors.New("bad server response")
	ErrBadRemoteCredentials = errors.New("bad remote credentials")
	ErrNotFastForward       = errors.New("not fast-forward")
	ErrDemoMode             = errors.New("server is in demo mode")

	// Cryptographic errors. Never retry with the same key.
	ErrCannotDecrypt = errors.New("cannot decrypt")

	// Record store errors.
	ErrDuplicateEntry        = errors.New("duplicate entry")
	ErrFormatVersionMismatch = errors.New("format version mismatch")
	ErrNoSuchEntry           = errors.New("no such entry")
	ErrIrreconcilableMerge   = errors.New("irreconcilable merge")

	// Two-factor errors. ErrTfaRequired is the challenge variant of ErrTfaFailed.
	ErrTfaFailed        = errors.New("two-factor authentication failed")
	ErrTfaConfirmFailed = errors.New("two-factor confirmation failed")
	ErrTfaRequired      = fmt.Errorf("%w: code required", ErrTfaFailed)

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	ErrRateLimited = errors.New("rate limited")
)
