package cryptox

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// DefaultDifficulty is the PBKDF2 iteration count used when the server does
// not announce one.
const DefaultDifficulty = 32768

// KeySize is the length in bytes of derived keys before hex encoding.
const KeySize = 32

// KDFParams are the per-deployment inputs of key derivation. Salts are not
// secret; they are published by the server's config endpoint.
type KDFParams struct {
	LocalSalt  string
	RemoteSalt string
	Difficulty int
}

// LegacyParams builds parameters for servers that do not publish salts: the
// username is the only salt for both keys.
func LegacyParams(username string, difficulty int) KDFParams {
	return KDFParams{LocalSalt: username, RemoteSalt: username, Difficulty: difficulty}
}

func (p KDFParams) iterations() int {
	if p.Difficulty <= 0 {
		return DefaultDifficulty
	}
	return p.Difficulty
}

// Keys is the pair of keys derived from one master secret.
type Keys struct {
	Local  string
	Remote string
}

// halves returns the hex encoding of the two disjoint halves of
// SHA-512(secret). The local key is derived from the first, the remote key
// from the second, so a leaked remote key reveals nothing about the local one.
func halves(secret []byte) (string, string) {
	sum := sha512.Sum512(secret)
	return hex.EncodeToString(sum[:sha512.Size/2]), hex.EncodeToString(sum[sha512.Size/2:])
}

func salt(deploymentSalt, username string) []byte {
	if username == "" {
		return []byte(deploymentSalt)
	}
	return []byte(deploymentSalt + "|" + username)
}

func stretch(preimage string, salt []byte, iterations int) string {
	key := pbkdf2.Key([]byte(preimage), salt, iterations, KeySize, sha256.New)
	return hex.EncodeToString(key)
}

// DeriveLocalKey returns the encryption key for secret. username is optional
// and mixed into the salt when non-empty.
func DeriveLocalKey(secret []byte, username string, p KDFParams) string {
	first, _ := halves(secret)
	return stretch(first, salt(p.LocalSalt, username), p.iterations())
}

// DeriveRemoteKey returns the server authentication key for secret.
func DeriveRemoteKey(secret []byte, username string, p KDFParams) string {
	_, second := halves(secret)
	return stretch(second, salt(p.RemoteSalt, username), p.iterations())
}

// DeriveKeys derives both keys at once.
func DeriveKeys(secret []byte, username string, p KDFParams) Keys {
	return Keys{
		Local:  DeriveLocalKey(secret, username, p),
		Remote: DeriveRemoteKey(secret, username, p),
	}
}
