package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// Fingerprint returns a keyed digest of plaintext. It costs as much as key
// derivation so a leaked digest cannot be used to brute-force localKey.
//
// The server compares fingerprints but never sees plaintext.
func Fingerprint(plaintext, localKey string, difficulty int) string {
	if difficulty <= 0 {
		difficulty = DefaultDifficulty
	}
	sum := pbkdf2.Key([]byte(plaintext), []byte(localKey), difficulty, KeySize, sha256.New)
	return hex.EncodeToString(sum)
}
