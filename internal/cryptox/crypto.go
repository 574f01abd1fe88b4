package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"
)

// Envelope identifiers.
const (
	EnvelopeVersion = 1

	CipherAES      = "aes"
	CipherXChaCha  = "xchacha20poly1305"
	ModeGCM        = "gcm"
	ModeAEAD       = "aead"
	DefaultIter    = 1000
	maxIter        = 1_000_000
	envelopeKS     = 256
	envelopeTS     = 128
	envelopeSaltSz = 16
)

// Envelope is the self-describing ciphertext format. Everything needed to
// decrypt apart from the key travels with the ciphertext, so envelopes
// written by one client build stay readable by another.
type Envelope struct {
	Version int    `json:"v"`
	Cipher  string `json:"cipher"`
	Mode    string `json:"mode"`
	Iter    int    `json:"iter"`
	KS      int    `json:"ks"`
	TS      int    `json:"ts"`
	Salt    string `json:"salt"`
	IV      string `json:"iv"`
	CT      string `json:"ct"`
}

// Options tune Encrypt. The zero value selects AES-GCM with DefaultIter.
type Options struct {
	Cipher string
	Iter   int
}

func newAEAD(cipherName, mode string, key []byte) (cipher.AEAD, error) {
	switch {
	case cipherName == CipherAES && mode == ModeGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case cipherName == CipherXChaCha && mode == ModeAEAD:
		return chacha20poly1305.NewX(key)
	default:
		return nil, fmt.Errorf("unsupported cipher %q/%q", cipherName, mode)
	}
}

func envelopeKey(key string, salt []byte, iter int) []byte {
	return pbkdf2.Key([]byte(key), salt, iter, envelopeKS/8, sha256.New)
}

// Encrypt seals plaintext under key (the derived local key) and returns the
// JSON envelope. A fresh salt and nonce are drawn for every call.
func Encrypt(key, plaintext string) (string, error) {
	return EncryptWithOptions(key, plaintext, Options{})
}

// EncryptWithOptions is Encrypt with an explicit cipher and iteration count.
func EncryptWithOptions(key, plaintext string, opts Options) (string, error) {
	env := Envelope{
		Version: EnvelopeVersion,
		Cipher:  CipherAES,
		Mode:    ModeGCM,
		Iter:    DefaultIter,
		KS:      envelopeKS,
		TS:      envelopeTS,
	}
	if opts.Cipher == CipherXChaCha {
		env.Cipher, env.Mode = CipherXChaCha, ModeAEAD
	}
	if opts.Iter > 0 {
		env.Iter = opts.Iter
	}

	salt := common.GenerateRandByteArray(envelopeSaltSz)
	k := envelopeKey(key, salt, env.Iter)
	defer common.WipeByteArray(k)

	aead, err := newAEAD(env.Cipher, env.Mode, k)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ct := aead.Seal(nil, nonce, []byte(plaintext), nil)

	env.Salt = base64.StdEncoding.EncodeToString(salt)
	env.IV = base64.StdEncoding.EncodeToString(nonce)
	env.CT = base64.StdEncoding.EncodeToString(ct)

	b, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func cannotDecrypt(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrCannotDecrypt, fmt.Sprintf(reason, args...))
}

// Decrypt opens an envelope produced by Encrypt. Every failure, whether a
// malformed envelope, a wrong key or a tampered ciphertext, is reported as
// common.ErrCannotDecrypt.
func Decrypt(key, envelope string) (string, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(envelope), &env); err != nil {
		return "", cannotDecrypt("malformed envelope: %v", err)
	}

	if env.Version != EnvelopeVersion {
		return "", cannotDecrypt("unsupported envelope version %d", env.Version)
	}
	if env.KS != envelopeKS || env.TS != envelopeTS {
		return "", cannotDecrypt("unsupported key/tag size %d/%d", env.KS, env.TS)
	}
	if env.Iter < 1 || env.Iter > maxIter {
		return "", cannotDecrypt("iteration count %d out of range", env.Iter)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return "", cannotDecrypt("bad salt: %v", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.IV)
	if err != nil {
		return "", cannotDecrypt("bad iv: %v", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.CT)
	if err != nil {
		return "", cannotDecrypt("bad ciphertext: %v", err)
	}

	k := envelopeKey(key, salt, env.Iter)
	defer common.WipeByteArray(k)

	aead, err := newAEAD(env.Cipher, env.Mode, k)
	if err != nil {
		return "", cannotDecrypt("%v", err)
	}
	if len(nonce) != aead.NonceSize() {
		return "", cannotDecrypt("iv length %d, want %d", len(nonce), aead.NonceSize())
	}

	plaintext, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", cannotDecrypt("authentication failed")
	}
	return string(plaintext), nil
}
