package cryptox

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// low difficulty keeps the suite fast; the algorithm is the same
var testParams = KDFParams{LocalSalt: "local-salt", RemoteSalt: "remote-salt", Difficulty: 64}

func TestDeriveKeys_Deterministic(t *testing.T) {
	secret := []byte("secret-password")

	k1 := DeriveKeys(secret, "alice", testParams)
	k2 := DeriveKeys(secret, "alice", testParams)

	require.Equal(t, k1, k2)
	assert.Len(t, k1.Local, KeySize*2)
	assert.Len(t, k1.Remote, KeySize*2)
	assert.Regexp(t, `^[0-9a-f]+$`, k1.Local)
	assert.Regexp(t, `^[0-9a-f]+$`, k1.Remote)
}

func TestDeriveKeys_LocalAndRemoteDiffer(t *testing.T) {
	k := DeriveKeys([]byte("pw"), "alice", testParams)
	assert.NotEqual(t, k.Local, k.Remote)

	// identical salts still give different keys: the pre-images are disjoint
	legacy := DeriveKeys([]byte("pw"), "", LegacyParams("alice", 64))
	assert.NotEqual(t, legacy.Local, legacy.Remote)
}

func TestDeriveKeys_DifferentSecrets(t *testing.T) {
	a := DeriveLocalKey([]byte("secret-a"), "alice", testParams)
	b := DeriveLocalKey([]byte("secret-b"), "alice", testParams)
	assert.NotEqual(t, a, b)
}

func TestDeriveKeys_InputsChangeOutput(t *testing.T) {
	base := DeriveKeys([]byte("pw"), "alice", testParams)

	otherUser := DeriveKeys([]byte("pw"), "bob", testParams)
	assert.NotEqual(t, base.Local, otherUser.Local)

	p := testParams
	p.LocalSalt = "another"
	otherSalt := DeriveKeys([]byte("pw"), "alice", p)
	assert.NotEqual(t, base.Local, otherSalt.Local)
	assert.Equal(t, base.Remote, otherSalt.Remote)

	p = testParams
	p.Difficulty = 65
	otherCost := DeriveKeys([]byte("pw"), "alice", p)
	assert.NotEqual(t, base.Local, otherCost.Local)
	assert.NotEqual(t, base.Remote, otherCost.Remote)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := DeriveLocalKey([]byte("pw"), "alice", testParams)

	for _, c := range []string{CipherAES, CipherXChaCha} {
		t.Run(c, func(t *testing.T) {
			for _, p := range []string{"", "hello", `{"entries":[],"v":2,"r":0}      `} {
				env, err := EncryptWithOptions(key, p, Options{Cipher: c, Iter: 10})
				require.NoError(t, err)
				if p != "" {
					assert.NotContains(t, env, p)
				}

				got, err := Decrypt(key, env)
				require.NoError(t, err)
				assert.Equal(t, p, got)
			}
		})
	}
}

func TestEncrypt_EnvelopeIsSelfDescribing(t *testing.T) {
	env, err := Encrypt("k", "payload")
	require.NoError(t, err)

	var e Envelope
	require.NoError(t, json.Unmarshal([]byte(env), &e))
	assert.Equal(t, EnvelopeVersion, e.Version)
	assert.Equal(t, CipherAES, e.Cipher)
	assert.Equal(t, ModeGCM, e.Mode)
	assert.Equal(t, DefaultIter, e.Iter)
	assert.NotEmpty(t, e.Salt)
	assert.NotEmpty(t, e.IV)
	assert.NotEmpty(t, e.CT)

	// fresh salt and nonce every time
	env2, err := Encrypt("k", "payload")
	require.NoError(t, err)
	assert.NotEqual(t, env, env2)
}

func TestDecrypt_WrongKey(t *testing.T) {
	env, err := Encrypt("right", "secret data")
	require.NoError(t, err)

	_, err = Decrypt("wrong", env)
	require.ErrorIs(t, err, common.ErrCannotDecrypt)
}

func TestDecrypt_Malformed(t *testing.T) {
	good, err := Encrypt("k", "data")
	require.NoError(t, err)

	mutate := func(f func(e *Envelope)) string {
		var e Envelope
		require.NoError(t, json.Unmarshal([]byte(good), &e))
		f(&e)
		b, err := json.Marshal(e)
		require.NoError(t, err)
		return string(b)
	}

	cases := map[string]string{
		"not json":       "{nope",
		"empty":          "",
		"version":        mutate(func(e *Envelope) { e.Version = 9 }),
		"cipher":         mutate(func(e *Envelope) { e.Cipher = "des" }),
		"mode":           mutate(func(e *Envelope) { e.Mode = "cbc" }),
		"iter zero":      mutate(func(e *Envelope) { e.Iter = 0 }),
		"iter huge":      mutate(func(e *Envelope) { e.Iter = maxIter + 1 }),
		"key size":       mutate(func(e *Envelope) { e.KS = 128 }),
		"bad base64":     mutate(func(e *Envelope) { e.CT = "***" }),
		"short iv":       mutate(func(e *Envelope) { e.IV = "AAAA" }),
		"tampered ct":    mutate(func(e *Envelope) { e.CT = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA" }),
		"cipher swapped": mutate(func(e *Envelope) { e.Cipher, e.Mode = CipherXChaCha, ModeAEAD }),
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decrypt("k", env)
			require.ErrorIs(t, err, common.ErrCannotDecrypt)
		})
	}
}

func TestFingerprint_DeterministicAndSensitive(t *testing.T) {
	const d = 32
	f1 := Fingerprint("plaintext", "key", d)
	f2 := Fingerprint("plaintext", "key", d)
	require.Equal(t, f1, f2)
	assert.Len(t, f1, KeySize*2)

	assert.NotEqual(t, f1, Fingerprint("plaintext", "other-key", d))
	assert.NotEqual(t, f1, Fingerprint("plaintext!", "key", d))
	assert.NotEqual(t, f1, Fingerprint("plaintext", "key", d+1))
}
