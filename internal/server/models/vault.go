// Package models holds the server-side persistent types.
package models

import "time"

// Vault is one account: the opaque ciphertext blob and its fingerprint as
// pushed by the client, plus the verifier of the remote key. The server
// never sees plaintext or the local key.
type Vault struct {
	Username  string    `json:"username"`
	Verifier  []byte    `json:"verifier"`
	Data      string    `json:"data"`
	Hash      string    `json:"hash"`
	TfaSecret string    `json:"tfa_secret,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy.
func (v *Vault) Clone() *Vault {
	c := *v
	c.Verifier = append([]byte(nil), v.Verifier...)
	return &c
}
