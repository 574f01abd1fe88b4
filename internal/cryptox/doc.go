// Package cryptox holds the client-side cryptographic building blocks of the
// vault: key derivation from the master secret, the self-describing
// ciphertext envelope, and the keyed fingerprint used as an
// optimistic-concurrency token.
//
// All functions are pure and safe for concurrent use. Key stretching is
// deliberately slow; callers with a UI thread should run it elsewhere.
package cryptox
