// Package services contains the application services of the vault client.
//
// Session is the sync façade: it derives keys, pulls and decrypts the
// vault, hands out the record store, and encrypts and pushes it back with a
// fingerprint check against concurrent writers. Cache keeps the last known
// ciphertext in the local SQLite database for read-only offline use.
package services
