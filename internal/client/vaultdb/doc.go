// Package vaultdb is the in-memory record store of the vault: entries keyed
// by id, a revision counter, padded serialization and the merge of two
// divergent snapshots. Nothing here performs I/O.
package vaultdb
