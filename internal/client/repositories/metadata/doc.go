// Package metadata is the key/value table of the client cache. The session
// keeps the last known server config, envelope and fingerprint here so the
// vault can be opened read-only when the server is unreachable.
package metadata
