// Package cli implements vaultcli, the interactive front end of a vault
// session.
//
// The cobra root command (see NewRootCommand) loads the configuration and
// starts a read-eval-print loop. Commands act on one services.Session: the
// vault is unlocked with "login", edited locally with "add", "edit" and
// "rm", and written back with "save" or "sync". "sync" resolves a rejected
// save by pulling and merging the server copy; conflicting fields are shown
// as an inline diff and nothing is written.
//
// A background watcher pings the server and flips the prompt between
// online and offline. A session opened from the offline cache is read only.
package cli
