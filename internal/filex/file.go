// Package filex has file system helpers for local state files.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// StateDirName is the directory under the user's home that holds client
// state.
const StateDirName = ".vaultsync"

// userHomeDir is a seam for tests.
var userHomeDir = os.UserHomeDir

// StatePath returns name inside the per-user state directory. Without a
// home directory, name is returned unchanged and resolves against the
// working directory.
func StatePath(name string) string {
	home, err := userHomeDir()
	if err != nil || home == "" {
		return name
	}
	return filepath.Join(home, StateDirName, name)
}

// EnsureParentDir creates the directory that will hold path, readable only
// by the current user. A bare file name needs nothing.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
