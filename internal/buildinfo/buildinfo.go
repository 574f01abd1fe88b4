// Package buildinfo holds version information stamped at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/vaultsync/internal/buildinfo.Version=1.2.3"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders all fields on one line.
func String() string {
	return fmt.Sprintf("version %s (commit %s, built %s)", Version, Commit, Date)
}
