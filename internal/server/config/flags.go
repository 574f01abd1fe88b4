package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/flagx"
)

var serverFlags = []string{
	"-a", "-k", "-d", "-f", "-s", "-t", "-l", "-r", "-x", "-q",
	"-u", "-p", "-b", "-g", "-e",
}

var serverBoolFlags = []string{"-demo"}

// parseFlags overlays config with command-line flags.
//
//	-a string   gRPC bind address
//	-k string   storage backend: postgres, bolt or memory
//	-d string   PostgreSQL DSN
//	-f string   bbolt file
//	-s string   JWT secret for two-factor tokens
//	-t int      two-factor token validity, minutes
//	-l string   local key salt
//	-r string   remote key salt
//	-x int      key derivation difficulty
//	-demo       reject every push
//	-q float    requests per second per user
//	-u -p -b -g -e  S3 archive user, password, bucket, region, endpoint
//
// Invalid values panic.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags, serverBoolFlags...)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.Storage, "k", config.Storage, "storage backend (postgres, bolt, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BoltFile, "f", config.BoltFile, "bbolt database file")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tfaTokenValidity := fs.Int("t", int(config.TfaTokenValidityDuration.Minutes()), "tfa token validity (in minutes)")

	fs.StringVar(&config.LocalKeySalt, "l", config.LocalKeySalt, "local key salt")
	fs.StringVar(&config.RemoteKeySalt, "r", config.RemoteKeySalt, "remote key salt")
	fs.IntVar(&config.Difficulty, "x", config.Difficulty, "key derivation difficulty")
	fs.BoolVar(&config.Demo, "demo", config.Demo, "demo mode, pushes are rejected")
	fs.Float64Var(&config.RateLimit, "q", config.RateLimit, "requests per second per user")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 archive bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint, empty disables the archive")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TfaTokenValidityDuration = time.Duration(*tfaTokenValidity) * time.Minute
}
