// Package config loads runtime configuration for vaultcli.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Flags
//
//	-a string   address:port of the vault server
//	-i int      online status check interval (seconds)
//	-f string   offline cache file (default ~/.vaultsync/cache.db), "" disables it
//	-k          remember the master secret in the OS keyring
//	-v string   log level: debug, info, warn, error
//
// # JSON schema
//
// Intervals use timex.Duration, so "5s" and a plain number of seconds both work.
// Keys missing from the file leave the current value alone:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "5s",
//	  "cache_file": "/home/alice/.vaultsync/cache.db",
//	  "use_keyring": true,
//	  "log_level": "info"
//	}
package config
