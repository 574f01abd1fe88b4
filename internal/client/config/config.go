package config

import (
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/filex"
)

// Config holds runtime settings for vaultcli.
//
// CacheFile "" disables the offline cache. UseKeyring stores the master
// secret in the OS keyring after a successful login.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	CacheFile           string
	UseKeyring          bool
	LogLevel            string
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 5 * time.Second
	c.CacheFile = filex.StatePath("cache.db")
	c.UseKeyring = false
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, then the JSON file, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
