package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/vaultsync/internal/flagx"
	"github.com/dmitrijs2005/vaultsync/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell
// "absent" from zero so a partial file only overrides what it names.
type JsonConfig struct {
	EndpointAddrGRPC         *string         `json:"endpoint_addr_grpc"`
	Storage                  *string         `json:"storage"`
	DatabaseDSN              *string         `json:"database_dsn"`
	BoltFile                 *string         `json:"bolt_file"`
	SecretKey                *string         `json:"secret_key"`
	TfaTokenValidityDuration *timex.Duration `json:"tfa_token_validity_duration"`
	LocalKeySalt             *string         `json:"local_key_salt"`
	RemoteKeySalt            *string         `json:"remote_key_salt"`
	Difficulty               *int            `json:"difficulty"`
	Demo                     *bool           `json:"demo"`
	RateLimit                *float64        `json:"rate_limit"`
	RateBurst                *int            `json:"rate_burst"`
	S3RootUser               *string         `json:"s3_root_user"`
	S3RootPassword           *string         `json:"s3_root_password"`
	S3Bucket                 *string         `json:"s3_bucket"`
	S3Region                 *string         `json:"s3_region"`
	S3BaseEndpoint           *string         `json:"s3_base_endpoint"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays config with the file named by -c/-config, if any.
// Unreadable files and invalid JSON panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.Storage, c.Storage)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.BoltFile, c.BoltFile)
	set(&config.SecretKey, c.SecretKey)
	if c.TfaTokenValidityDuration != nil {
		config.TfaTokenValidityDuration = c.TfaTokenValidityDuration.Duration
	}
	set(&config.LocalKeySalt, c.LocalKeySalt)
	set(&config.RemoteKeySalt, c.RemoteKeySalt)
	set(&config.Difficulty, c.Difficulty)
	set(&config.Demo, c.Demo)
	set(&config.RateLimit, c.RateLimit)
	set(&config.RateBurst, c.RateBurst)
	set(&config.S3RootUser, c.S3RootUser)
	set(&config.S3RootPassword, c.S3RootPassword)
	set(&config.S3Bucket, c.S3Bucket)
	set(&config.S3Region, c.S3Region)
	set(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
