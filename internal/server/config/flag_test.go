package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-k", "bolt", "-d", "db", "-f", "v.db", "-s", "secret",
				"-t", "60", "-l", "ls", "-r", "rs", "-x", "1000", "-demo", "-q", "2.5",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			expected: &Config{
				EndpointAddrGRPC:         "127.0.0.1:9090",
				Storage:                  "bolt",
				DatabaseDSN:              "db",
				BoltFile:                 "v.db",
				SecretKey:                "secret",
				TfaTokenValidityDuration: time.Hour,
				LocalKeySalt:             "ls",
				RemoteKeySalt:            "rs",
				Difficulty:               1000,
				Demo:                     true,
				RateLimit:                2.5,
				S3RootUser:               "user",
				S3RootPassword:           "password",
				S3Bucket:                 "bucket",
				S3Region:                 "us-west-1",
				S3BaseEndpoint:           "http://endpoint",
			},
		},
		{
			name:     "unknown flags are ignored",
			args:     []string{"cmd", "-z", "1", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"},
		},
		{name: "bad difficulty", args: []string{"cmd", "-x", "many"}, expectPanic: true},
		{name: "bad token validity", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
