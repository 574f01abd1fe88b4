package server

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestApp_RunsUntilCancelled(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Storage = config.StorageBolt
	cfg.BoltFile = filepath.Join(t.TempDir(), "vault.db")
	cfg.EndpointAddrGRPC = freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := NewApp(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", cfg.EndpointAddrGRPC)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestNewApp_UnknownStorage(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Storage = "floppy"

	_, err := NewApp(context.Background(), cfg)
	require.ErrorContains(t, err, "storage init error")
}

func TestNewApp_GeneratesSecretKey(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.Storage = config.StorageMemory
	cfg.SecretKey = ""

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	defer app.repomanager.Close()

	require.Len(t, cfg.SecretKey, 2*jwtKeySize)
}
