// Package server assembles vaultd: storage, archive, vault service and the
// gRPC endpoint, and runs it until a termination signal arrives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/vaultsync/internal/buildinfo"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/logging"
	"github.com/dmitrijs2005/vaultsync/internal/server/archive"
	"github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/dmitrijs2005/vaultsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultsync/internal/server/services"

	gs "github.com/dmitrijs2005/vaultsync/internal/server/grpc"
)

const jwtKeySize = 32

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	vaultService *services.VaultService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	if c.SecretKey == "" {
		key, err := common.MakeRandHexString(jwtKeySize)
		if err != nil {
			return nil, fmt.Errorf("secret key: %w", err)
		}
		c.SecretKey = key
		logger.Warn(ctx, "no secret key configured, TFA tokens will not survive a restart")
	}

	rm, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	arch, err := archive.New(ctx, c)
	if err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("archive init error: %w", err)
	}

	vs := services.NewVaultService(rm, arch, logger, c)

	return &App{config: c, logger: logger, repomanager: rm, vaultService: vs}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx ends or a signal arrives, then closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...",
		"version", buildinfo.String(),
		"storage", app.config.Storage,
		"demo", app.config.Demo,
		"legacy_salts", app.config.LocalKeySalt == "" && app.config.RemoteKeySalt == "",
	)

	app.initSignalHandler(cancelFunc)

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.vaultService, app.config.RateLimit, app.config.RateBurst)
	runErr := s.Run(ctx)
	if runErr != nil {
		app.logger.Error(ctx, "grpc server failed", "error", runErr)
	}

	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "storage close failed", "error", err)
	}
	return runErr
}
