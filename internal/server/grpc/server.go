// Package grpc exposes the vault service over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/vaultsync/internal/logging"
	"github.com/dmitrijs2005/vaultsync/internal/server/services"
	pb "github.com/dmitrijs2005/vaultsync/internal/vaultpb"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
)

// VaultService is the business logic the handlers call.
type VaultService interface {
	Config() services.PublicConfig
	Pull(ctx context.Context, c services.Credentials) (string, string, error)
	Push(ctx context.Context, c services.Credentials, in services.PushInput) (string, error)
	SetupTfa(ctx context.Context, c services.Credentials, secret, code string) error
}

type GRPCServer struct {
	pb.UnimplementedVaultServiceServer
	address string
	vaults  VaultService
	logger  logging.Logger
	limiter *userLimiter
}

// NewGRPCServer builds a server for vs. requestsPerSecond <= 0 disables
// rate limiting.
func NewGRPCServer(a string, l logging.Logger, vs VaultService, requestsPerSecond float64, burst int) *GRPCServer {
	s := &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		vaults:  vs,
	}
	if requestsPerSecond > 0 {
		s.limiter = newUserLimiter(rate.Limit(requestsPerSecond), burst, limiterTTL)
	}
	return s
}

// NewServer returns a grpc.Server with the interceptors and the vault
// service registered, ready to Serve on any listener.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.rateLimitInterceptor))
	srv := grpc.NewServer(opts...)
	pb.RegisterVaultServiceServer(srv, s)
	return srv
}

// Run listens on the configured address until ctx ends, then stops
// gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
