package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/server/services"
	pb "github.com/dmitrijs2005/vaultsync/internal/vaultpb"
	"google.golang.org/grpc/codes"
)

// toStatus maps service errors to status errors carrying a wire code.
// ErrTfaRequired is checked before ErrTfaFailed, which it wraps.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrBadRemoteCredentials):
		return pb.Error(codes.Unauthenticated, common.CodeBadAuth, "bad credentials")
	case errors.Is(err, common.ErrNotFastForward):
		return pb.Error(codes.FailedPrecondition, common.CodeNotFastForward, "vault changed on the server")
	case errors.Is(err, common.ErrDemoMode):
		return pb.Error(codes.PermissionDenied, common.CodeDemo, "server is in demo mode")
	case errors.Is(err, common.ErrTfaRequired):
		return pb.Error(codes.Unauthenticated, common.CodeTfaRequired, "two-factor code required")
	case errors.Is(err, common.ErrTfaFailed):
		return pb.Error(codes.Unauthenticated, common.CodeTfaFailed, "two-factor check failed")
	case errors.Is(err, common.ErrTfaConfirmFailed):
		return pb.Error(codes.InvalidArgument, common.CodeTfaConfirm, "code does not match secret")
	default:
		s.logger.Error(ctx, "request failed", "error", err)
		return pb.Error(codes.Internal, common.CodeInternal, "internal error")
	}
}

func (s *GRPCServer) Ping(ctx context.Context, req *pb.PingRequest) (*pb.PingResponse, error) {
	return &pb.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) GetConfig(ctx context.Context, req *pb.GetConfigRequest) (*pb.GetConfigResponse, error) {
	c := s.vaults.Config()
	return &pb.GetConfigResponse{
		Version:       c.Version,
		LocalKeySalt:  c.LocalKeySalt,
		RemoteKeySalt: c.RemoteKeySalt,
		Difficulty:    int64(c.Difficulty),
		Demo:          c.Demo,
	}, nil
}

func (s *GRPCServer) Pull(ctx context.Context, req *pb.PullRequest) (*pb.PullResponse, error) {
	data, token, err := s.vaults.Pull(ctx, services.Credentials{
		Username:   req.Username,
		RemoteKey:  req.RemoteKey,
		TfaMethod:  req.TfaMethod,
		TfaRequest: req.TfaRequest,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.PullResponse{Data: data, TfaToken: token}, nil
}

func (s *GRPCServer) Push(ctx context.Context, req *pb.PushRequest) (*pb.PushResponse, error) {
	token, err := s.vaults.Push(ctx, services.Credentials{
		Username:   req.Username,
		RemoteKey:  req.RemoteKey,
		TfaMethod:  req.TfaMethod,
		TfaRequest: req.TfaRequest,
	}, services.PushInput{
		NewData:     req.NewData,
		NewHash:     req.NewHash,
		OldHash:     req.OldHash,
		NewPassword: req.NewPassword,
		Force:       req.Force,
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.PushResponse{TfaToken: token}, nil
}

func (s *GRPCServer) SetupTfa(ctx context.Context, req *pb.SetupTfaRequest) (*pb.SetupTfaResponse, error) {
	err := s.vaults.SetupTfa(ctx, services.Credentials{
		Username:  req.Username,
		RemoteKey: req.RemoteKey,
	}, req.Secret, req.Code)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &pb.SetupTfaResponse{}, nil
}
