package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/vaultsync/internal/buildinfo"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	pb "github.com/dmitrijs2005/vaultsync/internal/vaultpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      pb.VaultServiceClient
	dialOpts    []grpc.DialOption
}

// Option adds a grpc.DialOption, used by tests to dial in-memory listeners.
type Option func(*GRPCClient)

func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

func withClientVersion(ctx context.Context) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.ClientVersionHeaderName, buildinfo.Version)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) versionInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withClientVersion(ctx), method, req, reply, cc, opts...)
}

func NewVaultClient(endpointURL string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	for _, o := range opts {
		o(c)
	}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.versionInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = pb.NewVaultServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &pb.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return fmt.Errorf("%w: status %q", common.ErrBadServerResponse, resp.Status)
	}
	return nil
}

func (s *GRPCClient) GetConfig(ctx context.Context) (*ServerConfig, error) {
	resp, err := s.client.GetConfig(ctx, &pb.GetConfigRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Difficulty < 0 {
		return nil, fmt.Errorf("%w: negative difficulty", common.ErrBadServerResponse)
	}
	return &ServerConfig{
		Version:       resp.Version,
		LocalKeySalt:  resp.LocalKeySalt,
		RemoteKeySalt: resp.RemoteKeySalt,
		Difficulty:    int(resp.Difficulty),
		Demo:          resp.Demo,
	}, nil
}

func (s *GRPCClient) Pull(ctx context.Context, auth Auth) (*PullResult, error) {
	req := &pb.PullRequest{
		Username:   auth.Username,
		RemoteKey:  auth.RemoteKey,
		TfaMethod:  auth.TfaMethod,
		TfaRequest: auth.TfaRequest,
	}
	resp, err := s.client.Pull(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &PullResult{Data: resp.Data, TfaToken: resp.TfaToken}, nil
}

func (s *GRPCClient) Push(ctx context.Context, auth Auth, r PushRequest) (*PushResult, error) {
	req := &pb.PushRequest{
		Username:    auth.Username,
		RemoteKey:   auth.RemoteKey,
		NewData:     r.NewData,
		NewHash:     r.NewHash,
		OldHash:     r.OldHash,
		NewPassword: r.NewPassword,
		Force:       r.Force,
		TfaMethod:   auth.TfaMethod,
		TfaRequest:  auth.TfaRequest,
	}
	resp, err := s.client.Push(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &PushResult{TfaToken: resp.TfaToken}, nil
}

func (s *GRPCClient) SetupTfa(ctx context.Context, auth Auth, secret, code string) error {
	req := &pb.SetupTfaRequest{
		Username:  auth.Username,
		RemoteKey: auth.RemoteKey,
		Secret:    secret,
		Code:      code,
	}
	if _, err := s.client.SetupTfa(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch pb.WireCode(err) {
	case common.CodeBadAuth:
		return common.ErrBadRemoteCredentials
	case common.CodeNotFastForward:
		return common.ErrNotFastForward
	case common.CodeDemo:
		return common.ErrDemoMode
	case common.CodeTfaRequired:
		return common.ErrTfaRequired
	case common.CodeTfaFailed:
		return common.ErrTfaFailed
	case common.CodeTfaConfirm:
		return common.ErrTfaConfirmFailed
	case common.CodeInternal:
		return common.ErrBadServerResponse
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", common.ErrNetwork, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", common.ErrNetwork, err)
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return common.ErrBadRemoteCredentials
	case codes.ResourceExhausted:
		return common.ErrRateLimited
	case codes.Internal:
		return fmt.Errorf("%w: %s", common.ErrBadServerResponse, st.Message())
	default:
		return fmt.Errorf("%w: %w", common.ErrNetwork, err)
	}
}
