package client

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/vaultsync/internal/buildinfo"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	pb "github.com/dmitrijs2005/vaultsync/internal/vaultpb"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

/*************
 * Fake pb client
 *************/

type fakePB struct {
	// inputs captured
	lastPullReq     *pb.PullRequest
	lastPushReq     *pb.PushRequest
	lastSetupTfaReq *pb.SetupTfaRequest

	// outputs preset
	pingResp *pb.PingResponse
	pingErr  error

	configResp *pb.GetConfigResponse
	configErr  error

	pullResp *pb.PullResponse
	pullErr  error

	pushResp *pb.PushResponse
	pushErr  error

	setupTfaErr error
}

func (f *fakePB) Ping(ctx context.Context, in *pb.PingRequest, opts ...grpc.CallOption) (*pb.PingResponse, error) {
	return f.pingResp, f.pingErr
}
func (f *fakePB) GetConfig(ctx context.Context, in *pb.GetConfigRequest, opts ...grpc.CallOption) (*pb.GetConfigResponse, error) {
	return f.configResp, f.configErr
}
func (f *fakePB) Pull(ctx context.Context, in *pb.PullRequest, opts ...grpc.CallOption) (*pb.PullResponse, error) {
	f.lastPullReq = in
	return f.pullResp, f.pullErr
}
func (f *fakePB) Push(ctx context.Context, in *pb.PushRequest, opts ...grpc.CallOption) (*pb.PushResponse, error) {
	f.lastPushReq = in
	return f.pushResp, f.pushErr
}
func (f *fakePB) SetupTfa(ctx context.Context, in *pb.SetupTfaRequest, opts ...grpc.CallOption) (*pb.SetupTfaResponse, error) {
	f.lastSetupTfaReq = in
	return &pb.SetupTfaResponse{}, f.setupTfaErr
}

/*************
 * versionInterceptor tests
 *************/

func TestInterceptor_AddsClientVersion(t *testing.T) {
	c := &GRPCClient{}

	invoker := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		v := md.Get(common.ClientVersionHeaderName)
		require.Equal(t, []string{buildinfo.Version}, v)
		require.Equal(t, []string{"kept"}, md.Get("other"))
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), "other", "kept")
	require.NoError(t, c.versionInterceptor(ctx, "/svc/Method", nil, nil, nil, invoker))
}

/*************
 * mapError tests
 *************/

func TestMapError(t *testing.T) {
	c := &GRPCClient{}

	wire := map[string]error{
		common.CodeBadAuth:        common.ErrBadRemoteCredentials,
		common.CodeNotFastForward: common.ErrNotFastForward,
		common.CodeDemo:           common.ErrDemoMode,
		common.CodeTfaRequired:    common.ErrTfaRequired,
		common.CodeTfaFailed:      common.ErrTfaFailed,
		common.CodeTfaConfirm:     common.ErrTfaConfirmFailed,
		common.CodeInternal:       common.ErrBadServerResponse,
	}
	for code, want := range wire {
		got := c.mapError(pb.Error(codes.FailedPrecondition, code, "x"))
		require.ErrorIs(t, got, want, code)
	}

	require.ErrorIs(t, c.mapError(pb.Error(codes.InvalidArgument, common.CodeTfaRequired, "x")), common.ErrTfaFailed)

	require.ErrorIs(t, c.mapError(status.Error(codes.Unauthenticated, "x")), common.ErrBadRemoteCredentials)
	require.ErrorIs(t, c.mapError(status.Error(codes.ResourceExhausted, "x")), common.ErrRateLimited)
	require.ErrorIs(t, c.mapError(status.Error(codes.Internal, "grpc: failed to unmarshal")), common.ErrBadServerResponse)
	require.ErrorIs(t, c.mapError(status.Error(codes.Unavailable, "x")), common.ErrNetwork)
	require.ErrorIs(t, c.mapError(status.Error(codes.DeadlineExceeded, "x")), common.ErrNetwork)

	plain := errors.New("plain")
	got := c.mapError(plain)
	require.ErrorIs(t, got, common.ErrNetwork)
	require.ErrorIs(t, got, plain)

	require.ErrorIs(t, c.mapError(context.Canceled), context.Canceled)
	require.NoError(t, c.mapError(nil))
}

/*************
 * Ping / GetConfig tests
 *************/

func TestPing_OK(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: "OK"}}
	c := &GRPCClient{client: f}
	require.NoError(t, c.Ping(context.Background()))
}

func TestPing_NotOK(t *testing.T) {
	f := &fakePB{pingResp: &pb.PingResponse{Status: "NOT_OK"}}
	c := &GRPCClient{client: f}
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrBadServerResponse)
}

func TestPing_MapsRPCError(t *testing.T) {
	f := &fakePB{pingErr: status.Error(codes.Unavailable, "down")}
	c := &GRPCClient{client: f}
	require.ErrorIs(t, c.Ping(context.Background()), common.ErrNetwork)
}

func TestGetConfig(t *testing.T) {
	f := &fakePB{configResp: &pb.GetConfigResponse{Version: "v", LocalKeySalt: "l", RemoteKeySalt: "r", Difficulty: 10, Demo: true}}
	c := &GRPCClient{client: f}

	cfg, err := c.GetConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, &ServerConfig{Version: "v", LocalKeySalt: "l", RemoteKeySalt: "r", Difficulty: 10, Demo: true}, cfg)
	require.False(t, cfg.Legacy())

	f.configResp = &pb.GetConfigResponse{Difficulty: -1}
	_, err = c.GetConfig(context.Background())
	require.ErrorIs(t, err, common.ErrBadServerResponse)
}

/*************
 * Pull / Push / SetupTfa tests
 *************/

func TestPull_MapsReqAndResp(t *testing.T) {
	f := &fakePB{pullResp: &pb.PullResponse{Data: "env", TfaToken: "tok"}}
	c := &GRPCClient{client: f}

	res, err := c.Pull(context.Background(), Auth{Username: "u", RemoteKey: "k", TfaMethod: "totp", TfaRequest: "123"})
	require.NoError(t, err)
	require.Equal(t, &PullResult{Data: "env", TfaToken: "tok"}, res)
	require.Equal(t, &pb.PullRequest{Username: "u", RemoteKey: "k", TfaMethod: "totp", TfaRequest: "123"}, f.lastPullReq)
}

func TestPull_MapsError(t *testing.T) {
	f := &fakePB{pullErr: pb.Error(codes.Unauthenticated, common.CodeBadAuth, "bad key")}
	c := &GRPCClient{client: f}
	_, err := c.Pull(context.Background(), Auth{})
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)
}

func TestPush_MapsReq(t *testing.T) {
	f := &fakePB{pushResp: &pb.PushResponse{}}
	c := &GRPCClient{client: f}

	_, err := c.Push(context.Background(), Auth{Username: "u", RemoteKey: "k"},
		PushRequest{NewData: "d", NewHash: "n", OldHash: "o", NewPassword: "p", Force: true})
	require.NoError(t, err)
	require.Equal(t, &pb.PushRequest{
		Username: "u", RemoteKey: "k", NewData: "d", NewHash: "n", OldHash: "o", NewPassword: "p", Force: true,
	}, f.lastPushReq)
}

func TestPush_NotFastForward(t *testing.T) {
	f := &fakePB{pushErr: pb.Error(codes.FailedPrecondition, common.CodeNotFastForward, "stale")}
	c := &GRPCClient{client: f}
	_, err := c.Push(context.Background(), Auth{}, PushRequest{})
	require.ErrorIs(t, err, common.ErrNotFastForward)
}

func TestSetupTfa(t *testing.T) {
	f := &fakePB{}
	c := &GRPCClient{client: f}
	require.NoError(t, c.SetupTfa(context.Background(), Auth{Username: "u", RemoteKey: "k"}, "SECRET", "123456"))
	require.Equal(t, "SECRET", f.lastSetupTfaReq.Secret)
	require.Equal(t, "123456", f.lastSetupTfaReq.Code)

	f.setupTfaErr = pb.Error(codes.InvalidArgument, common.CodeTfaConfirm, "mismatch")
	require.ErrorIs(t, c.SetupTfa(context.Background(), Auth{}, "S", "1"), common.ErrTfaConfirmFailed)
}

func TestClose_NilConn(t *testing.T) {
	c := &GRPCClient{}
	require.NoError(t, c.Close())
}
