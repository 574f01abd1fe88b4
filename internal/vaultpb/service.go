package vaultpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "vaultsync.VaultService"

const (
	VaultService_Ping_FullMethodName      = "/vaultsync.VaultService/Ping"
	VaultService_GetConfig_FullMethodName = "/vaultsync.VaultService/GetConfig"
	VaultService_Pull_FullMethodName      = "/vaultsync.VaultService/Pull"
	VaultService_Push_FullMethodName      = "/vaultsync.VaultService/Push"
	VaultService_SetupTfa_FullMethodName  = "/vaultsync.VaultService/SetupTfa"
)

// VaultServiceClient is the client API for VaultService.
type VaultServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetConfig(ctx context.Context, in *GetConfigRequest, opts ...grpc.CallOption) (*GetConfigResponse, error)
	Pull(ctx context.Context, in *PullRequest, opts ...grpc.CallOption) (*PullResponse, error)
	Push(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error)
	SetupTfa(ctx context.Context, in *SetupTfaRequest, opts ...grpc.CallOption) (*SetupTfaResponse, error)
}

type vaultServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewVaultServiceClient(cc grpc.ClientConnInterface) VaultServiceClient {
	return &vaultServiceClient{cc}
}

func (c *vaultServiceClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *vaultServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, VaultService_Ping_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) GetConfig(ctx context.Context, in *GetConfigRequest, opts ...grpc.CallOption) (*GetConfigResponse, error) {
	out := new(GetConfigResponse)
	if err := c.invoke(ctx, VaultService_GetConfig_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Pull(ctx context.Context, in *PullRequest, opts ...grpc.CallOption) (*PullResponse, error) {
	out := new(PullResponse)
	if err := c.invoke(ctx, VaultService_Pull_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) Push(ctx context.Context, in *PushRequest, opts ...grpc.CallOption) (*PushResponse, error) {
	out := new(PushResponse)
	if err := c.invoke(ctx, VaultService_Push_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *vaultServiceClient) SetupTfa(ctx context.Context, in *SetupTfaRequest, opts ...grpc.CallOption) (*SetupTfaResponse, error) {
	out := new(SetupTfaResponse)
	if err := c.invoke(ctx, VaultService_SetupTfa_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// VaultServiceServer is the server API for VaultService.
type VaultServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetConfig(context.Context, *GetConfigRequest) (*GetConfigResponse, error)
	Pull(context.Context, *PullRequest) (*PullResponse, error)
	Push(context.Context, *PushRequest) (*PushResponse, error)
	SetupTfa(context.Context, *SetupTfaRequest) (*SetupTfaResponse, error)
}

// UnimplementedVaultServiceServer can be embedded to satisfy
// VaultServiceServer for methods a server does not provide.
type UnimplementedVaultServiceServer struct{}

func (UnimplementedVaultServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}
func (UnimplementedVaultServiceServer) GetConfig(context.Context, *GetConfigRequest) (*GetConfigResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetConfig not implemented")
}
func (UnimplementedVaultServiceServer) Pull(context.Context, *PullRequest) (*PullResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Pull not implemented")
}
func (UnimplementedVaultServiceServer) Push(context.Context, *PushRequest) (*PushResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Push not implemented")
}
func (UnimplementedVaultServiceServer) SetupTfa(context.Context, *SetupTfaRequest) (*SetupTfaResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetupTfa not implemented")
}

func RegisterVaultServiceServer(s grpc.ServiceRegistrar, srv VaultServiceServer) {
	s.RegisterService(&VaultService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to grpc's handler signature.
func unaryHandler[Req any, PReq interface {
	*Req
	Message
}, Resp any](method string, call func(VaultServiceServer, context.Context, PReq) (Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(VaultServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(VaultServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// VaultService_ServiceDesc is the grpc.ServiceDesc for VaultService.
var VaultService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VaultServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler:    unaryHandler[PingRequest](VaultService_Ping_FullMethodName, VaultServiceServer.Ping),
		},
		{
			MethodName: "GetConfig",
			Handler:    unaryHandler[GetConfigRequest](VaultService_GetConfig_FullMethodName, VaultServiceServer.GetConfig),
		},
		{
			MethodName: "Pull",
			Handler:    unaryHandler[PullRequest](VaultService_Pull_FullMethodName, VaultServiceServer.Pull),
		},
		{
			MethodName: "Push",
			Handler:    unaryHandler[PushRequest](VaultService_Push_FullMethodName, VaultServiceServer.Push),
		},
		{
			MethodName: "SetupTfa",
			Handler:    unaryHandler[SetupTfaRequest](VaultService_SetupTfa_FullMethodName, VaultServiceServer.SetupTfa),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "vaultsync/vault.proto",
}
