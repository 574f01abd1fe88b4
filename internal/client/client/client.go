package client

import (
	"context"
)

// ServerConfig is the public configuration announced by the server.
type ServerConfig struct {
	Version       string
	LocalKeySalt  string
	RemoteKeySalt string
	Difficulty    int
	Demo          bool
}

// Legacy reports whether the server uses the username as the only salt.
func (c ServerConfig) Legacy() bool {
	return c.LocalKeySalt == "" && c.RemoteKeySalt == ""
}

// Auth identifies the caller on every vault request. TfaMethod and
// TfaRequest are set when a two-factor credential is pending.
type Auth struct {
	Username   string
	RemoteKey  string
	TfaMethod  string
	TfaRequest string
}

// PullResult is the stored envelope, empty for a vault that does not exist
// yet. TfaToken is set when the server issued a reusable two-factor token.
type PullResult struct {
	Data     string
	TfaToken string
}

// PushRequest replaces the stored envelope when OldHash matches.
type PushRequest struct {
	NewData     string
	NewHash     string
	OldHash     string
	NewPassword string
	Force       bool
}

// PushResult mirrors PullResult for writes.
type PushResult struct {
	TfaToken string
}

// Client is the network collaborator of a vault session.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	GetConfig(ctx context.Context) (*ServerConfig, error)
	Pull(ctx context.Context, auth Auth) (*PullResult, error)
	Push(ctx context.Context, auth Auth, req PushRequest) (*PushResult, error)
	SetupTfa(ctx context.Context, auth Auth, secret, code string) error
}
