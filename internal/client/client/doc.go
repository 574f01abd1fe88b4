// Package client contains the network side of the vault client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the vault
//     server: Ping, GetConfig, Pull, Push and SetupTfa.
//  2. A gRPC implementation (see GRPCClient) that stamps every call with the
//     client version and maps gRPC status codes and wire error codes to the
//     sentinel errors of package common.
//  3. Bootstrap of the local SQLite cache (InitDatabase, RunMigrations),
//     applying embedded goose migrations.
//
// # Error Handling
//
// Rejections are reported as common.ErrBadRemoteCredentials,
// common.ErrNotFastForward, common.ErrDemoMode, common.ErrTfaRequired,
// common.ErrTfaFailed, common.ErrTfaConfirmFailed and common.ErrRateLimited.
// Transport failures are wrapped in common.ErrNetwork with the cause kept.
//
// All operations accept context.Context and honor cancellation. Timeouts are
// the caller's choice.
package client
