// Package vaultpb declares the VaultService gRPC contract and its messages.
//
// Messages are encoded in the protobuf wire format with protowire and sent
// through the "vaultwire" codec, so no generated code is involved. Field
// numbers are part of the protocol and must not be reused.
package vaultpb
