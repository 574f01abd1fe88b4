// Package common contains shared constants and sentinel errors used across
// vaultsync components.
package common

// Wire error codes carried in gRPC status messages. Clients map them back to
// the sentinel errors below.
const (
	CodeBadAuth        = "EAUTH"
	CodeNotFastForward = "EFAST"
	CodeDemo           = "EDEMO"
	CodeTfaRequired    = "ETFAREQ"
	CodeTfaFailed      = "ETFA"
	CodeTfaConfirm     = "ETFACONFIRM"
	CodeInternal       = "EINTERNAL"
)

// ClientVersionHeaderName is the gRPC metadata key carrying the client build
// version on outbound requests.
const ClientVersionHeaderName = "x-client-version"

// TFA methods understood by the server.
const (
	TfaMethodTOTP  = "totp"
	TfaMethodToken = "token"
)
