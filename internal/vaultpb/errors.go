package vaultpb

import (
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error returns a status error whose message is prefixed with a wire error
// code such as "EFAST", so clients can tell rejections apart without
// parsing free text.
func Error(c codes.Code, wireCode, description string) error {
	return status.Error(c, wireCode+": "+description)
}

// WireCode returns the wire error code carried by err, or "" if err is not
// a status error produced by Error.
func WireCode(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	code, _, found := strings.Cut(st.Message(), ": ")
	if !found || code == "" || strings.ToUpper(code) != code || strings.ContainsAny(code, " \t") {
		return ""
	}
	return code
}
