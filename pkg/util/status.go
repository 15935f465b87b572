// Package util provides small helpers for working with gRPC status
// errors, mirroring the call signatures used throughout the teacher
// package this module is grounded on (github.com/buildbarn/bb-storage),
// whose own "util" package was not part of the retrieved reference set.
// The signatures below are reconstructed from their call sites in
// decomposing_blob_access.go and jwt_authenticator.go.
package util

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusWrap prepends a message to an existing error, preserving its
// gRPC status code. If err does not already carry a gRPC status, it is
// treated as codes.Unknown.
func StatusWrap(err error, message string) error {
	if err == nil {
		return nil
	}
	s := status.Convert(err)
	return status.Errorf(s.Code(), "%s: %s", message, s.Message())
}

// StatusWrapf is like StatusWrap, but accepts a format string.
func StatusWrapf(err error, format string, args ...interface{}) error {
	return StatusWrap(err, fmt.Sprintf(format, args...))
}

// StatusWrapWithCode is like StatusWrap, but replaces the status code
// of the wrapped error instead of preserving it. Used when the
// underlying error's code is not meaningful to the caller (e.g. any
// JWT parse failure should surface as Unauthenticated, regardless of
// the parser's own error code).
func StatusWrapWithCode(err error, code codes.Code, message string) error {
	if err == nil {
		return nil
	}
	return status.Errorf(code, "%s: %v", message, err)
}
