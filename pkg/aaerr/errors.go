// Package aaerr collects the error taxonomy of the artifact graph
// engine (spec.md §7), expressed as gRPC status errors the way the
// teacher package represents every failure path. Callers that need to
// distinguish error kinds should use google.golang.org/grpc/status.Code
// against the codes.Code constants documented on each constructor,
// rather than comparing errors with errors.Is/As.
package aaerr

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewDuplicateName reports a name collision encountered by
// Artifact.SetName with fallback disabled.
func NewDuplicateName(existing, attempted string) error {
	if existing == "" {
		return status.Errorf(codes.AlreadyExists, "name already used: %q", attempted)
	}
	return status.Errorf(codes.AlreadyExists, "name clash: %q vs %q", existing, attempted)
}

// NewEmptyRange reports hi <= lo passed to a slicing operation.
func NewEmptyRange(lo, hi int) error {
	return status.Errorf(codes.InvalidArgument, "empty range [%d, %d)", lo, hi)
}

// NewOutOfBounds reports a slice endpoint exceeding a byte source's
// length.
func NewOutOfBounds(lo, hi, length int) error {
	return status.Errorf(codes.OutOfRange, "range [%d, %d) exceeds length %d", lo, hi, length)
}

// NewInvalidSource reports a ByteSource constructed from zero-length
// input.
func NewInvalidSource() error {
	return status.Error(codes.InvalidArgument, "byte source has zero length")
}

// NewExaminationDiverged reports that the artifact count bound
// configured in config.Config.MaxArtifacts was exceeded.
func NewExaminationDiverged(bound int) error {
	return status.Errorf(codes.ResourceExhausted, "examination diverged: exceeded %d artifacts", bound)
}

// NewIOFailure wraps an underlying I/O error encountered while
// rendering a report.
func NewIOFailure(path string, cause error) error {
	return status.Errorf(codes.Unavailable, "I/O failure writing %q: %v", path, cause)
}
