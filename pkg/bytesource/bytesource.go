// Package bytesource provides a uniform, read-only view over the raw
// bytes backing an Artifact, whether those bytes are one contiguous
// run or a scatter-gather list of records (spec.md §3.1/§4.1).
//
// A ByteSource is immutable after construction. Slicing never copies
// the underlying data — it only narrows the view, the same way
// buffer.Buffer decorators in the teacher package wrap rather than
// copy an underlying transfer.
package bytesource

import (
	"io"
)

// ByteSource is the capability set shared by Contiguous and
// ScatterGather (spec.md §4.1: "Two variants share a common capability
// set {length, index, slice, iterate-bytes, to-bytes, hash,
// iter-records, write-to-file}").
type ByteSource interface {
	// Len returns the logical length in bytes.
	Len() int

	// At returns the byte at offset i. Fails with an OutOfBounds
	// error (pkg/aaerr) if i is not in [0, Len()).
	At(i int) (byte, error)

	// Slice returns a ByteSource over [lo, hi) of this source. The
	// returned value has the same concrete kind as the receiver
	// (Contiguous.Slice returns a Contiguous, ScatterGather.Slice
	// returns a ScatterGather). Fails with EmptyRange if hi <= lo,
	// or OutOfBounds if either endpoint exceeds Len().
	Slice(lo, hi int) (ByteSource, error)

	// Bytes exports the full logical content as a freshly allocated
	// slice. Mutating the result never affects the ByteSource.
	Bytes() []byte

	// Sum256 computes the SHA-256 digest of the logical
	// concatenation of the source's bytes. ScatterGather computes
	// this record by record, without materializing the full
	// concatenation.
	Sum256() [32]byte

	// Records returns the ordered list of record views making up
	// this source. Contiguous yields a single-element slice
	// containing itself.
	Records() []ByteSource

	// WriteTo writes the logical content to w.
	WriteTo(w io.Writer) (int64, error)
}
