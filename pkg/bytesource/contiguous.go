package bytesource

import (
	"crypto/sha256"
	"io"

	"github.com/aa-labs/autoarchaeologist/pkg/aaerr"
)

// Contiguous is a ByteSource borrowed from a single underlying buffer.
// Re-slicing a Contiguous never copies: the returned view shares the
// same backing array, the same way a Go slice expression does.
type Contiguous struct {
	data []byte
}

var _ ByteSource = Contiguous{}

// NewContiguous wraps b as a ByteSource. It fails with InvalidSource if
// b is empty; the caller must not mutate b afterwards, since
// Contiguous values share its backing array with every derived slice.
func NewContiguous(b []byte) (ByteSource, error) {
	if len(b) == 0 {
		return nil, aaerr.NewInvalidSource()
	}
	return Contiguous{data: b}, nil
}

// Len implements ByteSource.
func (c Contiguous) Len() int {
	return len(c.data)
}

// At implements ByteSource.
func (c Contiguous) At(i int) (byte, error) {
	if i < 0 || i >= len(c.data) {
		return 0, aaerr.NewOutOfBounds(i, i+1, len(c.data))
	}
	return c.data[i], nil
}

// Slice implements ByteSource.
func (c Contiguous) Slice(lo, hi int) (ByteSource, error) {
	if hi <= lo {
		return nil, aaerr.NewEmptyRange(lo, hi)
	}
	if lo < 0 || hi > len(c.data) {
		return nil, aaerr.NewOutOfBounds(lo, hi, len(c.data))
	}
	return Contiguous{data: c.data[lo:hi]}, nil
}

// Bytes implements ByteSource.
func (c Contiguous) Bytes() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Sum256 implements ByteSource.
func (c Contiguous) Sum256() [32]byte {
	return sha256.Sum256(c.data)
}

// Records implements ByteSource: a Contiguous view is its own sole
// record.
func (c Contiguous) Records() []ByteSource {
	return []ByteSource{c}
}

// WriteTo implements ByteSource.
func (c Contiguous) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.data)
	return int64(n), err
}
