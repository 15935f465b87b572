package bytesource

import (
	"crypto/sha256"
	"io"

	"github.com/aa-labs/autoarchaeologist/pkg/aaerr"
)

// ScatterGather is a ByteSource composed of an ordered list of record
// views whose logical length is the sum of the records' lengths. It is
// the in-memory analogue of the teacher package's
// casConcatenatingBuffer, which likewise presents a series of
// dynamically fetched Buffers as one logically contiguous stream; here
// every record is already resident, so no fetcher callback is needed.
type ScatterGather struct {
	records []ByteSource
	length  int
}

var _ ByteSource = ScatterGather{}

// NewScatterGather wraps an ordered list of records as a single
// ByteSource. It fails with InvalidSource if the total length of all
// records is zero. The slice header is copied but record data is never
// copied.
func NewScatterGather(records []ByteSource) (ByteSource, error) {
	recs := make([]ByteSource, len(records))
	copy(recs, records)
	total := 0
	for _, r := range recs {
		total += r.Len()
	}
	if total == 0 {
		return nil, aaerr.NewInvalidSource()
	}
	return ScatterGather{records: recs, length: total}, nil
}

// Len implements ByteSource.
func (s ScatterGather) Len() int {
	return s.length
}

// At implements ByteSource.
func (s ScatterGather) At(i int) (byte, error) {
	if i < 0 || i >= s.length {
		return 0, aaerr.NewOutOfBounds(i, i+1, s.length)
	}
	offset := 0
	for _, r := range s.records {
		if i < offset+r.Len() {
			return r.At(i - offset)
		}
		offset += r.Len()
	}
	// Unreachable: the bounds check above guarantees a match.
	return 0, aaerr.NewOutOfBounds(i, i+1, s.length)
}

// Slice implements ByteSource. The result is the cross-cut of the
// record list against [lo, hi): only the first and last intersecting
// records are narrowed, every record data view is reused unmodified.
func (s ScatterGather) Slice(lo, hi int) (ByteSource, error) {
	if hi <= lo {
		return nil, aaerr.NewEmptyRange(lo, hi)
	}
	if lo < 0 || hi > s.length {
		return nil, aaerr.NewOutOfBounds(lo, hi, s.length)
	}

	var out []ByteSource
	offset := 0
	for _, r := range s.records {
		recStart, recEnd := offset, offset+r.Len()
		offset = recEnd

		// Intersect [recStart, recEnd) with [lo, hi).
		start := max(recStart, lo)
		end := min(recEnd, hi)
		if start >= end {
			continue
		}
		if start == recStart && end == recEnd {
			out = append(out, r)
			continue
		}
		sliced, err := r.Slice(start-recStart, end-recStart)
		if err != nil {
			return nil, err
		}
		out = append(out, sliced)
	}
	return ScatterGather{records: out, length: hi - lo}, nil
}

// Bytes implements ByteSource.
func (s ScatterGather) Bytes() []byte {
	out := make([]byte, 0, s.length)
	for _, r := range s.records {
		out = append(out, r.Bytes()...)
	}
	return out
}

// Sum256 implements ByteSource. The digest is accumulated record by
// record, in order, matching spec.md §3.1 ("scatter-gather hashes
// record-by-record in order") rather than by first materializing the
// full concatenation.
func (s ScatterGather) Sum256() [32]byte {
	h := sha256.New()
	for _, r := range s.records {
		h.Write(r.Bytes())
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Records implements ByteSource.
func (s ScatterGather) Records() []ByteSource {
	out := make([]ByteSource, len(s.records))
	copy(out, s.records)
	return out
}

// WriteTo implements ByteSource.
func (s ScatterGather) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, r := range s.records {
		n, err := r.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
