// Package digest provides the content-addressed identity used by the
// artifact graph. Unlike a general purpose content-addressable-storage
// digest, an artifact digest is always a SHA-256 hash of the artifact's
// logical byte content; there is no instance name and no alternate
// hashing algorithm to select between.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Digest identifies an Artifact by the SHA-256 hash of its content.
//
// A Digest produced by a constructor always holds exactly
// sha256.Size*2 lower-case hexadecimal characters. Because Digest
// objects are frequently used as map keys, the implementation keeps
// only this precomputed hexadecimal string representation; all
// accessors operate directly on it.
type Digest struct {
	hex string
}

// BadDigest is the zero value of Digest. It is returned by constructors
// on failure and must never be looked up in an Excavation's digest
// table.
var BadDigest Digest

// New constructs a Digest from a hexadecimal SHA-256 hash string. It
// fails with an InvalidArgument error if the string is not exactly 64
// hexadecimal characters.
func New(hash string) (Digest, error) {
	if len(hash) != sha256.Size*2 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "digest: invalid hash length: %d characters", len(hash))
	}
	for _, c := range hash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return BadDigest, status.Errorf(codes.InvalidArgument, "digest: non-hexadecimal character in hash: %#U", c)
		}
	}
	return Digest{hex: strings.ToLower(hash)}, nil
}

// MustNew is like New, but panics on failure. Useful for constants and
// tests.
func MustNew(hash string) Digest {
	d, err := New(hash)
	if err != nil {
		panic(err)
	}
	return d
}

// Sum computes the Digest of a byte slice directly.
func Sum(b []byte) Digest {
	sum := sha256.Sum256(b)
	return Digest{hex: hex.EncodeToString(sum[:])}
}

// SumBytes wraps a precomputed SHA-256 sum, used for ScatterGather byte
// sources whose hash is accumulated record by record rather than over
// one contiguous slice.
func SumBytes(sum [32]byte) Digest {
	return Digest{hex: hex.EncodeToString(sum[:])}
}

// IsValid reports whether d was produced by a successful constructor
// call, as opposed to being the BadDigest zero value.
func (d Digest) IsValid() bool {
	return d.hex != ""
}

// String returns the hexadecimal hash, e.g. for use as a map key or log
// field. It is the canonical representation of the digest.
func (d Digest) String() string {
	return d.hex
}

// Prefix returns the first n hexadecimal characters of the digest,
// used as a fallback artifact name and as the default report page file
// stem. It never panics: n is clamped to the digest's length.
func (d Digest) Prefix(n int) string {
	if n > len(d.hex) {
		n = len(d.hex)
	}
	return d.hex[:n]
}

// Equal reports whether two digests identify the same content.
func (d Digest) Equal(o Digest) bool {
	return d.hex == o.hex
}

// GoString supports "%#v" formatting in test failure messages.
func (d Digest) GoString() string {
	return fmt.Sprintf("digest.MustNew(%q)", d.hex)
}
