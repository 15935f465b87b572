package digest_test

import (
	"testing"

	"github.com/aa-labs/autoarchaeologist/pkg/digest"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewValid(t *testing.T) {
	d, err := digest.New("1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504")
	require.NoError(t, err)
	require.True(t, d.IsValid())
	require.Equal(t, "1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504", d.String())
}

func TestNewBadLength(t *testing.T) {
	_, err := digest.New("deadbeef")
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestNewBadHex(t *testing.T) {
	_, err := digest.New("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"[:64])
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestHashEqualsRecomputation exercises testable property 7 from
// spec.md §8.
func TestHashEqualsRecomputation(t *testing.T) {
	content := []byte("And another test")
	d := digest.Sum(content)
	require.Equal(t, "1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504", d.String())
}

func TestPrefixClamps(t *testing.T) {
	d := digest.Sum([]byte("x"))
	require.Len(t, d.Prefix(8), 8)
	require.Equal(t, d.String(), d.Prefix(1000))
}

func TestEqual(t *testing.T) {
	a := digest.Sum([]byte("abc"))
	b := digest.Sum([]byte("abc"))
	c := digest.Sum([]byte("abd"))
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
