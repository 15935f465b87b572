package bytesource_test

import (
	"bytes"
	"testing"

	"github.com/aa-labs/autoarchaeologist/pkg/bytesource"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestContiguousBasic(t *testing.T) {
	bs, err := bytesource.NewContiguous([]byte("AAAABBBB"))
	require.NoError(t, err)
	require.Equal(t, 8, bs.Len())

	b, err := bs.At(4)
	require.NoError(t, err)
	require.Equal(t, byte('B'), b)

	require.Len(t, bs.Records(), 1)
}

func TestContiguousEmptyIsInvalid(t *testing.T) {
	_, err := bytesource.NewContiguous(nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestContiguousSliceIsZeroCopyAndTyped(t *testing.T) {
	bs, err := bytesource.NewContiguous([]byte("AAAABBBB"))
	require.NoError(t, err)

	sl, err := bs.Slice(4, 8)
	require.NoError(t, err)
	require.Equal(t, []byte("BBBB"), sl.Bytes())
	require.IsType(t, bytesource.Contiguous{}, sl)
}

func TestContiguousSliceErrors(t *testing.T) {
	bs, err := bytesource.NewContiguous([]byte("AAAA"))
	require.NoError(t, err)

	_, err = bs.Slice(2, 2)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = bs.Slice(0, 5)
	require.Equal(t, codes.OutOfRange, status.Code(err))
}

func TestScatterGatherLengthAndHash(t *testing.T) {
	r1, err := bytesource.NewContiguous([]byte("AAAA"))
	require.NoError(t, err)
	r2, err := bytesource.NewContiguous([]byte("BBBB"))
	require.NoError(t, err)

	sg, err := bytesource.NewScatterGather([]bytesource.ByteSource{r1, r2})
	require.NoError(t, err)
	require.Equal(t, 8, sg.Len())
	require.Equal(t, []byte("AAAABBBB"), sg.Bytes())

	// Testable property 7: hash equals recomputation over the
	// logical concatenation, even though it is computed record by
	// record.
	whole, err := bytesource.NewContiguous([]byte("AAAABBBB"))
	require.NoError(t, err)
	require.Equal(t, whole.Sum256(), sg.Sum256())

	require.Len(t, sg.Records(), 2)
}

func TestScatterGatherSliceCrossesRecordBoundary(t *testing.T) {
	r1, _ := bytesource.NewContiguous([]byte("AAAA"))
	r2, _ := bytesource.NewContiguous([]byte("BBBB"))
	sg, err := bytesource.NewScatterGather([]bytesource.ByteSource{r1, r2})
	require.NoError(t, err)

	sl, err := sg.Slice(2, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("AABB"), sl.Bytes())
	require.IsType(t, bytesource.ScatterGather{}, sl)
	require.Len(t, sl.Records(), 2)
}

func TestScatterGatherSliceWithinSingleRecordReusesIt(t *testing.T) {
	r1, _ := bytesource.NewContiguous([]byte("AAAA"))
	r2, _ := bytesource.NewContiguous([]byte("BBBB"))
	sg, err := bytesource.NewScatterGather([]bytesource.ByteSource{r1, r2})
	require.NoError(t, err)

	sl, err := sg.Slice(0, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("AAAA"), sl.Bytes())
	require.Len(t, sl.Records(), 1)
}

func TestScatterGatherEmptyTotalIsInvalid(t *testing.T) {
	_, err := bytesource.NewScatterGather(nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestScatterGatherWriteTo(t *testing.T) {
	r1, _ := bytesource.NewContiguous([]byte("AAAA"))
	r2, _ := bytesource.NewContiguous([]byte("BBBB"))
	sg, err := bytesource.NewScatterGather([]bytesource.ByteSource{r1, r2})
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := sg.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 8, n)
	require.Equal(t, "AAAABBBB", buf.String())
}
