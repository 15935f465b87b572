package examine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aa-labs/autoarchaeologist/internal/mock"
	"github.com/aa-labs/autoarchaeologist/pkg/artifact"
	"github.com/aa-labs/autoarchaeologist/pkg/config"
	"github.com/aa-labs/autoarchaeologist/pkg/examine"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func newExcavation(t *testing.T, cfg config.Config) *artifact.Excavation {
	return artifact.NewExcavation(cfg)
}

// Scenario S1/S2: a single examiner that carves one child out of the
// root reaches a fixpoint after examining both root and child exactly
// once.
func TestRunReachesFixpoint(t *testing.T) {
	exc := newExcavation(t, config.DefaultConfig())
	root, err := exc.Ingest([]byte("0123456789"))
	require.NoError(t, err)

	seen := map[string]int{}
	exc.RegisterExaminer(examine.ExaminerFunc{
		FuncName: "splitter",
		Func: func(a *artifact.Artifact) error {
			seen[a.Digest().String()]++
			if a.Len() == 10 {
				_, err := a.CreateRange(0, 5)
				return err
			}
			return nil
		},
	})

	d := examine.NewDriver(exc, zerolog.Nop())
	require.NoError(t, d.Run(context.Background()))

	require.Equal(t, 1, seen[root.Digest().String()])
	require.Len(t, exc.TopLevel(), 1)
	// root + the carved child + the reconciled remainder [5,10) == 3
	// distinct artifacts overall.
	require.Equal(t, 3, exc.CreationLen())
}

// Scenario S6: an examiner error is recorded as a comment, not
// propagated, and does not stop the fixpoint loop.
func TestExaminerErrorRecordedAsComment(t *testing.T) {
	exc := newExcavation(t, config.DefaultConfig())
	root, err := exc.Ingest([]byte("payload..."))
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockEx := mock.NewMockExaminer(ctrl)
	mockEx.EXPECT().Name().Return("flaky").AnyTimes()
	mockEx.EXPECT().Examine(gomock.Any()).Return(status.Error(codes.Internal, "boom"))
	exc.RegisterExaminer(mockEx)

	d := examine.NewDriver(exc, zerolog.Nop())
	require.NoError(t, d.Run(context.Background()))

	require.True(t, root.HasNote("Has Comment"))
	require.Len(t, root.Comments(), 1)
	require.True(t, strings.HasPrefix(root.Comments()[0], "examiner "),
		"comment must begin with \"examiner \", got %q", root.Comments()[0])
}

func TestExaminerPanicRecordedAsComment(t *testing.T) {
	exc := newExcavation(t, config.DefaultConfig())
	root, err := exc.Ingest([]byte("payload two"))
	require.NoError(t, err)

	exc.RegisterExaminer(examine.ExaminerFunc{
		FuncName: "panicky",
		Func: func(a *artifact.Artifact) error {
			panic("kaboom")
		},
	})

	d := examine.NewDriver(exc, zerolog.Nop())
	require.NoError(t, d.Run(context.Background()))

	require.True(t, root.HasNote("Has Comment"))
	require.True(t, strings.HasPrefix(root.Comments()[0], "examiner "),
		"comment must begin with \"examiner \", got %q", root.Comments()[0])
}

// A runaway examiner that keeps creating new artifacts forever must
// be bounded by MaxArtifacts rather than looping indefinitely
// (spec.md §5).
func TestRunDivergesWhenUnbounded(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MaxArtifacts = 5
	exc := newExcavation(t, cfg)
	_, err := exc.Ingest([]byte("seed......"))
	require.NoError(t, err)

	counter := 0
	exc.RegisterExaminer(examine.ExaminerFunc{
		FuncName: "runaway",
		Func: func(a *artifact.Artifact) error {
			counter++
			_, err := a.CreateFromBytes([]byte{byte(counter), byte(counter + 1), byte(counter + 2)})
			return err
		},
	})

	d := examine.NewDriver(exc, zerolog.Nop())
	err = d.Run(context.Background())
	require.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestRunHonoursCancellation(t *testing.T) {
	exc := newExcavation(t, config.DefaultConfig())
	_, err := exc.Ingest([]byte("seed two......"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := examine.NewDriver(exc, zerolog.Nop())
	err = d.Run(ctx)
	require.Error(t, err)
}

// Registration order must be respected: with two examiners that both
// fire on the root, the one registered first must observe it before
// the second does.
func TestExaminersRunInRegistrationOrder(t *testing.T) {
	exc := newExcavation(t, config.DefaultConfig())
	_, err := exc.Ingest([]byte("ordering matters"))
	require.NoError(t, err)

	var order []string
	exc.RegisterExaminer(examine.ExaminerFunc{FuncName: "first", Func: func(a *artifact.Artifact) error {
		order = append(order, "first")
		return nil
	}})
	exc.RegisterExaminer(examine.ExaminerFunc{FuncName: "second", Func: func(a *artifact.Artifact) error {
		order = append(order, "second")
		return nil
	}})

	d := examine.NewDriver(exc, zerolog.Nop())
	require.NoError(t, d.Run(context.Background()))

	require.Equal(t, []string{"first", "second"}, order)
}
