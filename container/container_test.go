package container

import (
	"testing"

	"github.com/arloliu/mfcomp/errs"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"/":                    "",
		"/entry/data":          "entry/data",
		"entry/data/":          "entry/data",
		"//entry//data_000001": "entry/data_000001",
		"./entry/instrument/x": "entry/instrument/x",
	}
	for in, want := range tests {
		require.Equal(t, want, CleanPath(in), "input %q", in)
	}
}

func TestStackShape(t *testing.T) {
	s := StackShape{Frames: 3, Rows: 4, Cols: 5}

	require.Equal(t, 20, s.FrameSize())
	require.Equal(t, "3x4x5", s.String())
	require.NoError(t, s.Validate())
	require.True(t, s.SameGeometry(StackShape{Frames: 1, Rows: 4, Cols: 5}))
	require.False(t, s.SameGeometry(StackShape{Frames: 3, Rows: 5, Cols: 4}))

	require.ErrorIs(t, StackShape{Frames: 1, Rows: 0, Cols: 4}.Validate(), errs.ErrInvalidStackShape)
	require.NoError(t, StackShape{Frames: 0, Rows: 1, Cols: 1}.Validate())
}

func TestCheckFrame(t *testing.T) {
	shape := StackShape{Frames: 2, Rows: 2, Cols: 2}

	require.NoError(t, CheckFrame("s", shape, 1, make([]uint16, 4)))
	require.ErrorIs(t, CheckFrame("s", shape, 2, make([]uint16, 4)), errs.ErrFrameOutOfRange)
	require.ErrorIs(t, CheckFrame("s", shape, -1, make([]uint16, 4)), errs.ErrFrameOutOfRange)
	require.ErrorIs(t, CheckFrame("s", shape, 0, make([]uint16, 3)), errs.ErrInvalidFrameSize)
}

func TestOpenerFunc(t *testing.T) {
	var got string
	opener := OpenerFunc(func(name string) (Reader, error) {
		got = name
		return nil, errs.ErrBackendUnavailable
	})

	_, err := opener.Open("scan_master.h5")
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	require.Equal(t, "scan_master.h5", got)
}
