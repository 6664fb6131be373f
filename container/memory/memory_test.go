package memory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()

	f := NewFile().
		SetFloat64("entry/instrument/detector/count_time", 0.5).
		SetInt64("/entry/instrument/detector/bit_depth", 16)

	shape := container.StackShape{Frames: 2, Rows: 2, Cols: 3}
	data := []uint16{
		0, 1, 2, 3, 4, 5,
		6, 7, 8, 9, 10, 11,
	}
	require.NoError(t, f.AddStack("/entry/data/data_000001", shape, data))
	require.NoError(t, f.AddStack("/entry/data/data_000002", shape, nil))
	f.AddGroup("/entry/data/empty_group")

	return f
}

func TestReader_Children(t *testing.T) {
	r := newTestFile(t).Reader()
	defer r.Close()

	names, err := r.Children("/entry/data")
	require.NoError(t, err)
	require.Equal(t, []string{"data_000001", "data_000002", "empty_group"}, names)

	names, err = r.Children("entry")
	require.NoError(t, err)
	require.Equal(t, []string{"data", "instrument"}, names)

	names, err = r.Children("/")
	require.NoError(t, err)
	require.Equal(t, []string{"entry"}, names)

	_, err = r.Children("/entry/missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReader_Scalars(t *testing.T) {
	r := newTestFile(t).Reader()
	defer r.Close()

	v, err := r.ReadFloat64("/entry/instrument/detector/count_time")
	require.NoError(t, err)
	require.Equal(t, 0.5, v)

	n, err := r.ReadInt64("entry/instrument/detector/bit_depth")
	require.NoError(t, err)
	require.Equal(t, int64(16), n)

	asFloat, err := r.ReadFloat64("entry/instrument/detector/bit_depth")
	require.NoError(t, err)
	require.Equal(t, 16.0, asFloat)

	_, err = r.ReadFloat64("entry/instrument/beam/incident_wavelength")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReader_ReadFrame(t *testing.T) {
	r := newTestFile(t).Reader()
	defer r.Close()

	shape, err := r.StackShape("entry/data/data_000001")
	require.NoError(t, err)
	require.Equal(t, container.StackShape{Frames: 2, Rows: 2, Cols: 3}, shape)

	dst := make([]uint16, shape.FrameSize())
	require.NoError(t, r.ReadFrame("entry/data/data_000001", 1, dst))
	require.Equal(t, []uint16{6, 7, 8, 9, 10, 11}, dst)

	require.ErrorIs(t, r.ReadFrame("entry/data/data_000001", 2, dst), errs.ErrFrameOutOfRange)
	require.ErrorIs(t, r.ReadFrame("entry/data/data_000001", 0, dst[:5]), errs.ErrInvalidFrameSize)
	require.ErrorIs(t, r.ReadFrame("entry/data/data_000009", 0, dst), errs.ErrNotFound)
}

func TestReader_Closed(t *testing.T) {
	r := newTestFile(t).Reader()
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.Children("entry")
	require.Error(t, err)
}

func TestFile_AddStackErrors(t *testing.T) {
	f := NewFile()

	err := f.AddStack("s", container.StackShape{Frames: 1, Rows: 2, Cols: 2}, []uint16{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrInvalidFrameSize)

	err = f.AddStack("s", container.StackShape{Frames: 1, Rows: 0, Cols: 2}, nil)
	require.ErrorIs(t, err, errs.ErrInvalidStackShape)

	require.ErrorIs(t, f.SetPixel("nope", 0, 0, 1), errs.ErrNotFound)
}

func TestStore_OpenCounts(t *testing.T) {
	store := NewStore()
	store.Put("scan.h5", newTestFile(t))

	r1, err := store.Open("scan.h5")
	require.NoError(t, err)
	r2, err := store.Open("scan.h5")
	require.NoError(t, err)

	require.Equal(t, 2, store.Opens("scan.h5"))
	require.Equal(t, 2, store.Active())

	require.NoError(t, r1.Close())
	require.NoError(t, r1.Close())
	require.Equal(t, 1, store.Active())
	require.NoError(t, r2.Close())
	require.Equal(t, 0, store.Active())

	_, err = store.Open("other.h5")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

const fixtureYAML = `
floats:
  entry/instrument/detector/count_time: 0.00134
ints:
  entry/instrument/detector/bit_depth_image: 16
stacks:
  /entry/data/data_000001:
    frames: 2
    rows: 2
    cols: 2
    pixels:
      - {frame: 1, index: 3, value: 65535}
      - {frame: 1, index: 0, value: 7}
  /entry/data/data_000002:
    frames: 1
    rows: 2
    cols: 2
    data: [1, 2, 3, 4]
`

func TestDecodeFixture(t *testing.T) {
	f, err := DecodeFixture(strings.NewReader(fixtureYAML))
	require.NoError(t, err)

	r := f.Reader()
	defer r.Close()

	ct, err := r.ReadFloat64("entry/instrument/detector/count_time")
	require.NoError(t, err)
	require.Equal(t, 0.00134, ct)

	dst := make([]uint16, 4)
	require.NoError(t, r.ReadFrame("/entry/data/data_000001", 1, dst))
	require.Equal(t, []uint16{7, 0, 0, 65535}, dst)

	require.NoError(t, r.ReadFrame("/entry/data/data_000002", 0, dst))
	require.Equal(t, []uint16{1, 2, 3, 4}, dst)
}

func TestDecodeFixture_Errors(t *testing.T) {
	_, err := DecodeFixture(strings.NewReader("unknown_key: 1\n"))
	require.Error(t, err)

	bad := "stacks:\n  s:\n    frames: 1\n    rows: 2\n    cols: 2\n    data: [1]\n"
	_, err = DecodeFixture(strings.NewReader(bad))
	require.ErrorIs(t, err, errs.ErrInvalidFrameSize)

	oob := "stacks:\n  s:\n    frames: 1\n    rows: 1\n    cols: 1\n    pixels: [{frame: 0, index: 4, value: 1}]\n"
	_, err = DecodeFixture(strings.NewReader(oob))
	require.ErrorIs(t, err, errs.ErrFrameOutOfRange)
}

func TestFixtureOpener(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))

	r, err := FixtureOpener{}.Open(path)
	require.NoError(t, err)
	defer r.Close()

	names, err := r.Children("/entry/data")
	require.NoError(t, err)
	require.Equal(t, []string{"data_000001", "data_000002"}, names)

	_, err = FixtureOpener{}.Open(filepath.Join(dir, "scan.h5"))
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)

	_, err = FixtureOpener{}.Open(filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}
