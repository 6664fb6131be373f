// Package container defines the capability surface the compressor needs from a
// hierarchical scientific data container such as an HDF5 master file.
//
// The compressor never depends on a concrete container format. It enumerates
// groups, reads scalar metadata by logical path, and reads single frames of a
// 3-D frame stack straight into a buffer it owns. Backends live in
// sub-packages: memory (in-process and YAML fixtures) and h5 (HDF5 via cgo).
package container

import (
	"fmt"
	"strings"

	"github.com/arloliu/mfcomp/errs"
)

// StackShape is the shape of a 3-D frame stack: Frames images of Rows x Cols.
type StackShape struct {
	Frames int
	Rows   int
	Cols   int
}

// FrameSize returns the number of pixels in one frame.
func (s StackShape) FrameSize() int {
	return s.Rows * s.Cols
}

// SameGeometry reports whether s and other hold frames of identical rows and cols.
// Frame counts may differ.
func (s StackShape) SameGeometry(other StackShape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// Validate rejects empty or negative shapes.
func (s StackShape) Validate() error {
	if s.Frames < 0 || s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: %s", errs.ErrInvalidStackShape, s)
	}

	return nil
}

func (s StackShape) String() string {
	return fmt.Sprintf("%dx%dx%d", s.Frames, s.Rows, s.Cols)
}

// Reader is an open container handle. Implementations need not be safe for
// concurrent use; the compressor calls a Reader from one goroutine at a time.
type Reader interface {
	// Children returns the names of the immediate children of group, sorted by name.
	Children(group string) ([]string, error)

	// ReadFloat64 reads a scalar at path as a double.
	ReadFloat64(path string) (float64, error)

	// ReadInt64 reads a scalar at path as an integer. The header builder does
	// not use it; it backs metadata.Lookup.Int64 for integer-typed paths.
	ReadInt64(path string) (int64, error)

	// StackShape returns the shape of the frame stack at path.
	StackShape(path string) (StackShape, error)

	// ReadFrame copies frame index of the stack at path into dst, which must hold
	// exactly Rows*Cols samples. The callee writes into dst; no other copy is made.
	ReadFrame(path string, index int, dst []uint16) error

	// Close releases the handle.
	Close() error
}

// Opener opens a container by name (normally a file path).
type Opener interface {
	Open(name string) (Reader, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(name string) (Reader, error)

// Open calls f(name).
func (f OpenerFunc) Open(name string) (Reader, error) {
	return f(name)
}

// CleanPath normalizes a container path: no leading, trailing or doubled slashes.
// The root group is the empty string.
func CleanPath(path string) string {
	parts := strings.Split(path, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, "/")
}

// CheckFrame validates a ReadFrame request against the stack shape.
func CheckFrame(path string, shape StackShape, index int, dst []uint16) error {
	if index < 0 || index >= shape.Frames {
		return fmt.Errorf("%w: %s frame %d of %d", errs.ErrFrameOutOfRange, path, index, shape.Frames)
	}

	if len(dst) != shape.FrameSize() {
		return fmt.Errorf("%w: %s expects %d samples, buffer holds %d",
			errs.ErrInvalidFrameSize, path, shape.FrameSize(), len(dst))
	}

	return nil
}
