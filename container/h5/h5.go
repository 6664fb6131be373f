//go:build hdf5

package h5

import (
	"fmt"

	"gonum.org/v1/hdf5"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
)

const available = true

// Open opens name read-only.
func (Opener) Open(name string) (container.Reader, error) {
	f, err := hdf5.OpenFile(name, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}

	return &reader{name: name, file: f}, nil
}

type reader struct {
	name string
	file *hdf5.File

	// the last stack touched stays open across ReadFrame calls
	stackPath string
	stack     *hdf5.Dataset
	shape     container.StackShape
}

var _ container.Reader = (*reader)(nil)

func absPath(path string) string {
	return "/" + container.CleanPath(path)
}

func (r *reader) Children(group string) ([]string, error) {
	g, err := r.file.OpenGroup(absPath(group))
	if err != nil {
		return nil, fmt.Errorf("%w: %s group %q: %v", errs.ErrNotFound, r.name, group, err)
	}
	defer g.Close()

	n, err := g.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("%s group %q: %w", r.name, group, err)
	}

	names := make([]string, 0, n)
	for i := range n {
		name, err := g.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("%s group %q child %d: %w", r.name, group, i, err)
		}
		names = append(names, name)
	}

	// HDF5 indexes links by name by default, so names are already sorted.
	return names, nil
}

func (r *reader) ReadFloat64(path string) (float64, error) {
	return r.readScalar(path)
}

func (r *reader) ReadInt64(path string) (int64, error) {
	v, err := r.readScalar(path)
	if err != nil {
		return 0, err
	}

	return int64(v), nil
}

// readScalar reads a numeric scalar whatever its stored width. The library reads
// in the file's own datatype, so the Go destination must match it.
func (r *reader) readScalar(path string) (float64, error) {
	ds, err := r.file.OpenDataset(absPath(path))
	if err != nil {
		return 0, fmt.Errorf("%w: %s scalar %q: %v", errs.ErrNotFound, r.name, path, err)
	}
	defer ds.Close()

	dtype, err := ds.Datatype()
	if err != nil {
		return 0, fmt.Errorf("%s scalar %q: %w", r.name, path, err)
	}
	defer dtype.Close()

	var v float64
	switch class, size := dtype.Class(), dtype.Size(); {
	case class == hdf5.T_FLOAT && size == 4:
		var f float32
		err = ds.Read(&f)
		v = float64(f)
	case class == hdf5.T_FLOAT && size == 8:
		err = ds.Read(&v)
	case class == hdf5.T_INTEGER && size == 1:
		var n int8
		err = ds.Read(&n)
		v = float64(n)
	case class == hdf5.T_INTEGER && size == 2:
		var n int16
		err = ds.Read(&n)
		v = float64(n)
	case class == hdf5.T_INTEGER && size == 4:
		var n int32
		err = ds.Read(&n)
		v = float64(n)
	case class == hdf5.T_INTEGER && size == 8:
		var n int64
		err = ds.Read(&n)
		v = float64(n)
	default:
		return 0, fmt.Errorf("%s scalar %q: unsupported datatype class %v size %d", r.name, path, class, size)
	}
	if err != nil {
		return 0, fmt.Errorf("%s scalar %q: %w", r.name, path, err)
	}

	return v, nil
}

func (r *reader) StackShape(path string) (container.StackShape, error) {
	ds, err := r.file.OpenDataset(absPath(path))
	if err != nil {
		return container.StackShape{}, fmt.Errorf("%w: %s stack %q: %v", errs.ErrNotFound, r.name, path, err)
	}
	defer ds.Close()

	return stackShape(path, ds)
}

func stackShape(path string, ds *hdf5.Dataset) (container.StackShape, error) {
	space := ds.Space()
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return container.StackShape{}, fmt.Errorf("stack %q: %w", path, err)
	}
	if len(dims) != 3 {
		return container.StackShape{}, fmt.Errorf("%w: %q has rank %d", errs.ErrInvalidStackShape, path, len(dims))
	}

	dtype, err := ds.Datatype()
	if err != nil {
		return container.StackShape{}, fmt.Errorf("stack %q: %w", path, err)
	}
	defer dtype.Close()
	if dtype.Class() != hdf5.T_INTEGER || dtype.Size() != 2 {
		return container.StackShape{}, fmt.Errorf("%w: %q does not hold 16-bit samples", errs.ErrInvalidStackShape, path)
	}

	shape := container.StackShape{Frames: int(dims[0]), Rows: int(dims[1]), Cols: int(dims[2])}

	return shape, shape.Validate()
}

func (r *reader) openStack(path string) error {
	path = absPath(path)
	if r.stack != nil && r.stackPath == path {
		return nil
	}
	r.closeStack()

	ds, err := r.file.OpenDataset(path)
	if err != nil {
		return fmt.Errorf("%w: %s stack %q: %v", errs.ErrNotFound, r.name, path, err)
	}

	shape, err := stackShape(path, ds)
	if err != nil {
		ds.Close()
		return err
	}

	r.stackPath, r.stack, r.shape = path, ds, shape

	return nil
}

func (r *reader) closeStack() {
	if r.stack != nil {
		r.stack.Close()
		r.stack = nil
		r.stackPath = ""
	}
}

// ReadFrame selects one frame as a hyperslab and reads it straight into dst.
func (r *reader) ReadFrame(path string, index int, dst []uint16) error {
	if err := r.openStack(path); err != nil {
		return err
	}
	if err := container.CheckFrame(path, r.shape, index, dst); err != nil {
		return err
	}

	filespace := r.stack.Space()
	defer filespace.Close()

	offset := []uint{uint(index), 0, 0}
	count := []uint{1, uint(r.shape.Rows), uint(r.shape.Cols)}
	if err := filespace.SelectHyperslab(offset, nil, count, nil); err != nil {
		return fmt.Errorf("%s stack %q frame %d: %w", r.name, path, index, err)
	}

	memspace, err := hdf5.CreateSimpleDataspace(count, nil)
	if err != nil {
		return fmt.Errorf("%s stack %q frame %d: %w", r.name, path, index, err)
	}
	defer memspace.Close()

	if err := r.stack.ReadSubset(&dst[0], memspace, filespace); err != nil {
		return fmt.Errorf("%s stack %q frame %d: %w", r.name, path, index, err)
	}

	return nil
}

func (r *reader) Close() error {
	r.closeStack()
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil

	return err
}
