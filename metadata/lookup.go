// Package metadata is the scalar lookup the header builder reads acquisition
// metadata through.
package metadata

import (
	"fmt"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
)

// Lookup reads numeric scalars by logical path.
//
// Every header field is read with Float64. Int64 serves integer-typed paths
// supplied by callers, such as detector pixel counts in custom layouts.
type Lookup interface {
	Float64(path string) (float64, error)
	Int64(path string) (int64, error)
}

// FromContainer exposes an open container as a Lookup.
func FromContainer(r container.Reader) Lookup {
	return containerLookup{r: r}
}

type containerLookup struct {
	r container.Reader
}

func (c containerLookup) Float64(path string) (float64, error) {
	return c.r.ReadFloat64(path)
}

func (c containerLookup) Int64(path string) (int64, error) {
	return c.r.ReadInt64(path)
}

// MapLookup is a Lookup over an already resolved path -> value table. Paths are
// normalized, so "/entry/x" and "entry/x" name the same value.
type MapLookup map[string]float64

var _ Lookup = MapLookup(nil)

func (m MapLookup) get(path string) (float64, bool) {
	if v, ok := m[path]; ok {
		return v, true
	}
	v, ok := m[container.CleanPath(path)]
	if !ok {
		v, ok = m["/"+container.CleanPath(path)]
	}

	return v, ok
}

func (m MapLookup) Float64(path string) (float64, error) {
	v, ok := m.get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrNotFound, path)
	}

	return v, nil
}

func (m MapLookup) Int64(path string) (int64, error) {
	v, ok := m.get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrNotFound, path)
	}
	if v != float64(int64(v)) {
		return 0, fmt.Errorf("%q holds non-integer value %g", path, v)
	}

	return int64(v), nil
}
