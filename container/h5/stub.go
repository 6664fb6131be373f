//go:build !hdf5

package h5

import (
	"fmt"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
)

const available = false

// Open always fails; rebuild with -tags hdf5 to read HDF5 files.
func (Opener) Open(name string) (container.Reader, error) {
	return nil, fmt.Errorf("%w: %s needs a binary built with -tags hdf5", errs.ErrBackendUnavailable, name)
}
