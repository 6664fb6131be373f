// Package h5 reads EIGER master files through the HDF5 C library.
//
// The backend uses cgo and is only compiled with the hdf5 build tag:
//
//	go build -tags hdf5 ./cmd/mfcomp
//
// Without the tag, Opener.Open returns errs.ErrBackendUnavailable so the rest of
// the module (and the YAML fixture backend) still builds on hosts without
// libhdf5.
package h5

import "github.com/arloliu/mfcomp/container"

// Opener opens HDF5 files read-only.
type Opener struct{}

var _ container.Opener = Opener{}

// Available reports whether the HDF5 backend was compiled in.
func Available() bool {
	return available
}
