// Package errs defines the sentinel errors returned by mfcomp.
//
// Errors are wrapped with context at the failure site, so callers should match
// them with errors.Is:
//
//	if errors.Is(err, errs.ErrDataIntegrity) {
//	    // shard numbering is broken, fix the input container
//	}
package errs

import "errors"

// Input integrity errors.
var (
	// ErrDataIntegrity indicates the shard numbering inside the container is not the
	// contiguous range 1..K (gap, duplicate, non-numeric suffix or no shard at all).
	ErrDataIntegrity = errors.New("shard ordering is broken")
	// ErrGeometryMismatch indicates a shard whose per-frame shape differs from the
	// canonical geometry taken from the first shard.
	ErrGeometryMismatch = errors.New("shard geometry mismatch")
	// ErrInvalidFrameSize indicates a frame buffer whose length is not rows*cols.
	ErrInvalidFrameSize = errors.New("invalid frame size")
	// ErrInvalidStackShape indicates a dataset that is not a 3-D frame stack.
	ErrInvalidStackShape = errors.New("invalid frame stack shape")
	// ErrFrameOutOfRange indicates a frame index outside the shard's stack.
	ErrFrameOutOfRange = errors.New("frame index out of range")
)

// Metadata and header errors.
var (
	// ErrMetadataLookup indicates a required metadata path is absent or unreadable.
	ErrMetadataLookup = errors.New("metadata lookup failed")
	// ErrInvalidHeaderSize indicates a header byte slice that is not HeaderSize long.
	ErrInvalidHeaderSize = errors.New("invalid header size")
	// ErrInvalidHeaderVersion indicates an unknown header version tag.
	ErrInvalidHeaderVersion = errors.New("invalid header version")
	// ErrInvalidROI indicates a region of interest outside the image geometry.
	ErrInvalidROI = errors.New("invalid region of interest")
	// ErrInvalidGeometry indicates zero or oversized image dimensions.
	ErrInvalidGeometry = errors.New("invalid image geometry")
)

// Container and configuration errors.
var (
	// ErrNotFound indicates a group, dataset or scalar path missing from the container.
	ErrNotFound = errors.New("path not found")
	// ErrBackendUnavailable indicates a container backend not compiled into this binary.
	ErrBackendUnavailable = errors.New("container backend unavailable")
	// ErrInvalidConfig indicates an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidSchemaVersion indicates an unknown schema version enum value.
	ErrInvalidSchemaVersion = errors.New("invalid schema version")
)
