package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinels_Wrapped(t *testing.T) {
	all := []error{
		ErrDataIntegrity, ErrGeometryMismatch, ErrInvalidFrameSize, ErrInvalidStackShape,
		ErrFrameOutOfRange, ErrMetadataLookup, ErrInvalidHeaderSize, ErrInvalidHeaderVersion,
		ErrInvalidROI, ErrInvalidGeometry, ErrNotFound, ErrBackendUnavailable,
		ErrInvalidConfig, ErrInvalidSchemaVersion,
	}

	for i, sentinel := range all {
		wrapped := fmt.Errorf("%w: shard data_%06d", sentinel, i)
		require.ErrorIs(t, wrapped, sentinel)

		for j, other := range all {
			if i != j {
				require.False(t, errors.Is(wrapped, other), "%v must not match %v", sentinel, other)
			}
		}
	}
}
