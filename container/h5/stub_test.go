//go:build !hdf5

package h5

import (
	"testing"

	"github.com/arloliu/mfcomp/errs"
	"github.com/stretchr/testify/require"
)

func TestOpener_Unavailable(t *testing.T) {
	require.False(t, Available())

	r, err := Opener{}.Open("scan_master.h5")
	require.Nil(t, r)
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	require.Contains(t, err.Error(), "scan_master.h5")
}
