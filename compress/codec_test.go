package compress

import (
	"bytes"
	"io"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
	format.CompressionSnappy,
}

// sparseLike returns data shaped like a multifile: long zero runs with scattered values.
func sparseLike(n int) []byte {
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]byte, n)
	for i := range data {
		if rng.IntN(20) == 0 {
			data[i] = byte(rng.IntN(256))
		}
	}

	return data
}

func roundTrip(t *testing.T, ct format.CompressionType, level Level, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw, err := NewWriter(&buf, ct, WithLevel(level))
	require.NoError(t, err)

	// write in uneven chunks like the record writer does
	for rest := data; len(rest) > 0; {
		n := min(len(rest), 1000+len(rest)%777)
		written, err := zw.Write(rest[:n])
		require.NoError(t, err)
		require.Equal(t, n, written)
		rest = rest[n:]
	}
	require.NoError(t, zw.Close())

	zr, err := NewReader(bytes.NewReader(buf.Bytes()), ct)
	require.NoError(t, err)
	defer zr.Close()

	got, err := io.ReadAll(zr)
	require.NoError(t, err)

	return got
}

func TestEnvelope_RoundTrip(t *testing.T) {
	data := sparseLike(256 * 1024)

	for _, ct := range allTypes {
		for level := LevelDefault; level < numLevels; level++ {
			t.Run(ct.String()+"/"+level.String(), func(t *testing.T) {
				got := roundTrip(t, ct, level, data)
				require.Equal(t, data, got)
			})
		}
	}
}

func TestEnvelope_Empty(t *testing.T) {
	for _, ct := range allTypes {
		t.Run(ct.String(), func(t *testing.T) {
			got := roundTrip(t, ct, LevelDefault, nil)
			require.Empty(t, got)
		})
	}
}

func TestEnvelope_Compresses(t *testing.T) {
	data := sparseLike(512 * 1024)

	for _, ct := range allTypes[1:] {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			zw, err := NewWriter(&buf, ct)
			require.NoError(t, err)
			_, err = zw.Write(data)
			require.NoError(t, err)
			require.NoError(t, zw.Close())

			require.Less(t, buf.Len(), len(data))
		})
	}
}

func TestEnvelope_NoneIsPassThrough(t *testing.T) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, format.CompressionNone)
	require.NoError(t, err)

	_, err = zw.Write([]byte("Version-COMP0002"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.Equal(t, "Version-COMP0002", buf.String())
}

func TestEnvelope_InvalidArguments(t *testing.T) {
	_, err := NewWriter(io.Discard, format.CompressionType(42))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewReader(bytes.NewReader(nil), format.CompressionType(42))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, err = NewWriter(io.Discard, format.CompressionZstd, WithLevel(Level(9)))
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{in: "", want: LevelDefault},
		{in: "Default", want: LevelDefault},
		{in: "fast", want: LevelFastest},
		{in: "fastest", want: LevelFastest},
		{in: "better", want: LevelBetter},
		{in: " BEST ", want: LevelBest},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
		require.Equal(t, got, mustParse(t, got.String()))
	}

	_, err := ParseLevel("ultra")
	require.ErrorIs(t, err, errs.ErrInvalidConfig)
}

func mustParse(t *testing.T, name string) Level {
	t.Helper()

	l, err := ParseLevel(name)
	require.NoError(t, err)

	return l
}

func BenchmarkEnvelope_Write(b *testing.B) {
	data := sparseLike(1024 * 1024)

	for _, ct := range allTypes {
		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()

			for b.Loop() {
				zw, err := NewWriter(io.Discard, ct)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := zw.Write(data); err != nil {
					b.Fatal(err)
				}
				if err := zw.Close(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
