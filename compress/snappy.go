package compress

import (
	"io"

	"github.com/golang/snappy"
)

// Snappy has no levels; the framing format is always written.
func newSnappyWriter(w io.Writer) io.WriteCloser {
	return snappy.NewBufferedWriter(w)
}

func newSnappyReader(r io.Reader) io.ReadCloser {
	return io.NopCloser(snappy.NewReader(r))
}
