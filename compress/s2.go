package compress

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// LevelDefault and LevelFastest both use the default S2 encoder.
func newS2Writer(w io.Writer, level Level) io.WriteCloser {
	var opts []s2.WriterOption
	switch level {
	case LevelBetter:
		opts = append(opts, s2.WriterBetterCompression())
	case LevelBest:
		opts = append(opts, s2.WriterBestCompression())
	}

	return s2.NewWriter(w, opts...)
}

func newS2Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(s2.NewReader(r))
}
