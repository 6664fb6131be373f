package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4WriterPool pools frame writers; Reset rebinds them to a new destination.
var lz4WriterPool = sync.Pool{
	New: func() any {
		return lz4.NewWriter(nil)
	},
}

var lz4Levels = [numLevels]lz4.CompressionLevel{
	LevelDefault: lz4.Fast,
	LevelFastest: lz4.Fast,
	LevelBetter:  lz4.Level5,
	LevelBest:    lz4.Level9,
}

type lz4Writer struct {
	*lz4.Writer
}

func newLZ4Writer(w io.Writer, level Level) (io.WriteCloser, error) {
	zw, _ := lz4WriterPool.Get().(*lz4.Writer)
	zw.Reset(w)
	if err := zw.Apply(lz4.CompressionLevelOption(lz4Levels[level])); err != nil {
		lz4WriterPool.Put(zw)
		return nil, fmt.Errorf("lz4 writer: %w", err)
	}

	return &lz4Writer{Writer: zw}, nil
}

// Close finishes the frame and returns the writer to the pool.
func (w *lz4Writer) Close() error {
	if w.Writer == nil {
		return nil
	}

	err := w.Writer.Close()
	lz4WriterPool.Put(w.Writer)
	w.Writer = nil

	return err
}

func newLZ4Reader(r io.Reader) io.ReadCloser {
	return io.NopCloser(lz4.NewReader(r))
}
