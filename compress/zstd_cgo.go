//go:build gozstd

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

type zstdWriter struct {
	zw *gozstd.Writer
}

func newZstdWriter(w io.Writer, level Level) (io.WriteCloser, error) {
	return &zstdWriter{zw: gozstd.NewWriterLevel(w, zstdLevels[level])}, nil
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	return w.zw.Write(p)
}

// Close finishes the frame and frees the C encoder.
func (w *zstdWriter) Close() error {
	if w.zw == nil {
		return nil
	}

	err := w.zw.Close()
	w.zw.Release()
	w.zw = nil

	return err
}

type zstdReader struct {
	zr *gozstd.Reader
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	return &zstdReader{zr: gozstd.NewReader(r)}, nil
}

func (r *zstdReader) Read(p []byte) (int, error) {
	return r.zr.Read(p)
}

func (r *zstdReader) Close() error {
	r.zr.Release()
	return nil
}
