//go:build !gozstd

package compress

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdEncoderPools holds one encoder pool per level. Encoders are expensive to
// create and are designed to be reused through Reset.
var zstdEncoderPools [numLevels]sync.Pool

func getZstdEncoder(level Level) (*zstd.Encoder, error) {
	if enc, ok := zstdEncoderPools[level].Get().(*zstd.Encoder); ok {
		return enc, nil
	}

	return zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(zstdLevels[level])),
		zstd.WithEncoderConcurrency(1),
	)
}

type zstdWriter struct {
	enc   *zstd.Encoder
	level Level
}

func newZstdWriter(w io.Writer, level Level) (io.WriteCloser, error) {
	enc, err := getZstdEncoder(level)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	enc.Reset(w)

	return &zstdWriter{enc: enc, level: level}, nil
}

func (w *zstdWriter) Write(p []byte) (int, error) {
	return w.enc.Write(p)
}

// Close finishes the frame and returns the encoder to the pool.
func (w *zstdWriter) Close() error {
	if w.enc == nil {
		return nil
	}

	err := w.enc.Close()
	w.enc.Reset(nil)
	zstdEncoderPools[w.level].Put(w.enc)
	w.enc = nil

	return err
}

type zstdReader struct {
	dec *zstd.Decoder
}

func newZstdReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}

	return &zstdReader{dec: dec}, nil
}

func (r *zstdReader) Read(p []byte) (int, error) {
	return r.dec.Read(p)
}

func (r *zstdReader) Close() error {
	r.dec.Close()
	return nil
}
