// Package hash computes the xxHash64 checksum reported for every compressed run.
package hash

import (
	"io"

	"github.com/cespare/xxhash/v2"
)

// Sum64 computes the xxHash64 of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Writer forwards writes to an underlying writer while hashing every byte that
// was accepted. Bytes rejected by the underlying writer are not hashed.
type Writer struct {
	w      io.Writer
	digest *xxhash.Digest
	n      int64
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, digest: xxhash.New()}
}

func (hw *Writer) Write(p []byte) (int, error) {
	n, err := hw.w.Write(p)
	if n > 0 {
		_, _ = hw.digest.Write(p[:n])
		hw.n += int64(n)
	}

	return n, err
}

// Sum64 returns the checksum of all bytes written so far.
func (hw *Writer) Sum64() uint64 {
	return hw.digest.Sum64()
}

// Offset returns the number of bytes written so far.
func (hw *Writer) Offset() int64 {
	return hw.n
}
