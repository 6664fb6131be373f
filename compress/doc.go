// Package compress wraps the multifile output stream in an optional general
// purpose compression envelope.
//
// The sparse record layout itself is never altered: the envelope compresses the
// finished byte stream, so decompressing it yields the exact multifile that an
// uncompressed run would have written. The default is format.CompressionNone.
//
// Supported envelopes:
//   - Zstd: klauspost/compress/zstd, or valyala/gozstd when built with -tags gozstd
//   - S2: klauspost/compress/s2 stream format
//   - LZ4: pierrec/lz4 frame format
//   - Snappy: golang/snappy framing format
//
// Example:
//
//	zw, err := compress.NewWriter(f, format.CompressionZstd, compress.WithLevel(compress.LevelBetter))
//	if err != nil {
//	    return err
//	}
//	// write the multifile to zw ...
//	if err := zw.Close(); err != nil { // flushes, does not close f
//	    return err
//	}
package compress
