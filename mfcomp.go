// Package mfcomp converts dense 16-bit detector frame stacks stored in HDF5
// master files into sparse multifiles for XPCS analysis.
//
// A multifile is a fixed 1024-byte header followed by one sparse record per
// frame. Each record keeps only the pixels with 0 < v < 65535:
//
//	count:u32  indices:[count]u32  values:[count]u16
//
// # Basic Usage
//
//	sum, err := mfcomp.CompressFile("scan_master.h5", "scan.bin",
//	    compressor.WithVersionTag("v1.3.0"),
//	    compressor.WithWorkers(4),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d frames, %d bytes, checksum %016x\n", sum.Frames, sum.Bytes, sum.Checksum)
//
// Reading the header of an existing multifile:
//
//	h, err := mfcomp.ReadHeaderFile("scan.bin", endian.GetNativeEngine())
//
// # Package Structure
//
// This package wraps the compressor package with a container opener chosen by
// file extension. Use the sub-packages directly for finer control:
//   - compressor: the run orchestrator and its options
//   - resolver, header, encoding: the shard resolver, header builder and sparse codec
//   - container/h5, container/memory: HDF5 and in-memory/YAML container backends
//   - compress: optional output compression envelopes
package mfcomp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/mfcomp/compress"
	"github.com/arloliu/mfcomp/compressor"
	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/container/h5"
	"github.com/arloliu/mfcomp/container/memory"
	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/section"
)

// DefaultOpener opens YAML fixtures (.yaml, .yml) with the memory backend and
// everything else with the HDF5 backend.
var DefaultOpener container.Opener = container.OpenerFunc(func(name string) (container.Reader, error) {
	if memory.IsFixturePath(name) {
		return memory.FixtureOpener{}.Open(name)
	}

	return h5.Opener{}.Open(name)
})

// CompressFile converts the container src into the multifile dst using
// DefaultOpener. dst is replaced atomically.
func CompressFile(src, dst string, opts ...compressor.Option) (compressor.Summary, error) {
	c, err := compressor.New(DefaultOpener, opts...)
	if err != nil {
		return compressor.Summary{}, err
	}

	return c.CompressFile(src, dst)
}

// CompressionFromPath infers the output envelope from a file suffix such as
// ".zst". Unknown suffixes mean no envelope.
func CompressionFromPath(path string) format.CompressionType {
	ext := strings.ToLower(filepath.Ext(path))
	for _, ct := range []format.CompressionType{
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionSnappy,
	} {
		if ext == ct.Extension() {
			return ct
		}
	}

	return format.CompressionNone
}

// ReadHeader reads and validates the header at the start of a multifile stream
// wrapped in the given envelope. Records are not read.
func ReadHeader(r io.Reader, engine endian.EndianEngine, ct format.CompressionType) (section.Header, error) {
	zr, err := compress.NewReader(r, ct)
	if err != nil {
		return section.Header{}, err
	}
	defer zr.Close()

	buf := make([]byte, section.HeaderSize)
	if n, err := io.ReadFull(zr, buf); err != nil {
		return section.Header{}, fmt.Errorf("read header (%d of %d bytes): %w", n, section.HeaderSize, err)
	}

	return section.ParseHeader(buf, engine)
}

// ReadHeaderFile reads the header of the multifile at path, inferring the
// envelope from its suffix.
func ReadHeaderFile(path string, engine endian.EndianEngine) (section.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return section.Header{}, err
	}
	defer f.Close()

	h, err := ReadHeader(f, engine, CompressionFromPath(path))
	if err != nil {
		return section.Header{}, fmt.Errorf("%s: %w", path, err)
	}

	return h, nil
}
