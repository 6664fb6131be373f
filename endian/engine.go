// Package endian selects the byte order used for the multifile header and records.
//
// The multifile format has no byte-order marker: the reference writer packs every
// field in host-native order, and downstream readers assume the same host family.
// GetNativeEngine therefore is the default everywhere, while the explicit little
// and big engines exist for writing files meant for a different host family and
// for deterministic tests.
//
//	engine := endian.GetNativeEngine()
//	buf = engine.AppendUint32(buf, count)
//
// EndianEngine bundles binary.ByteOrder with binary.AppendByteOrder, so record
// serialization can append straight into a reused buffer instead of going through
// a temporary slice.
//
// All functions in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetNativeEngine returns the engine matching the host byte order.
func GetNativeEngine() EndianEngine {
	if CheckEndianness() == binary.BigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Parse maps "native", "little" or "big" (case-insensitive) to an engine.
// An empty name selects the native engine.
func Parse(name string) (EndianEngine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "native":
		return GetNativeEngine(), nil
	case "little", "le":
		return GetLittleEndianEngine(), nil
	case "big", "be":
		return GetBigEndianEngine(), nil
	default:
		return nil, fmt.Errorf("unknown byte order %q", name)
	}
}
