package format

import (
	"fmt"
	"strings"
)

type (
	HeaderVersion   uint8
	CompressionType uint8
)

const (
	HeaderV1 HeaderVersion = 0x1 // HeaderV1 tags the header as "Version-COMP0001".
	HeaderV2 HeaderVersion = 0x2 // HeaderV2 tags the header as "Version-COMP0002".

	CompressionNone   CompressionType = 0x1 // CompressionNone writes the multifile stream as-is.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd wraps the stream in a Zstandard frame.
	CompressionS2     CompressionType = 0x3 // CompressionS2 wraps the stream in an S2 stream.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 wraps the stream in an LZ4 frame.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy wraps the stream in a framed snappy stream.
)

// versionTags holds the 16-byte ASCII tags written at offset 0 of the header.
var versionTags = [...]string{
	HeaderV1: "Version-COMP0001",
	HeaderV2: "Version-COMP0002",
}

// Tag returns the 16-byte version tag, or an empty string for an unknown version.
func (v HeaderVersion) Tag() string {
	if !v.Valid() {
		return ""
	}

	return versionTags[v]
}

// Valid reports whether v is a known header version.
func (v HeaderVersion) Valid() bool {
	return v == HeaderV1 || v == HeaderV2
}

func (v HeaderVersion) String() string {
	switch v {
	case HeaderV1:
		return "COMP0001"
	case HeaderV2:
		return "COMP0002"
	default:
		return "Unknown"
	}
}

// ParseHeaderTag maps a version tag back to its HeaderVersion.
func ParseHeaderTag(tag string) (HeaderVersion, bool) {
	for _, v := range []HeaderVersion{HeaderV1, HeaderV2} {
		if versionTags[v] == tag {
			return v, true
		}
	}

	return 0, false
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}

// Extension returns the conventional file suffix for the compression envelope.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionZstd:
		return ".zst"
	case CompressionS2:
		return ".s2"
	case CompressionLZ4:
		return ".lz4"
	case CompressionSnappy:
		return ".sz"
	default:
		return ""
	}
}

// ParseCompression parses a case-insensitive compression name such as "zstd".
// An empty name maps to CompressionNone.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "snappy":
		return CompressionSnappy, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}
