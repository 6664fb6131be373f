// Package section defines the byte-exact layout of the multifile header and of the
// sparse frame records that follow it.
//
// # File Structure
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (1024 bytes, fixed)                              │
//	│  - Version tag (16 bytes ASCII)                         │
//	│  - 8 x float64 acquisition metadata                     │
//	│  - 7 x uint32 geometry and region of interest           │
//	│  - Reserved zero pad (916 bytes)                        │
//	├─────────────────────────────────────────────────────────┤
//	│ Record 1 (variable)                                     │
//	│  - Count N (uint32)                                     │
//	│  - N x uint32 flat row-major pixel indices, ascending   │
//	│  - N x uint16 pixel values, same order                  │
//	├─────────────────────────────────────────────────────────┤
//	│ Record 2 ... Record M                                   │
//	└─────────────────────────────────────────────────────────┘
//
// Records carry no marker: a reader must decode N before it can skip the
// following 6*N bytes. Records appear in shard order, then frame order.
//
// # Header Format
//
//	Bytes    | Field             | Type    | Description
//	---------|-------------------|---------|----------------------------------
//	0-15     | Version           | [16]u8  | "Version-COMP0001" or "Version-COMP0002"
//	16-23    | BeamCenterX       | float64 | beam center, pixels
//	24-31    | BeamCenterY       | float64 | beam center, pixels
//	32-39    | CountTime         | float64 | exposure time, seconds
//	40-47    | DetectorDistance  | float64 | always 0
//	48-55    | FrameTime         | float64 | frame period, seconds
//	56-63    | Wavelength        | float64 | incident wavelength
//	64-71    | XPixelSize        | float64 | pixel pitch
//	72-79    | YPixelSize        | float64 | pixel pitch
//	80-83    | BytesPerPixel     | uint32  | always 2
//	84-87    | NRows             | uint32  | image rows
//	88-91    | NCols             | uint32  | image columns
//	92-95    | RowsBegin         | uint32  | ROI first row (default 0)
//	96-99    | RowsEnd           | uint32  | ROI end row (default NRows)
//	100-103  | ColsBegin         | uint32  | ROI first column (default 0)
//	104-107  | ColsEnd           | uint32  | ROI end column (default NCols)
//	108-1023 | Reserved          | [916]u8 | zero
//
// The two header versions share this layout; only the tag differs.
//
// # Byte Order
//
// The format has no byte-order flag. The reference writer packs host-native
// values, so serialization takes an explicit endian.EndianEngine and callers
// normally pass endian.GetNativeEngine().
package section
