package section

import (
	"fmt"
	"math"

	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
)

// Header is the fixed 1024-byte record written once at the start of a multifile.
//
// The struct carries no byte order: the caller picks the engine when the header
// is serialized, normally endian.GetNativeEngine().
type Header struct {
	Version format.HeaderVersion // byte offset 0-15, ASCII tag

	BeamCenterX      float64 // byte offset 16-23
	BeamCenterY      float64 // byte offset 24-31
	CountTime        float64 // byte offset 32-39
	DetectorDistance float64 // byte offset 40-47, always 0 when built from metadata
	FrameTime        float64 // byte offset 48-55
	Wavelength       float64 // byte offset 56-63
	XPixelSize       float64 // byte offset 64-71
	YPixelSize       float64 // byte offset 72-79

	BytesPerPixel uint32 // byte offset 80-83
	NRows         uint32 // byte offset 84-87
	NCols         uint32 // byte offset 88-91
	RowsBegin     uint32 // byte offset 92-95
	RowsEnd       uint32 // byte offset 96-99
	ColsBegin     uint32 // byte offset 100-103
	ColsEnd       uint32 // byte offset 104-107
}

// NewHeader creates a header for a rows x cols image whose region of interest
// covers the full image. Metadata fields are left at zero.
func NewHeader(version format.HeaderVersion, rows, cols uint32) *Header {
	return &Header{
		Version:       version,
		BytesPerPixel: BytesPerPixel,
		NRows:         rows,
		NCols:         cols,
		RowsBegin:     0,
		RowsEnd:       rows,
		ColsBegin:     0,
		ColsEnd:       cols,
	}
}

// Validate checks the version tag and that the region of interest lies inside
// the image.
func (h *Header) Validate() error {
	if !h.Version.Valid() {
		return fmt.Errorf("%w: %d", errs.ErrInvalidHeaderVersion, h.Version)
	}

	if h.RowsBegin > h.RowsEnd || h.RowsEnd > h.NRows {
		return fmt.Errorf("%w: rows [%d, %d) outside 0..%d", errs.ErrInvalidROI, h.RowsBegin, h.RowsEnd, h.NRows)
	}

	if h.ColsBegin > h.ColsEnd || h.ColsEnd > h.NCols {
		return fmt.Errorf("%w: cols [%d, %d) outside 0..%d", errs.ErrInvalidROI, h.ColsBegin, h.ColsEnd, h.NCols)
	}

	return nil
}

// WriteToSlice serializes the header into b, which must be exactly HeaderSize bytes.
// The reserved tail is zeroed.
func (h *Header) WriteToSlice(b []byte, engine endian.EndianEngine) error {
	if len(b) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(b), HeaderSize)
	}

	if err := h.Validate(); err != nil {
		return err
	}

	copy(b[0:VersionTagSize], h.Version.Tag())

	engine.PutUint64(b[BeamCenterXOffset:], math.Float64bits(h.BeamCenterX))
	engine.PutUint64(b[BeamCenterYOffset:], math.Float64bits(h.BeamCenterY))
	engine.PutUint64(b[CountTimeOffset:], math.Float64bits(h.CountTime))
	engine.PutUint64(b[DetectorDistanceOffset:], math.Float64bits(h.DetectorDistance))
	engine.PutUint64(b[FrameTimeOffset:], math.Float64bits(h.FrameTime))
	engine.PutUint64(b[WavelengthOffset:], math.Float64bits(h.Wavelength))
	engine.PutUint64(b[XPixelSizeOffset:], math.Float64bits(h.XPixelSize))
	engine.PutUint64(b[YPixelSizeOffset:], math.Float64bits(h.YPixelSize))

	engine.PutUint32(b[BytesPerPixelOffset:], h.BytesPerPixel)
	engine.PutUint32(b[NRowsOffset:], h.NRows)
	engine.PutUint32(b[NColsOffset:], h.NCols)
	engine.PutUint32(b[RowsBeginOffset:], h.RowsBegin)
	engine.PutUint32(b[RowsEndOffset:], h.RowsEnd)
	engine.PutUint32(b[ColsBeginOffset:], h.ColsBegin)
	engine.PutUint32(b[ColsEndOffset:], h.ColsEnd)

	clear(b[ReservedOffset:])

	return nil
}

// Bytes serializes the header into a new HeaderSize-byte slice.
func (h *Header) Bytes(engine endian.EndianEngine) ([]byte, error) {
	b := make([]byte, HeaderSize)
	if err := h.WriteToSlice(b, engine); err != nil {
		return nil, err
	}

	return b, nil
}

// Parse parses the header from data using the given byte order.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly HeaderSize bytes)
//   - engine: Byte order the header was written with
//
// Returns:
//   - error: ErrInvalidHeaderSize, ErrInvalidHeaderVersion or ErrInvalidROI
func (h *Header) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	version, ok := format.ParseHeaderTag(string(data[0:VersionTagSize]))
	if !ok {
		return fmt.Errorf("%w: tag %q", errs.ErrInvalidHeaderVersion, data[0:VersionTagSize])
	}
	h.Version = version

	h.BeamCenterX = math.Float64frombits(engine.Uint64(data[BeamCenterXOffset:]))
	h.BeamCenterY = math.Float64frombits(engine.Uint64(data[BeamCenterYOffset:]))
	h.CountTime = math.Float64frombits(engine.Uint64(data[CountTimeOffset:]))
	h.DetectorDistance = math.Float64frombits(engine.Uint64(data[DetectorDistanceOffset:]))
	h.FrameTime = math.Float64frombits(engine.Uint64(data[FrameTimeOffset:]))
	h.Wavelength = math.Float64frombits(engine.Uint64(data[WavelengthOffset:]))
	h.XPixelSize = math.Float64frombits(engine.Uint64(data[XPixelSizeOffset:]))
	h.YPixelSize = math.Float64frombits(engine.Uint64(data[YPixelSizeOffset:]))

	h.BytesPerPixel = engine.Uint32(data[BytesPerPixelOffset:])
	h.NRows = engine.Uint32(data[NRowsOffset:])
	h.NCols = engine.Uint32(data[NColsOffset:])
	h.RowsBegin = engine.Uint32(data[RowsBeginOffset:])
	h.RowsEnd = engine.Uint32(data[RowsEndOffset:])
	h.ColsBegin = engine.Uint32(data[ColsBeginOffset:])
	h.ColsEnd = engine.Uint32(data[ColsEndOffset:])

	return h.Validate()
}

// ParseHeader parses a Header from the first HeaderSize bytes of data.
func ParseHeader(data []byte, engine endian.EndianEngine) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize], engine); err != nil {
		return Header{}, err
	}

	return h, nil
}

// Fields returns the structured export of the header, keyed by FieldNames.
//
// The analysis-configuration generator consumes this map instead of the binary
// form. It is derived from the same Header value that Bytes serializes.
func (h *Header) Fields() map[string]any {
	return map[string]any{
		FieldVersion:          h.Version.Tag(),
		FieldBeamCenterX:      h.BeamCenterX,
		FieldBeamCenterY:      h.BeamCenterY,
		FieldCountTime:        h.CountTime,
		FieldDetectorDistance: h.DetectorDistance,
		FieldFrameTime:        h.FrameTime,
		FieldWavelength:       h.Wavelength,
		FieldXPixelSize:       h.XPixelSize,
		FieldYPixelSize:       h.YPixelSize,
		FieldNRows:            h.NRows,
		FieldNCols:            h.NCols,
		FieldRowsBegin:        h.RowsBegin,
		FieldRowsEnd:          h.RowsEnd,
		FieldColsBegin:        h.ColsBegin,
		FieldColsEnd:          h.ColsEnd,
	}
}
