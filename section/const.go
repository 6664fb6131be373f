package section

// Header layout. Every offset is from the start of the file.
const (
	HeaderSize     = 1024 // fixed header size in bytes, identical for every version
	VersionTagSize = 16   // ASCII version tag, e.g. "Version-COMP0002"
	ReservedSize   = 916  // zero pad closing the header

	BeamCenterXOffset      = 16
	BeamCenterYOffset      = 24
	CountTimeOffset        = 32
	DetectorDistanceOffset = 40
	FrameTimeOffset        = 48
	WavelengthOffset       = 56
	XPixelSizeOffset       = 64
	YPixelSizeOffset       = 72
	BytesPerPixelOffset    = 80
	NRowsOffset            = 84
	NColsOffset            = 88
	RowsBeginOffset        = 92
	RowsEndOffset          = 96
	ColsBeginOffset        = 100
	ColsEndOffset          = 104
	ReservedOffset         = 108
)

// BytesPerPixel is the sample width recorded in every header.
const BytesPerPixel = 2

// Sparse frame record layout.
const (
	RecordCountSize = 4 // uint32 pixel count
	RecordIndexSize = 4 // uint32 flat row-major index per pixel
	RecordValueSize = 2 // uint16 value per pixel
)

// RecordSize returns the serialized size of a record holding count pixels.
func RecordSize(count int) int {
	return RecordCountSize + count*(RecordIndexSize+RecordValueSize)
}

// Structured export keys, in wire order.
const (
	FieldVersion          = "version"
	FieldBeamCenterX      = "beam_center_x"
	FieldBeamCenterY      = "beam_center_y"
	FieldCountTime        = "count_time"
	FieldDetectorDistance = "detector_distance"
	FieldFrameTime        = "frame_time"
	FieldWavelength       = "wavelength"
	FieldXPixelSize       = "x_pixel_size"
	FieldYPixelSize       = "y_pixel_size"
	FieldNRows            = "nrows"
	FieldNCols            = "ncols"
	FieldRowsBegin        = "rows_begin"
	FieldRowsEnd          = "rows_end"
	FieldColsBegin        = "cols_begin"
	FieldColsEnd          = "cols_end"
)

// FieldNames lists the structured export keys in wire order.
var FieldNames = [...]string{
	FieldVersion,
	FieldBeamCenterX,
	FieldBeamCenterY,
	FieldCountTime,
	FieldDetectorDistance,
	FieldFrameTime,
	FieldWavelength,
	FieldXPixelSize,
	FieldYPixelSize,
	FieldNRows,
	FieldNCols,
	FieldRowsBegin,
	FieldRowsEnd,
	FieldColsBegin,
	FieldColsEnd,
}
