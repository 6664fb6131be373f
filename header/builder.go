// Package header builds the multifile header from container metadata.
//
// Build reads every metadata field once through a metadata.Lookup and returns a
// section.Header. The binary form (Header.Bytes) and the structured export
// (Header.Fields) are both derived from that one value.
package header

import (
	"fmt"
	"math"

	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/internal/options"
	"github.com/arloliu/mfcomp/metadata"
	"github.com/arloliu/mfcomp/schema"
	"github.com/arloliu/mfcomp/section"
)

// Geometry is the per-frame image shape.
type Geometry struct {
	Rows int
	Cols int
}

// ROI is a region of interest as half-open row and column ranges.
type ROI struct {
	RowsBegin, RowsEnd int
	ColsBegin, ColsEnd int
}

type config struct {
	version format.HeaderVersion
	roi     *ROI
}

// Option configures Build.
type Option = options.Option[*config]

// WithVersion selects the header version tag. The default is format.HeaderV2.
func WithVersion(v format.HeaderVersion) Option {
	return options.New(func(c *config) error {
		if !v.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidHeaderVersion, v)
		}
		c.version = v

		return nil
	})
}

// WithROI restricts the region of interest recorded in the header. The default
// is the full image.
func WithROI(roi ROI) Option {
	return options.NoError(func(c *config) {
		c.roi = &roi
	})
}

// Build reads the metadata fields named by layout through lookup and returns the
// header for an image of the given geometry.
//
// Any missing or unreadable path fails with errs.ErrMetadataLookup naming the
// field and path; no partial header is returned. The detector distance is not
// sourced from metadata and is always 0.
func Build(lookup metadata.Lookup, layout schema.Layout, geom Geometry, opts ...Option) (*section.Header, error) {
	cfg := &config{version: format.HeaderV2}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if geom.Rows <= 0 || geom.Cols <= 0 || uint64(geom.Rows) > math.MaxUint32 || uint64(geom.Cols) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %dx%d", errs.ErrInvalidGeometry, geom.Rows, geom.Cols)
	}

	h := section.NewHeader(cfg.version, uint32(geom.Rows), uint32(geom.Cols))

	targets := map[schema.Field]*float64{
		schema.BeamCenterX: &h.BeamCenterX,
		schema.BeamCenterY: &h.BeamCenterY,
		schema.CountTime:   &h.CountTime,
		schema.FrameTime:   &h.FrameTime,
		schema.Wavelength:  &h.Wavelength,
		schema.XPixelSize:  &h.XPixelSize,
		schema.YPixelSize:  &h.YPixelSize,
	}
	for _, field := range schema.Fields() {
		path := layout.Path(field)
		v, err := lookup.Float64(path)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s at %q: %w", errs.ErrMetadataLookup, field, path, err)
		}
		*targets[field] = v
	}
	h.DetectorDistance = 0

	if cfg.roi != nil {
		roi := cfg.roi
		if roi.RowsBegin < 0 || roi.ColsBegin < 0 || roi.RowsEnd > geom.Rows || roi.ColsEnd > geom.Cols {
			return nil, fmt.Errorf("%w: rows [%d, %d) cols [%d, %d) on a %dx%d image", errs.ErrInvalidROI,
				roi.RowsBegin, roi.RowsEnd, roi.ColsBegin, roi.ColsEnd, geom.Rows, geom.Cols)
		}
		h.RowsBegin, h.RowsEnd = uint32(roi.RowsBegin), uint32(roi.RowsEnd)
		h.ColsBegin, h.ColsEnd = uint32(roi.ColsBegin), uint32(roi.ColsEnd)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	return h, nil
}
