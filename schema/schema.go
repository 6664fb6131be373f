// Package schema holds the immutable table that maps an acquisition schema
// version to the container locations the compressor reads: the shard root, the
// shard name prefix and one logical metadata path per header field.
//
// Two schema versions exist. Detector firmware older than v1.3.0 stores frame
// shards directly under /entry and the wavelength under the monochromator group;
// newer firmware moves shards to /entry/data and the wavelength to the beam group.
//
//	layout := schema.DefaultTable().ForTag("v1.3.1") // schema.Current
//	root := layout.ShardRoot()                       // "/entry/data"
//
// Layout and Table are values with unexported fields. The With* methods return
// modified copies, so a layout handed to the resolver or header builder can never
// be changed behind their backs.
package schema

import (
	"fmt"
	"strings"

	"github.com/arloliu/mfcomp/errs"
)

// Version is the closed set of metadata schema versions.
type Version uint8

const (
	Legacy  Version = 0x1 // Legacy is the pre-v1.3.0 layout.
	Current Version = 0x2 // Current is the v1.3.0 and later layout.
)

// ThresholdTag is the first acquisition-version tag using the Current schema.
const ThresholdTag = "v1.3.0"

// DefaultShardPrefix is the name prefix of every frame shard, e.g. "data_000001".
const DefaultShardPrefix = "data_"

func (v Version) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case Current:
		return "current"
	default:
		return "unknown"
	}
}

// Valid reports whether v is a known schema version.
func (v Version) Valid() bool {
	return v == Legacy || v == Current
}

// Select maps an acquisition-version tag to a schema version by plain
// lexicographic comparison with ThresholdTag. A tag equal to the threshold
// selects Current.
func Select(tag string) Version {
	if tag >= ThresholdTag {
		return Current
	}

	return Legacy
}

// Field names a header field sourced from container metadata.
type Field uint8

const (
	BeamCenterX Field = iota
	BeamCenterY
	CountTime
	FrameTime
	Wavelength
	XPixelSize
	YPixelSize

	numFields
)

var fieldNames = [numFields]string{
	BeamCenterX: "beam_center_x",
	BeamCenterY: "beam_center_y",
	CountTime:   "count_time",
	FrameTime:   "frame_time",
	Wavelength:  "wavelength",
	XPixelSize:  "x_pixel_size",
	YPixelSize:  "y_pixel_size",
}

// Fields lists every metadata field in header order.
func Fields() []Field {
	out := make([]Field, 0, numFields)
	for f := range numFields {
		out = append(out, f)
	}

	return out
}

func (f Field) String() string {
	if f >= numFields {
		return fmt.Sprintf("field(%d)", f)
	}

	return fieldNames[f]
}

// ParseField maps a header field name such as "count_time" to its Field.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return Field(f), nil
		}
	}

	return 0, fmt.Errorf("%w: unknown metadata field %q", errs.ErrInvalidConfig, name)
}

// Layout is the resolved set of container locations for one schema version.
type Layout struct {
	version     Version
	shardRoot   string
	shardPrefix string
	paths       [numFields]string
}

// Version returns the schema version the layout was derived from.
func (l Layout) Version() Version { return l.version }

// ShardRoot returns the group holding the frame shards.
func (l Layout) ShardRoot() string { return l.shardRoot }

// ShardPrefix returns the name prefix that identifies frame shards.
func (l Layout) ShardPrefix() string { return l.shardPrefix }

// Path returns the logical metadata path for field f.
func (l Layout) Path(f Field) string {
	if f >= numFields {
		return ""
	}

	return l.paths[f]
}

// ShardPath joins the shard root and a shard name.
func (l Layout) ShardPath(name string) string {
	return strings.TrimSuffix(l.shardRoot, "/") + "/" + name
}

// WithShardRoot returns a copy of l reading shards from root.
func (l Layout) WithShardRoot(root string) Layout {
	l.shardRoot = root
	return l
}

// WithShardPrefix returns a copy of l matching shards by prefix.
func (l Layout) WithShardPrefix(prefix string) Layout {
	l.shardPrefix = prefix
	return l
}

// WithPath returns a copy of l reading field f from path.
func (l Layout) WithPath(f Field, path string) Layout {
	if f < numFields {
		l.paths[f] = path
	}

	return l
}

// Table maps every schema version to its Layout.
type Table struct {
	legacy  Layout
	current Layout
}

// DefaultTable returns the EIGER master-file layouts.
func DefaultTable() Table {
	var common [numFields]string
	common[BeamCenterX] = "entry/instrument/detector/beam_center_x"
	common[BeamCenterY] = "entry/instrument/detector/beam_center_y"
	common[CountTime] = "entry/instrument/detector/count_time"
	common[FrameTime] = "entry/instrument/detector/frame_time"
	common[XPixelSize] = "entry/instrument/detector/x_pixel_size"
	common[YPixelSize] = "entry/instrument/detector/y_pixel_size"

	legacy := Layout{
		version:     Legacy,
		shardRoot:   "/entry",
		shardPrefix: DefaultShardPrefix,
		paths:       common,
	}
	legacy.paths[Wavelength] = "entry/instrument/monochromator/wavelength"

	current := Layout{
		version:     Current,
		shardRoot:   "/entry/data",
		shardPrefix: DefaultShardPrefix,
		paths:       common,
	}
	current.paths[Wavelength] = "entry/instrument/beam/incident_wavelength"

	return Table{legacy: legacy, current: current}
}

// Layout returns the layout for version v.
func (t Table) Layout(v Version) (Layout, error) {
	switch v {
	case Legacy:
		return t.legacy, nil
	case Current:
		return t.current, nil
	default:
		return Layout{}, fmt.Errorf("%w: %d", errs.ErrInvalidSchemaVersion, v)
	}
}

// ForTag returns the layout selected by an acquisition-version tag.
func (t Table) ForTag(tag string) Layout {
	if Select(tag) == Current {
		return t.current
	}

	return t.legacy
}

// With returns a copy of t whose layout for l.Version() is replaced by l.
func (t Table) With(l Layout) Table {
	switch l.version {
	case Legacy:
		t.legacy = l
	case Current:
		t.current = l
	}

	return t
}
