// Package compressor drives a full multifile compression run.
//
// A run opens the source container three times: once to resolve the shard set
// and check every shard's geometry, once to read the header metadata, and once
// to stream the frames. Nothing is written before the first two phases succeed,
// so a container with broken shard numbering or (by default) mismatching shard
// geometry never produces output.
//
// Output is the header followed by one sparse record per frame, shard-ascending
// then frame-ascending. With WithWorkers(n > 1) frames are encoded in parallel
// and reassembled in that order, so the bytes are identical to a sequential run.
package compressor

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/mfcomp/compress"
	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/encoding"
	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/header"
	"github.com/arloliu/mfcomp/internal/metrics"
	"github.com/arloliu/mfcomp/internal/options"
	"github.com/arloliu/mfcomp/schema"
)

// DefaultVersionTag is the acquisition-version tag assumed when none is given.
const DefaultVersionTag = schema.ThresholdTag

// MaxWorkers bounds WithWorkers.
const MaxWorkers = 256

// Compressor converts dense frame-stack containers into multifiles. A
// Compressor is immutable after New and may run several conversions
// concurrently.
type Compressor struct {
	opener container.Opener

	table    schema.Table
	tag      string
	layout   *schema.Layout
	minShard int
	maxShard int

	headerVersion format.HeaderVersion
	roi           *header.ROI
	engine        endian.EndianEngine
	saturation    uint16

	compression format.CompressionType
	level       compress.Level

	workers           int
	geometryTolerance bool

	logger  *slog.Logger
	metrics *metrics.Registry
}

// Option configures a Compressor.
type Option = options.Option[*Compressor]

// New creates a Compressor reading containers through opener.
func New(opener container.Opener, opts ...Option) (*Compressor, error) {
	if opener == nil {
		return nil, fmt.Errorf("%w: nil container opener", errs.ErrInvalidConfig)
	}

	c := &Compressor{
		opener:        opener,
		table:         schema.DefaultTable(),
		tag:           DefaultVersionTag,
		headerVersion: format.HeaderV2,
		engine:        endian.GetNativeEngine(),
		saturation:    encoding.SaturationValue,
		compression:   format.CompressionNone,
		level:         compress.LevelDefault,
		workers:       1,
		logger:        slog.New(slog.DiscardHandler),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// WithVersionTag sets the acquisition-version tag that selects the schema layout.
func WithVersionTag(tag string) Option {
	return options.NoError(func(c *Compressor) {
		c.tag = tag
	})
}

// WithSchemaTable replaces the version -> layout table.
func WithSchemaTable(table schema.Table) Option {
	return options.NoError(func(c *Compressor) {
		c.table = table
	})
}

// WithLayout pins the layout, bypassing tag selection.
func WithLayout(layout schema.Layout) Option {
	return options.New(func(c *Compressor) error {
		if !layout.Version().Valid() {
			return fmt.Errorf("%w: layout version %d", errs.ErrInvalidSchemaVersion, layout.Version())
		}
		c.layout = &layout

		return nil
	})
}

// WithShardRange encodes only shards min..max (inclusive, 1-based) after the
// whole shard set has been validated. A max of 0 means the last shard.
func WithShardRange(minShard, maxShard int) Option {
	return options.New(func(c *Compressor) error {
		if minShard < 1 || (maxShard != 0 && maxShard < minShard) {
			return fmt.Errorf("%w: shard range [%d, %d]", errs.ErrInvalidConfig, minShard, maxShard)
		}
		c.minShard, c.maxShard = minShard, maxShard

		return nil
	})
}

// WithHeaderVersion selects the header version tag. The default is format.HeaderV2.
func WithHeaderVersion(v format.HeaderVersion) Option {
	return options.New(func(c *Compressor) error {
		if !v.Valid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidHeaderVersion, v)
		}
		c.headerVersion = v

		return nil
	})
}

// WithROI records a region of interest in the header.
func WithROI(roi header.ROI) Option {
	return options.NoError(func(c *Compressor) {
		c.roi = &roi
	})
}

// WithEndian sets the byte order of the header and records. The default is the
// host byte order.
func WithEndian(engine endian.EndianEngine) Option {
	return options.New(func(c *Compressor) error {
		if engine == nil {
			return fmt.Errorf("%w: nil endian engine", errs.ErrInvalidConfig)
		}
		c.engine = engine

		return nil
	})
}

// WithSaturation sets the exclusive upper bound of encoded pixel values.
func WithSaturation(hi uint16) Option {
	return options.New(func(c *Compressor) error {
		if hi < 2 {
			return fmt.Errorf("%w: saturation bound %d selects nothing", errs.ErrInvalidConfig, hi)
		}
		c.saturation = hi

		return nil
	})
}

// WithCompression wraps the output in a compression envelope.
func WithCompression(t format.CompressionType, level compress.Level) Option {
	return options.NoError(func(c *Compressor) {
		c.compression = t
		c.level = level
	})
}

// WithWorkers sets the number of encoder goroutines. 1 (the default) encodes
// sequentially on the calling goroutine.
func WithWorkers(n int) Option {
	return options.New(func(c *Compressor) error {
		if n < 1 || n > MaxWorkers {
			return fmt.Errorf("%w: workers %d outside 1..%d", errs.ErrInvalidConfig, n, MaxWorkers)
		}
		c.workers = n

		return nil
	})
}

// WithGeometryTolerance lets shards whose frame shape differs from shard 1 be
// encoded at their own shape instead of failing with errs.ErrGeometryMismatch.
// A warning is logged for every such shard.
func WithGeometryTolerance(tolerate bool) Option {
	return options.NoError(func(c *Compressor) {
		c.geometryTolerance = tolerate
	})
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Compressor) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithMetrics records run metrics into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return options.NoError(func(c *Compressor) {
		c.metrics = reg
	})
}

func (c *Compressor) resolveLayout() schema.Layout {
	if c.layout != nil {
		return *c.layout
	}

	return c.table.ForTag(c.tag)
}

func (c *Compressor) newEncoder(rows, cols int) (*encoding.SparseEncoder, error) {
	return encoding.NewSparseEncoder(rows, cols,
		encoding.WithEngine(c.engine),
		encoding.WithSaturation(c.saturation),
	)
}
