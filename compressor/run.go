package compressor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/arloliu/mfcomp/compress"
	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/header"
	"github.com/arloliu/mfcomp/internal/hash"
	"github.com/arloliu/mfcomp/metadata"
	"github.com/arloliu/mfcomp/resolver"
	"github.com/arloliu/mfcomp/section"
)

const outputBufferSize = 1 << 20

// Summary describes a finished run.
type Summary struct {
	RunID       string         // random per-run identifier, also attached to every log line
	Shards      int            // shards encoded
	Frames      int            // records written
	Pixels      int64          // selected pixels over all records
	HeaderBytes int            // always section.HeaderSize
	Bytes       int64          // uncompressed multifile size, header included
	Checksum    uint64         // xxHash64 of the uncompressed multifile
	Header      section.Header // the header that was written
}

// shardPlan is a resolved shard with its own stack shape.
type shardPlan struct {
	resolver.Shard
	shape     container.StackShape
	tolerated bool
}

type plan struct {
	shards []shardPlan
	shape  container.StackShape // canonical shape of shard 1
	frames int
}

// open opens src and runs fn on it, always closing the reader.
func (c *Compressor) open(src string, fn func(container.Reader) error) (err error) {
	r, err := c.opener.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", src, cerr)
		}
	}()

	return fn(r)
}

// plan resolves the shard set and checks every shard's geometry against shard 1.
func (c *Compressor) plan(src string, log *slog.Logger) (*plan, error) {
	layout := c.resolveLayout()

	var opts []resolver.Option
	if c.minShard > 0 {
		opts = append(opts, resolver.WithRange(c.minShard, c.maxShard))
	}

	p := &plan{}
	err := c.open(src, func(r container.Reader) error {
		set, err := resolver.Resolve(r, layout, opts...)
		if err != nil {
			return err
		}
		p.shape = set.Shape

		for _, s := range set.Shards {
			shape, err := r.StackShape(s.Path)
			if err != nil {
				return fmt.Errorf("shard %s: %w", s.Name, err)
			}

			sp := shardPlan{Shard: s, shape: shape}
			if !shape.SameGeometry(set.Shape) {
				if !c.geometryTolerance {
					return fmt.Errorf("%w: shard %s (index %d) has frames of %dx%d, expected %dx%d",
						errs.ErrGeometryMismatch, s.Name, s.Index, shape.Rows, shape.Cols, set.Shape.Rows, set.Shape.Cols)
				}
				sp.tolerated = true
				log.Warn("shard geometry differs from shard 1, encoding at its own shape",
					"shard", s.Name, "shape", shape.String(), "expected", set.Shape.String())
			}

			p.shards = append(p.shards, sp)
			p.frames += shape.Frames
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("resolved shards",
		"schema", layout.Version().String(),
		"root", layout.ShardRoot(),
		"shards", len(p.shards),
		"frames", p.frames,
		"shape", p.shape.String(),
	)

	return p, nil
}

func (c *Compressor) buildHeader(src string, shape container.StackShape) (*section.Header, error) {
	layout := c.resolveLayout()

	opts := []header.Option{header.WithVersion(c.headerVersion)}
	if c.roi != nil {
		opts = append(opts, header.WithROI(*c.roi))
	}

	var h *section.Header
	err := c.open(src, func(r container.Reader) error {
		var err error
		h, err = header.Build(metadata.FromContainer(r), layout, header.Geometry{Rows: shape.Rows, Cols: shape.Cols}, opts...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return h, nil
}

// Header resolves src and builds its header without encoding any frame.
func (c *Compressor) Header(src string) (*section.Header, error) {
	p, err := c.plan(src, c.logger.With("src", src))
	if err != nil {
		return nil, err
	}

	return c.buildHeader(src, p.shape)
}

// Compress converts src and streams the multifile to w. On error w may hold a
// partial stream; use CompressFile for all-or-nothing output.
func (c *Compressor) Compress(src string, w io.Writer) (sum Summary, err error) {
	start := time.Now()
	sum.RunID = uuid.NewString()
	log := c.logger.With("run_id", sum.RunID, "src", src)

	defer func() {
		c.metrics.RecordRun(err, time.Since(start))
		if err != nil {
			log.Error("compression failed", "error", err)
		}
	}()

	p, err := c.plan(src, log)
	if err != nil {
		return sum, err
	}

	h, err := c.buildHeader(src, p.shape)
	if err != nil {
		return sum, err
	}
	sum.Header = *h

	headerBytes, err := h.Bytes(c.engine)
	if err != nil {
		return sum, err
	}

	bw := bufio.NewWriterSize(w, outputBufferSize)
	env, err := compress.NewWriter(bw, c.compression, compress.WithLevel(c.level))
	if err != nil {
		return sum, err
	}
	hw := hash.NewWriter(env)

	if _, err := hw.Write(headerBytes); err != nil {
		return sum, fmt.Errorf("write header at byte offset %d: %w", hw.Offset(), err)
	}
	sum.HeaderBytes = len(headerBytes)
	c.metrics.RecordHeader(len(headerBytes))

	st := &stats{}
	err = c.open(src, func(r container.Reader) error {
		if c.workers > 1 {
			return c.encodeParallel(context.Background(), r, p, hw, st, log)
		}

		return c.encodeSequential(r, p, hw, st, log)
	})
	if err != nil {
		return sum, err
	}

	if err := env.Close(); err != nil {
		return sum, fmt.Errorf("finish %s envelope at byte offset %d: %w", c.compression, hw.Offset(), err)
	}
	if err := bw.Flush(); err != nil {
		return sum, fmt.Errorf("flush output at byte offset %d: %w", hw.Offset(), err)
	}

	sum.Shards = len(p.shards)
	sum.Frames = st.frames
	sum.Pixels = st.pixels
	sum.Bytes = hw.Offset()
	sum.Checksum = hw.Sum64()

	log.Info("compression finished",
		"shards", sum.Shards,
		"frames", sum.Frames,
		"pixels", sum.Pixels,
		"bytes", sum.Bytes,
		"checksum", fmt.Sprintf("%016x", sum.Checksum),
		"elapsed", time.Since(start),
	)

	return sum, nil
}

// CompressFile converts src into the file dst.
//
// The output is written to a temporary file next to dst and renamed over dst
// only after the run succeeded, so dst is either the complete multifile or
// untouched. The temporary file is removed on failure.
func (c *Compressor) CompressFile(src, dst string) (sum Summary, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return sum, fmt.Errorf("create output for %s: %w", dst, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	sum, err = c.Compress(src, tmp)
	if err != nil {
		return sum, err
	}

	if err = tmp.Sync(); err != nil {
		return sum, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return sum, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return sum, fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, dst); err != nil {
		return sum, fmt.Errorf("rename %s to %s: %w", tmpName, dst, err)
	}

	return sum, nil
}

// stats accumulates per-run counters. Only the goroutine writing records
// updates it.
type stats struct {
	frames int
	pixels int64
}

func (st *stats) add(pixels int) {
	st.frames++
	st.pixels += int64(pixels)
}
