package compressor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/internal/hash"
	"github.com/arloliu/mfcomp/internal/pool"
)

// encodeSequential reads every frame into the encoder's scratch buffer and
// writes its record before reading the next one.
func (c *Compressor) encodeSequential(r container.Reader, p *plan, hw *hash.Writer, st *stats, log *slog.Logger) error {
	enc, err := c.newEncoder(p.shape.Rows, p.shape.Cols)
	if err != nil {
		return err
	}

	for _, s := range p.shards {
		if err := enc.Resize(s.shape.Rows, s.shape.Cols); err != nil {
			return err
		}
		log.Debug("encoding shard", "shard", s.Name, "frames", s.shape.Frames)

		for i := range s.shape.Frames {
			start := time.Now()
			if err := r.ReadFrame(s.Path, i, enc.Frame()); err != nil {
				return fmt.Errorf("read shard %s frame %d: %w", s.Name, i, err)
			}

			rec := enc.EncodeFrame()
			if _, err := enc.WriteRecord(hw, rec); err != nil {
				return fmt.Errorf("write shard %s frame %d at byte offset %d: %w", s.Name, i, hw.Offset(), err)
			}

			st.add(rec.Count())
			c.metrics.RecordFrame(rec.Count(), rec.Size(), time.Since(start))
		}

		c.metrics.RecordShard(s.tolerated)
	}

	return nil
}

// frameJob is one dense frame handed from the reader to an encoder worker.
type frameJob struct {
	seq     int
	shard   *shardPlan
	frame   int
	data    []uint16
	release func()
	read    time.Duration
}

// frameResult is one serialized record on its way to the ordered writer.
type frameResult struct {
	seq    int
	shard  *shardPlan
	frame  int
	buf    *pool.ByteBuffer
	pixels int
	took   time.Duration
}

// encodeParallel runs one reader goroutine (the container is not safe for
// concurrent use), c.workers encoder goroutines and an in-order writer.
//
// The reader takes a window token per frame and the writer returns it once the
// record is written, which bounds both the frames in flight and the writer's
// reorder buffer.
func (c *Compressor) encodeParallel(ctx context.Context, r container.Reader, p *plan, hw *hash.Writer, st *stats, log *slog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	window := make(chan struct{}, 4*c.workers)
	jobs := make(chan frameJob, c.workers)
	results := make(chan frameResult, c.workers)

	g.Go(func() error {
		defer close(jobs)

		seq := 0
		for si := range p.shards {
			s := &p.shards[si]
			log.Debug("encoding shard", "shard", s.Name, "frames", s.shape.Frames)

			for i := range s.shape.Frames {
				select {
				case window <- struct{}{}:
				case <-ctx.Done():
					return ctx.Err()
				}

				start := time.Now()
				data, release := pool.GetUint16Slice(s.shape.FrameSize())
				if err := r.ReadFrame(s.Path, i, data); err != nil {
					release()
					return fmt.Errorf("read shard %s frame %d: %w", s.Name, i, err)
				}

				job := frameJob{seq: seq, shard: s, frame: i, data: data, release: release, read: time.Since(start)}
				select {
				case jobs <- job:
				case <-ctx.Done():
					release()
					return ctx.Err()
				}
				seq++
			}

			c.metrics.RecordShard(s.tolerated)
		}

		return nil
	})

	var workers sync.WaitGroup
	for range c.workers {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()

			enc, err := c.newEncoder(p.shape.Rows, p.shape.Cols)
			if err != nil {
				return err
			}

			for job := range jobs {
				start := time.Now()
				rec := enc.Encode(job.data)

				buf := pool.GetRecordBuffer()
				buf.Grow(rec.Size())
				buf.B = enc.AppendRecord(buf.B, rec)
				job.release()

				res := frameResult{
					seq:    job.seq,
					shard:  job.shard,
					frame:  job.frame,
					buf:    buf,
					pixels: rec.Count(),
					took:   job.read + time.Since(start),
				}
				select {
				case results <- res:
				case <-ctx.Done():
					pool.PutRecordBuffer(buf)
					return ctx.Err()
				}
			}

			return nil
		})
	}

	g.Go(func() error {
		workers.Wait()
		close(results)

		return nil
	})

	g.Go(func() error {
		pending := make(map[int]frameResult, cap(window))
		next := 0

		for {
			var res frameResult
			select {
			case got, ok := <-results:
				if !ok {
					return nil
				}
				res = got
			case <-ctx.Done():
				return ctx.Err()
			}
			pending[res.seq] = res

			for {
				cur, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++

				if err := c.writeResult(hw, cur, st); err != nil {
					return err
				}
				<-window
			}
		}
	})

	return g.Wait()
}

func (c *Compressor) writeResult(hw *hash.Writer, res frameResult, st *stats) error {
	defer pool.PutRecordBuffer(res.buf)

	if _, err := res.buf.WriteTo(hw); err != nil {
		return fmt.Errorf("write shard %s frame %d at byte offset %d: %w", res.shard.Name, res.frame, hw.Offset(), err)
	}

	st.add(res.pixels)
	c.metrics.RecordFrame(res.pixels, res.buf.Len(), res.took)

	return nil
}
