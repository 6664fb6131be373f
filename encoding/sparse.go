package encoding

import (
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/internal/options"
	"github.com/arloliu/mfcomp/internal/pool"
	"github.com/arloliu/mfcomp/section"
)

// SaturationValue is the detector's overflow sentinel. Pixels at or above the
// saturation bound are never selected.
const SaturationValue = math.MaxUint16

// Record is the sparse form of one frame: the ascending row-major indices of the
// selected pixels and their values, in matching order.
//
// A Record returned by SparseEncoder.Encode aliases the encoder's buffers and is
// valid until the next Encode call.
type Record struct {
	Indices []uint32
	Values  []uint16
}

// Count returns the number of selected pixels.
func (r Record) Count() int {
	return len(r.Indices)
}

// Size returns the serialized size of the record in bytes.
func (r Record) Size() int {
	return section.RecordSize(len(r.Indices))
}

// SparseEncoder turns dense frames into sparse frame records.
//
// The encoder owns a frame-sized scratch buffer (see Frame) that container
// readers fill in place, plus index and value buffers that grow to the largest
// selected count seen and are reused afterwards. A SparseEncoder is not safe for
// concurrent use; parallel pipelines use one encoder per worker.
type SparseEncoder struct {
	engine     endian.EndianEngine
	saturation uint16
	rows, cols int

	frame   []uint16
	indices []uint32
	values  []uint16
}

// Option configures a SparseEncoder.
type Option = options.Option[*SparseEncoder]

// WithEngine sets the byte order of serialized records. The default is the host
// byte order.
func WithEngine(engine endian.EndianEngine) Option {
	return options.New(func(e *SparseEncoder) error {
		if engine == nil {
			return fmt.Errorf("%w: nil endian engine", errs.ErrInvalidConfig)
		}
		e.engine = engine

		return nil
	})
}

// WithSaturation lowers the exclusive upper bound of selected values. Pixels
// with a value >= hi are dropped like saturated pixels.
func WithSaturation(hi uint16) Option {
	return options.New(func(e *SparseEncoder) error {
		if hi < 2 {
			return fmt.Errorf("%w: saturation bound %d selects nothing", errs.ErrInvalidConfig, hi)
		}
		e.saturation = hi

		return nil
	})
}

// NewSparseEncoder creates an encoder for rows x cols frames.
func NewSparseEncoder(rows, cols int, opts ...Option) (*SparseEncoder, error) {
	e := &SparseEncoder{
		engine:     endian.GetNativeEngine(),
		saturation: SaturationValue,
	}
	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}
	if err := e.Resize(rows, cols); err != nil {
		return nil, err
	}

	return e, nil
}

// Resize switches the encoder to rows x cols frames, reallocating the scratch
// frame only when it must grow.
func (e *SparseEncoder) Resize(rows, cols int) error {
	size := rows * cols
	if rows <= 0 || cols <= 0 || uint64(size) > math.MaxUint32 {
		return fmt.Errorf("%w: %dx%d", errs.ErrInvalidGeometry, rows, cols)
	}

	e.rows, e.cols = rows, cols
	if cap(e.frame) < size {
		e.frame = make([]uint16, size)
	}
	e.frame = e.frame[:size]

	return nil
}

// Rows returns the frame height.
func (e *SparseEncoder) Rows() int { return e.rows }

// Cols returns the frame width.
func (e *SparseEncoder) Cols() int { return e.cols }

// Engine returns the byte order records are written in.
func (e *SparseEncoder) Engine() endian.EndianEngine { return e.engine }

// Frame returns the scratch frame buffer. Fill it, then call EncodeFrame.
func (e *SparseEncoder) Frame() []uint16 {
	return e.frame
}

// EncodeFrame encodes the scratch frame.
func (e *SparseEncoder) EncodeFrame() Record {
	return e.Encode(e.frame)
}

// Encode selects every pixel with 0 < v < saturation bound, scanning frame in
// row-major order so indices come out ascending.
func (e *SparseEncoder) Encode(frame []uint16) Record {
	hi := e.saturation
	indices := e.indices[:0]
	values := e.values[:0]

	for i, v := range frame {
		if v != 0 && v < hi {
			indices = append(indices, uint32(i))
			values = append(values, v)
		}
	}

	e.indices, e.values = indices, values

	return Record{Indices: indices, Values: values}
}

// AppendRecord appends the serialized record to dst: count as uint32, then the
// indices as uint32, then the values as uint16.
func (e *SparseEncoder) AppendRecord(dst []byte, rec Record) []byte {
	return AppendRecord(dst, rec, e.engine)
}

// WriteRecord serializes rec into a pooled buffer and writes it to w.
func (e *SparseEncoder) WriteRecord(w io.Writer, rec Record) (int64, error) {
	buf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(buf)

	buf.Grow(rec.Size())
	buf.B = e.AppendRecord(buf.B, rec)

	return buf.WriteTo(w)
}

// AppendRecord appends rec to dst using engine.
func AppendRecord(dst []byte, rec Record, engine endian.EndianEngine) []byte {
	n := len(rec.Indices)
	start := len(dst)
	dst = slices.Grow(dst, section.RecordSize(n))[:start+section.RecordSize(n)]

	b := dst[start:]
	engine.PutUint32(b, uint32(n))
	b = b[section.RecordCountSize:]

	for _, idx := range rec.Indices {
		engine.PutUint32(b, idx)
		b = b[section.RecordIndexSize:]
	}
	for _, v := range rec.Values {
		engine.PutUint16(b, v)
		b = b[section.RecordValueSize:]
	}

	return dst
}
