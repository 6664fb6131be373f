package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/internal/options"
)

// Level is a codec-independent compression effort.
type Level uint8

const (
	LevelDefault Level = iota
	LevelFastest
	LevelBetter
	LevelBest

	numLevels
)

func (l Level) String() string {
	switch l {
	case LevelDefault:
		return "default"
	case LevelFastest:
		return "fastest"
	case LevelBetter:
		return "better"
	case LevelBest:
		return "best"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name; the empty string is LevelDefault.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default":
		return LevelDefault, nil
	case "fastest", "fast":
		return LevelFastest, nil
	case "better":
		return LevelBetter, nil
	case "best":
		return LevelBest, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression level %q", errs.ErrInvalidConfig, name)
	}
}

type config struct {
	level Level
}

// Option configures NewWriter.
type Option = options.Option[*config]

// WithLevel sets the compression effort.
func WithLevel(level Level) Option {
	return options.New(func(c *config) error {
		if level >= numLevels {
			return fmt.Errorf("%w: compression level %d", errs.ErrInvalidConfig, level)
		}
		c.level = level

		return nil
	})
}

// NewWriter returns a writer compressing everything written to it into w.
//
// Close flushes the envelope and writes its trailer but never closes w. For
// format.CompressionNone the returned writer passes bytes straight through.
func NewWriter(w io.Writer, t format.CompressionType, opts ...Option) (io.WriteCloser, error) {
	cfg := &config{level: LevelDefault}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	switch t {
	case format.CompressionNone:
		return nopWriteCloser{w}, nil
	case format.CompressionZstd:
		return newZstdWriter(w, cfg.level)
	case format.CompressionS2:
		return newS2Writer(w, cfg.level), nil
	case format.CompressionLZ4:
		return newLZ4Writer(w, cfg.level)
	case format.CompressionSnappy:
		return newSnappyWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", errs.ErrInvalidConfig, t)
	}
}

// NewReader returns a reader decompressing an envelope written by NewWriter.
// Close releases decoder resources but never closes r.
func NewReader(r io.Reader, t format.CompressionType) (io.ReadCloser, error) {
	switch t {
	case format.CompressionNone:
		return io.NopCloser(r), nil
	case format.CompressionZstd:
		return newZstdReader(r)
	case format.CompressionS2:
		return newS2Reader(r), nil
	case format.CompressionLZ4:
		return newLZ4Reader(r), nil
	case format.CompressionSnappy:
		return newSnappyReader(r), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", errs.ErrInvalidConfig, t)
	}
}
