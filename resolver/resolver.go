// Package resolver enumerates the frame shards of a container and checks that
// their numbering is the contiguous range 1..K before anything is encoded.
package resolver

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/internal/options"
	"github.com/arloliu/mfcomp/schema"
)

// Shard is one frame-stack dataset under the shard root.
type Shard struct {
	Index int    // numeric suffix, 1-based
	Name  string // dataset name, e.g. "data_000001"
	Path  string // full container path
}

// ShardSet is the validated, ascending list of shards plus the canonical stack
// shape read from the first shard of the container.
type ShardSet struct {
	Shards []Shard
	Shape  container.StackShape
}

// Count returns the number of shards in the set.
func (s *ShardSet) Count() int {
	return len(s.Shards)
}

type config struct {
	min, max int
}

// Option configures Resolve.
type Option = options.Option[*config]

// WithRange keeps only shards whose index lies in [min, max] after the full set
// has been validated. A max of 0 means "up to the last shard".
func WithRange(minIndex, maxIndex int) Option {
	return options.New(func(c *config) error {
		if minIndex < 1 || (maxIndex != 0 && maxIndex < minIndex) {
			return fmt.Errorf("%w: shard range [%d, %d]", errs.ErrInvalidConfig, minIndex, maxIndex)
		}
		c.min, c.max = minIndex, maxIndex

		return nil
	})
}

// Resolve lists the shards of layout's shard root in r.
//
// Children whose name starts with the layout's shard prefix are shards; their
// suffix must be a decimal number. Sorted by that number, the suffixes must be
// exactly 1..K, otherwise Resolve fails with errs.ErrDataIntegrity naming the
// first offending shard. The returned Shape is that of shard 1; other shards are
// not inspected here.
func Resolve(r container.Reader, layout schema.Layout, opts ...Option) (*ShardSet, error) {
	cfg := &config{min: 1}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	names, err := r.Children(layout.ShardRoot())
	if err != nil {
		return nil, fmt.Errorf("list shard root %s: %w", layout.ShardRoot(), err)
	}

	shards, err := parseShards(names, layout)
	if err != nil {
		return nil, err
	}

	if err := checkContiguous(shards); err != nil {
		return nil, fmt.Errorf("%w under %s", err, layout.ShardRoot())
	}

	shape, err := r.StackShape(shards[0].Path)
	if err != nil {
		return nil, fmt.Errorf("read shape of %s: %w", shards[0].Path, err)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	maxIndex := cfg.max
	if maxIndex == 0 {
		maxIndex = len(shards)
	}
	if maxIndex > len(shards) {
		return nil, fmt.Errorf("%w: shard range [%d, %d] exceeds the %d shards under %s",
			errs.ErrDataIntegrity, cfg.min, maxIndex, len(shards), layout.ShardRoot())
	}
	if cfg.min > maxIndex {
		return nil, fmt.Errorf("%w: shard range [%d, %d] is empty", errs.ErrInvalidConfig, cfg.min, maxIndex)
	}

	return &ShardSet{Shards: shards[cfg.min-1 : maxIndex], Shape: shape}, nil
}

func parseShards(names []string, layout schema.Layout) ([]Shard, error) {
	prefix := layout.ShardPrefix()
	shards := make([]Shard, 0, len(names))

	for _, name := range names {
		suffix, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}

		index, err := parseSuffix(suffix)
		if err != nil {
			return nil, fmt.Errorf("%w: shard %q has a non-numeric suffix", errs.ErrDataIntegrity, name)
		}

		shards = append(shards, Shard{Index: index, Name: name, Path: layout.ShardPath(name)})
	}

	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: no shards named %s* under %s", errs.ErrDataIntegrity, prefix, layout.ShardRoot())
	}

	slices.SortStableFunc(shards, func(a, b Shard) int {
		return cmp.Compare(a.Index, b.Index)
	})

	return shards, nil
}

func parseSuffix(s string) (int, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}

	return strconv.Atoi(s)
}

// checkContiguous requires sorted shard indices to be exactly 1..len(shards).
func checkContiguous(shards []Shard) error {
	for i, s := range shards {
		want := i + 1
		if s.Index == want {
			continue
		}

		switch {
		case i > 0 && s.Index == shards[i-1].Index:
			return fmt.Errorf("%w: shard %q duplicates index %d", errs.ErrDataIntegrity, s.Name, s.Index)
		case s.Index > want:
			return fmt.Errorf("%w: shard %d is missing, next is %q", errs.ErrDataIntegrity, want, s.Name)
		default:
			return fmt.Errorf("%w: shard %q has index %d, expected %d", errs.ErrDataIntegrity, s.Name, s.Index, want)
		}
	}

	return nil
}
