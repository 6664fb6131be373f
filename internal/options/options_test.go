package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type runConfig struct {
	workers  int
	prefix   string
	tolerant bool
	calls    []string
}

func withWorkers(n int) Option[*runConfig] {
	return New(func(c *runConfig) error {
		if n < 1 {
			return errors.New("workers must be positive")
		}
		c.workers = n
		c.calls = append(c.calls, "workers")

		return nil
	})
}

func withPrefix(p string) Option[*runConfig] {
	return NoError(func(c *runConfig) {
		c.prefix = p
		c.calls = append(c.calls, "prefix")
	})
}

func withTolerance(on bool) Option[*runConfig] {
	return NoError(func(c *runConfig) {
		c.tolerant = on
		c.calls = append(c.calls, "tolerance")
	})
}

func TestApply_InOrder(t *testing.T) {
	cfg := &runConfig{}

	err := Apply(cfg, withWorkers(4), withPrefix("data_"), withTolerance(true))
	require.NoError(t, err)
	require.Equal(t, 4, cfg.workers)
	require.Equal(t, "data_", cfg.prefix)
	require.True(t, cfg.tolerant)
	require.Equal(t, []string{"workers", "prefix", "tolerance"}, cfg.calls)
}

func TestApply_StopsAtFirstError(t *testing.T) {
	cfg := &runConfig{}

	err := Apply(cfg, withPrefix("a_"), withWorkers(0), withPrefix("b_"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "workers must be positive")
	require.Equal(t, "a_", cfg.prefix)
	require.Equal(t, []string{"prefix"}, cfg.calls)
}

func TestApply_Empty(t *testing.T) {
	cfg := &runConfig{workers: 1}

	require.NoError(t, Apply(cfg))
	require.Equal(t, 1, cfg.workers)
	require.Empty(t, cfg.calls)
}

func TestApply_SkipsNilOption(t *testing.T) {
	cfg := &runConfig{}

	require.NoError(t, Apply(cfg, nil, withPrefix("x_")))
	require.Equal(t, "x_", cfg.prefix)
}

func TestOption_PrimitiveTarget(t *testing.T) {
	var limit uint16
	opt := NoError(func(v *uint16) { *v = 65535 })

	require.NoError(t, opt.apply(&limit))
	require.Equal(t, uint16(65535), limit)
}
