package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mfcomp/compressor"
	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/container/memory"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/schema"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.NotEmpty(t, opts)
}

func TestDecode(t *testing.T) {
	const doc = `
version_tag: v1.2.9
header_version: 1
endian: little
workers: 4
compression: zstd
compression_level: better
geometry_tolerance: true
shards:
  min: 2
  max: 3
roi:
  rows_begin: 1
  rows_end: 3
  cols_begin: 0
  cols_end: 4
schema:
  shard_root: /scan
  shard_prefix: img_
  paths:
    count_time: entry/instrument/detector/exposure
log:
  level: debug
  format: json
metrics_file: /tmp/mfcomp.prom
`
	cfg, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	require.Equal(t, "v1.2.9", cfg.VersionTag)
	require.Equal(t, 1, cfg.HeaderVersion)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, 65535, cfg.Saturation, "unset keys keep their defaults")
	require.True(t, cfg.GeometryTolerance)
	require.Equal(t, ShardsConfig{Min: 2, Max: 3}, cfg.Shards)
	require.Equal(t, &ROIConfig{RowsBegin: 1, RowsEnd: 3, ColsBegin: 0, ColsEnd: 4}, cfg.ROI)
	require.Equal(t, "/tmp/mfcomp.prom", cfg.MetricsFile)

	table, err := cfg.Layout()
	require.NoError(t, err)
	layout := table.ForTag(cfg.VersionTag)
	require.Equal(t, schema.Legacy, layout.Version())
	require.Equal(t, "/scan", layout.ShardRoot())
	require.Equal(t, "img_", layout.ShardPrefix())
	require.Equal(t, "entry/instrument/detector/exposure", layout.Path(schema.CountTime))
	require.Equal(t, "entry/instrument/monochromator/wavelength", layout.Path(schema.Wavelength))

	// the current layout is untouched
	require.Equal(t, "/entry/data", table.ForTag("v1.3.0").ShardRoot())
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), *cfg)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{name: "unknown key", doc: "wokers: 2\n", msg: "wokers"},
		{name: "workers", doc: "workers: 0\n", msg: "workers must be at least 1"},
		{name: "too many workers", doc: "workers: 1000\n", msg: "workers must not exceed 256"},
		{name: "header version", doc: "header_version: 3\n", msg: "header_version must be one of"},
		{name: "endian", doc: "endian: middle\n", msg: "endian must be one of"},
		{name: "compression", doc: "compression: gzip\n", msg: "compression must be one of"},
		{name: "saturation", doc: "saturation: 1\n", msg: "saturation must be at least 2"},
		{name: "empty tag", doc: "version_tag: \"\"\n", msg: "version_tag is required"},
		{name: "log level", doc: "log:\n  level: trace\n", msg: "log.level must be one of"},
		{name: "roi", doc: "roi:\n  rows_begin: 4\n  rows_end: 2\n  cols_end: 1\n", msg: "roi.rows_end"},
		{name: "shard root", doc: "schema:\n  shard_root: entry\n", msg: "schema.shard_root"},
		{name: "path field", doc: "schema:\n  paths:\n    distance: x\n", msg: "distance"},
		{name: "shard range", doc: "shards:\n  min: 3\n  max: 2\n", msg: "shards.max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			require.ErrorIs(t, err, errs.ErrInvalidConfig)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mfcomp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestOptions_DriveCompressor(t *testing.T) {
	f := memory.NewFile()
	for _, field := range schema.Fields() {
		f.SetFloat64(schema.DefaultTable().ForTag("v1.3.0").Path(field), 1)
	}
	f.SetFloat64("entry/instrument/detector/exposure", 0.5)
	shape := container.StackShape{Frames: 2, Rows: 2, Cols: 2}
	for _, n := range []string{"img_1", "img_2", "img_3"} {
		require.NoError(t, f.AddStack("/scan/"+n, shape, nil))
	}
	store := memory.NewStore()
	store.Put("scan.h5", f)

	cfg, err := Decode(strings.NewReader(`
schema:
  shard_root: /scan
  shard_prefix: img_
  paths:
    count_time: entry/instrument/detector/exposure
shards:
  min: 2
roi:
  rows_begin: 0
  rows_end: 1
  cols_begin: 1
  cols_end: 2
`))
	require.NoError(t, err)

	opts, err := cfg.Options()
	require.NoError(t, err)

	c, err := compressor.New(store, opts...)
	require.NoError(t, err)

	var out bytes.Buffer
	sum, err := c.Compress("scan.h5", &out)
	require.NoError(t, err)
	require.Equal(t, 2, sum.Shards)
	require.Equal(t, 4, sum.Frames)
	require.Equal(t, 0.5, sum.Header.CountTime)
	require.Equal(t, uint32(1), sum.Header.RowsEnd)
	require.Equal(t, uint32(1), sum.Header.ColsBegin)
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "shard", "data_000002")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"shard":"data_000002"`)

	buf.Reset()
	logger = LogConfig{Level: "debug", Format: "text"}.NewLogger(&buf)
	logger.Debug("visible")
	require.Contains(t, buf.String(), "level=DEBUG")
}
