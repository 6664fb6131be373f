package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/mfcomp/format"
)

const fixture = `
floats:
  entry/instrument/detector/beam_center_x: 10.5
  entry/instrument/detector/beam_center_y: 20.5
  entry/instrument/detector/count_time: 0.001
  entry/instrument/detector/frame_time: 0.002
  entry/instrument/detector/x_pixel_size: 0.000075
  entry/instrument/detector/y_pixel_size: 0.000075
  entry/instrument/beam/incident_wavelength: 1.28
stacks:
  /entry/data/data_000001:
    frames: 2
    rows: 3
    cols: 5
    pixels:
      - {frame: 0, index: 4, value: 9}
      - {frame: 1, index: 0, value: 65535}
  /entry/data/data_000002:
    frames: 1
    rows: 3
    cols: 5
    fill: 2
`

func writeFixture(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "scan_0001_master.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o600))

	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)

	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	require.Equal(t, 2, code)
	require.Contains(t, stderr, "usage:")

	code, _, stderr = runCLI(t, "explode")
	require.Equal(t, 2, code)
	require.Contains(t, stderr, `unknown command "explode"`)

	code, stdout, _ := runCLI(t, "help")
	require.Equal(t, 0, code)
	require.Contains(t, stdout, "mfcomp compress")

	code, _, _ = runCLI(t, "compress")
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "compress", "-h")
	require.Equal(t, 0, code)
}

func TestCompress_DefaultOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	code, stdout, stderr := runCLI(t, "compress", "-log-level", "debug", src)
	require.Equal(t, 0, code, stderr)

	var rep summaryReport
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &rep))
	require.Equal(t, filepath.Join(dir, "scan_0001.bin"), rep.Output)
	require.Equal(t, 2, rep.Shards)
	require.Equal(t, 3, rep.Frames)
	require.Equal(t, int64(1+15), rep.Pixels)
	require.Len(t, rep.Checksum, 16)
	require.Contains(t, stderr, "run_id="+rep.RunID)

	info, err := os.Stat(rep.Output)
	require.NoError(t, err)
	require.Equal(t, rep.Bytes, info.Size())
}

func TestCompress_FlagsAndConfig(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	cfgPath := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("workers: 2\ncompression: lz4\nendian: big\n"), 0o600))

	dst := filepath.Join(dir, "out.bin.zst")
	metricsPath := filepath.Join(dir, "mfcomp.prom")

	code, _, stderr := runCLI(t, "compress",
		"-config", cfgPath,
		"-compression", "zstd",
		"-shard-max", "1",
		"-metrics", metricsPath,
		"-q",
		src, dst)
	require.Equal(t, 0, code, stderr)

	_, err := os.Stat(dst)
	require.NoError(t, err)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.Contains(t, string(prom), "mfcomp_frames_total 2")

	code, stdout, stderr := runCLI(t, "header", "-endian", "big", "-o", "json", dst)
	require.Equal(t, 0, code, stderr)

	var fields map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &fields))
	require.Equal(t, format.HeaderV2.Tag(), fields["version"])
	require.InDelta(t, 1.28, fields["wavelength"], 1e-12)
	require.InDelta(t, 3, fields["nrows"], 0)
}

func TestCompress_Errors(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	code, _, stderr := runCLI(t, "compress", "-shard-max", "3", src, filepath.Join(dir, "x.bin"))
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "shard ordering is broken")

	_, err := os.Stat(filepath.Join(dir, "x.bin"))
	require.True(t, os.IsNotExist(err))

	code, _, stderr = runCLI(t, "compress", "-workers", "0", src)
	require.Equal(t, 1, code)
	require.Contains(t, stderr, "workers")
}

func TestHeader_FromContainer(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	code, stdout, stderr := runCLI(t, "header", src)
	require.Equal(t, 0, code, stderr)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &doc))
	mapping := doc.Content[0]
	require.Equal(t, "version", mapping.Content[0].Value)
	require.Equal(t, "beam_center_x", mapping.Content[2].Value)

	var fields map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &fields))
	require.Equal(t, 10.5, fields["beam_center_x"])
	require.Equal(t, 5, fields["ncols"])
	require.InDelta(t, 0, fields["detector_distance"], 0)
}

func TestHeader_Errors(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	code, _, _ := runCLI(t, "header", "-o", "xml", src)
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "header", "-from", "tape", src)
	require.Equal(t, 2, code)

	code, _, _ = runCLI(t, "header", "-from", "multifile", src)
	require.Equal(t, 1, code)
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		src  string
		ct   format.CompressionType
		want string
	}{
		{"scan_0001_master.h5", format.CompressionNone, "scan_0001.bin"},
		{"/data/run.h5", format.CompressionZstd, "/data/run.bin.zst"},
		{"fixture.yaml", format.CompressionLZ4, "fixture.bin.lz4"},
		{"noext", format.CompressionNone, "noext.bin"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, defaultOutput(tt.src, tt.ct), tt.src)
	}
}

func TestInputKind(t *testing.T) {
	require.Equal(t, "multifile", inputKind("a.bin"))
	require.Equal(t, "multifile", inputKind("a.BIN.zst"))
	require.Equal(t, "container", inputKind("a_master.h5"))
	require.Equal(t, "container", inputKind("a.yaml"))
}

func TestCompress_EnvelopeFromOutputSuffix(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)
	dst := filepath.Join(dir, "out.bin.zst")

	code, _, stderr := runCLI(t, "compress", "-q", src, dst)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, data[:4], "zstd frame magic")

	code, stdout, stderr := runCLI(t, "header", "-o", "json", dst)
	require.Equal(t, 0, code, stderr)
	require.Contains(t, stdout, `"nrows": 3`)
}

func TestCompress_EnvelopeSuffixMismatch(t *testing.T) {
	dir := t.TempDir()
	src := writeFixture(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"lz4 into zst", []string{"-compression", "lz4", src, filepath.Join(dir, "a.bin.zst")}},
		{"zstd into plain", []string{"-compression", "zstd", src, filepath.Join(dir, "b.bin")}},
		{"none into sz", []string{"-compression", "none", src, filepath.Join(dir, "c.bin.sz")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, append([]string{"compress"}, tt.args...)...)
			require.Equal(t, 2, code)
			require.Contains(t, stderr, "does not match compression")
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
