package main

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/mfcomp"
	"github.com/arloliu/mfcomp/compressor"
	"github.com/arloliu/mfcomp/config"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/internal/metrics"
)

// sharedFlags are the flags accepted by every subcommand that reads a
// container. They override the values from -config only when set.
type sharedFlags struct {
	configPath string
	versionTag string
	endian     string
	logLevel   string
	logFormat  string
}

func (s *sharedFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&s.versionTag, "tag", "", "producing software version tag, selects the schema (default "+compressor.DefaultVersionTag+")")
	fs.StringVar(&s.endian, "endian", "", "byte order of the output: native, little or big")
	fs.StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&s.logFormat, "log-format", "", "log format: text or json")
}

// load reads the configuration and applies the flags the user set.
func (s *sharedFlags) load(fs *flag.FlagSet, apply func(cfg *config.Config, name string)) (*config.Config, error) {
	cfg := config.Default()
	if s.configPath != "" {
		loaded, err := config.Load(s.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "tag":
			cfg.VersionTag = s.versionTag
		case "endian":
			cfg.Endian = s.endian
		case "log-level":
			cfg.Log.Level = s.logLevel
		case "log-format":
			cfg.Log.Format = s.logFormat
		default:
			if apply != nil {
				apply(&cfg, f.Name)
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func runCompress(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("compress", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var shared sharedFlags
	var (
		workers       = fs.Int("workers", 1, "encoder workers; more than 1 enables parallel encoding")
		compression   = fs.String("compression", "", "output envelope: none, zstd, s2, lz4 or snappy")
		level         = fs.String("level", "", "envelope compression level: default, fastest, better or best")
		headerVersion = fs.Int("header-version", 0, "header version: 1 or 2")
		saturation    = fs.Int("saturation", 0, "exclusive upper pixel bound (default 65535)")
		tolerate      = fs.Bool("tolerate-geometry", false, "encode shards whose frame shape differs from the first shard")
		shardMin      = fs.Int("shard-min", 0, "first shard to encode")
		shardMax      = fs.Int("shard-max", 0, "last shard to encode; 0 means the last one")
		metricsFile   = fs.String("metrics", "", "write Prometheus metrics of the run to this textfile")
		quiet         = fs.Bool("q", false, "do not print the run summary")
	)
	shared.register(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return fmt.Errorf("%w: expected SRC [DST]", errUsage)
	}

	compressionSet := false
	cfg, err := shared.load(fs, func(cfg *config.Config, name string) {
		switch name {
		case "workers":
			cfg.Workers = *workers
		case "compression":
			cfg.Compression = *compression
			compressionSet = true
		case "level":
			cfg.CompressionLevel = *level
		case "header-version":
			cfg.HeaderVersion = *headerVersion
		case "saturation":
			cfg.Saturation = *saturation
		case "tolerate-geometry":
			cfg.GeometryTolerance = *tolerate
		case "shard-min":
			cfg.Shards.Min = *shardMin
		case "shard-max":
			cfg.Shards.Max = *shardMax
		case "metrics":
			cfg.MetricsFile = *metricsFile
		}
	})
	if err != nil {
		return err
	}

	src := fs.Arg(0)
	dst := fs.Arg(1)
	ct, err := format.ParseCompression(cfg.Compression)
	if err != nil {
		return err
	}
	if dst == "" {
		dst = defaultOutput(src, ct)
	} else {
		suffix := mfcomp.CompressionFromPath(dst)
		if !compressionSet && ct == format.CompressionNone {
			ct = suffix
			cfg.Compression = strings.ToLower(ct.String())
		}
		if ct != suffix {
			return fmt.Errorf("%w: output %s does not match compression %s (want suffix %q)",
				errUsage, dst, strings.ToLower(ct.String()), ct.Extension())
		}
	}

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	log := cfg.Log.NewLogger(stderr)
	reg := metrics.NewRegistry()
	opts = append(opts, compressor.WithLogger(log), compressor.WithMetrics(reg))

	sum, runErr := mfcomp.CompressFile(src, dst, opts...)

	if cfg.MetricsFile != "" {
		if err := reg.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Warn("write metrics", "path", cfg.MetricsFile, "error", err)
		}
	}

	if runErr != nil {
		return runErr
	}

	if *quiet {
		return nil
	}

	enc := yaml.NewEncoder(stdout)
	defer enc.Close()

	return enc.Encode(summaryReport{
		RunID:    sum.RunID,
		Output:   dst,
		Shards:   sum.Shards,
		Frames:   sum.Frames,
		Pixels:   sum.Pixels,
		Bytes:    sum.Bytes,
		Checksum: fmt.Sprintf("%016x", sum.Checksum),
	})
}

type summaryReport struct {
	RunID    string `yaml:"run_id"`
	Output   string `yaml:"output"`
	Shards   int    `yaml:"shards"`
	Frames   int    `yaml:"frames"`
	Pixels   int64  `yaml:"pixels"`
	Bytes    int64  `yaml:"bytes"`
	Checksum string `yaml:"checksum"`
}

// defaultOutput derives the multifile name from the master file name:
// scan_0001_master.h5 becomes scan_0001.bin, plus the envelope suffix.
func defaultOutput(src string, ct format.CompressionType) string {
	base := strings.TrimSuffix(src, filepath.Ext(src))
	base = strings.TrimSuffix(base, "_master")

	return base + ".bin" + ct.Extension()
}
