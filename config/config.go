// Package config loads the YAML run configuration of the mfcomp command and
// turns it into compressor options.
//
// Example file:
//
//	version_tag: v1.3.0
//	header_version: 2
//	endian: native
//	workers: 4
//	compression: zstd
//	compression_level: better
//	shards:
//	  min: 1
//	  max: 0
//	schema:
//	  shard_root: /entry/data
//	  paths:
//	    wavelength: entry/instrument/beam/incident_wavelength
//	log:
//	  level: info
//	  format: text
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/mfcomp/compress"
	"github.com/arloliu/mfcomp/compressor"
	"github.com/arloliu/mfcomp/encoding"
	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/errs"
	"github.com/arloliu/mfcomp/format"
	"github.com/arloliu/mfcomp/header"
	"github.com/arloliu/mfcomp/schema"
)

// Config is the complete run configuration.
type Config struct {
	VersionTag        string       `yaml:"version_tag" validate:"required"`
	HeaderVersion     int          `yaml:"header_version" validate:"oneof=1 2"`
	Endian            string       `yaml:"endian" validate:"oneof=native little le big be"`
	Saturation        int          `yaml:"saturation" validate:"min=2,max=65535"`
	Workers           int          `yaml:"workers" validate:"min=1,max=256"`
	GeometryTolerance bool         `yaml:"geometry_tolerance"`
	Compression       string       `yaml:"compression" validate:"oneof=none zstd s2 lz4 snappy"`
	CompressionLevel  string       `yaml:"compression_level" validate:"oneof=default fastest fast better best"`
	Shards            ShardsConfig `yaml:"shards"`
	ROI               *ROIConfig   `yaml:"roi,omitempty"`
	Schema            SchemaConfig `yaml:"schema"`
	Log               LogConfig    `yaml:"log"`
	MetricsFile       string       `yaml:"metrics_file"`
}

// ShardsConfig restricts the encoded shard range. Min 0 means all shards; Max 0
// means up to the last shard.
type ShardsConfig struct {
	Min int `yaml:"min" validate:"min=0"`
	Max int `yaml:"max" validate:"min=0"`
}

// ROIConfig is the region of interest recorded in the header.
type ROIConfig struct {
	RowsBegin int `yaml:"rows_begin" validate:"min=0"`
	RowsEnd   int `yaml:"rows_end" validate:"gtefield=RowsBegin"`
	ColsBegin int `yaml:"cols_begin" validate:"min=0"`
	ColsEnd   int `yaml:"cols_end" validate:"gtefield=ColsBegin"`
}

// SchemaConfig overrides the layout selected by the version tag.
type SchemaConfig struct {
	ShardRoot   string            `yaml:"shard_root" validate:"omitempty,startswith=/"`
	ShardPrefix string            `yaml:"shard_prefix"`
	Paths       map[string]string `yaml:"paths" validate:"dive,keys,required,endkeys,required"`
}

// LogConfig configures the slog handler of the command.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		VersionTag:       compressor.DefaultVersionTag,
		HeaderVersion:    int(format.HeaderV2),
		Endian:           "native",
		Saturation:       encoding.SaturationValue,
		Workers:          1,
		Compression:      "none",
		CompressionLevel: "default",
		Log:              LogConfig{Level: "info", Format: "text"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}

		return name
	})
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Decode reads a YAML configuration from r over the defaults and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse: %w", errs.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	for name := range c.Schema.Paths {
		if _, err := schema.ParseField(name); err != nil {
			return fmt.Errorf("schema.paths: %w", err)
		}
	}

	if c.Shards.Max != 0 && c.Shards.Max < c.Shards.Min {
		return fmt.Errorf("%w: shards.max %d is below shards.min %d", errs.ErrInvalidConfig, c.Shards.Max, c.Shards.Min)
	}

	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	// report the first failing field
	e := validationErrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Config.")
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", errs.ErrInvalidConfig, field)
	case "min":
		return fmt.Errorf("%w: %s must be at least %s", errs.ErrInvalidConfig, field, e.Param())
	case "max":
		return fmt.Errorf("%w: %s must not exceed %s", errs.ErrInvalidConfig, field, e.Param())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of [%s], got %v", errs.ErrInvalidConfig, field, e.Param(), e.Value())
	default:
		return fmt.Errorf("%w: %s failed %s validation", errs.ErrInvalidConfig, field, e.Tag())
	}
}

// Layout returns the schema table with the configured overrides applied to the
// layout the version tag selects.
func (c *Config) Layout() (schema.Table, error) {
	table := schema.DefaultTable()
	layout := table.ForTag(c.VersionTag)

	if c.Schema.ShardRoot != "" {
		layout = layout.WithShardRoot(c.Schema.ShardRoot)
	}
	if c.Schema.ShardPrefix != "" {
		layout = layout.WithShardPrefix(c.Schema.ShardPrefix)
	}
	for name, path := range c.Schema.Paths {
		field, err := schema.ParseField(name)
		if err != nil {
			return schema.Table{}, err
		}
		layout = layout.WithPath(field, path)
	}

	return table.With(layout), nil
}

// Options converts the configuration into compressor options.
func (c *Config) Options() ([]compressor.Option, error) {
	engine, err := endian.Parse(c.Endian)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	ct, err := format.ParseCompression(c.Compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidConfig, err)
	}

	level, err := compress.ParseLevel(c.CompressionLevel)
	if err != nil {
		return nil, err
	}

	table, err := c.Layout()
	if err != nil {
		return nil, err
	}

	opts := []compressor.Option{
		compressor.WithSchemaTable(table),
		compressor.WithVersionTag(c.VersionTag),
		compressor.WithHeaderVersion(format.HeaderVersion(c.HeaderVersion)),
		compressor.WithEndian(engine),
		compressor.WithSaturation(uint16(c.Saturation)),
		compressor.WithWorkers(c.Workers),
		compressor.WithGeometryTolerance(c.GeometryTolerance),
		compressor.WithCompression(ct, level),
	}

	if c.Shards.Min > 0 || c.Shards.Max > 0 {
		opts = append(opts, compressor.WithShardRange(max(c.Shards.Min, 1), c.Shards.Max))
	}

	if c.ROI != nil {
		opts = append(opts, compressor.WithROI(header.ROI{
			RowsBegin: c.ROI.RowsBegin,
			RowsEnd:   c.ROI.RowsEnd,
			ColsBegin: c.ROI.ColsBegin,
			ColsEnd:   c.ROI.ColsEnd,
		}))
	}

	return opts, nil
}
