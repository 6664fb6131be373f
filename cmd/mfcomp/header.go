package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/mfcomp"
	"github.com/arloliu/mfcomp/compressor"
	"github.com/arloliu/mfcomp/endian"
	"github.com/arloliu/mfcomp/section"
)

func runHeader(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("header", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var shared sharedFlags
	var (
		output = fs.String("o", "yaml", "output format: yaml or json")
		from   = fs.String("from", "auto", "input kind: container, multifile or auto (by suffix)")
	)
	shared.register(fs)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%w: expected PATH", errUsage)
	}
	if *output != "yaml" && *output != "json" {
		return fmt.Errorf("%w: unknown output format %q", errUsage, *output)
	}

	cfg, err := shared.load(fs, nil)
	if err != nil {
		return err
	}

	path := fs.Arg(0)
	kind := *from
	if kind == "auto" {
		kind = inputKind(path)
	}

	var h section.Header
	switch kind {
	case "multifile":
		engine, err := endian.Parse(cfg.Endian)
		if err != nil {
			return err
		}
		if h, err = mfcomp.ReadHeaderFile(path, engine); err != nil {
			return err
		}
	case "container":
		opts, err := cfg.Options()
		if err != nil {
			return err
		}
		opts = append(opts, compressor.WithLogger(cfg.Log.NewLogger(stderr)))

		c, err := compressor.New(mfcomp.DefaultOpener, opts...)
		if err != nil {
			return err
		}
		hp, err := c.Header(path)
		if err != nil {
			return err
		}
		h = *hp
	default:
		return fmt.Errorf("%w: unknown input kind %q", errUsage, kind)
	}

	if *output == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(h.Fields())
	}

	return encodeYAML(stdout, &h)
}

// inputKind treats .bin files, with or without an envelope suffix, as
// multifiles and everything else as containers.
func inputKind(path string) string {
	name := strings.TrimSuffix(path, mfcomp.CompressionFromPath(path).Extension())
	if strings.EqualFold(filepath.Ext(name), ".bin") {
		return "multifile"
	}

	return "container"
}

// encodeYAML writes the header fields in wire order.
func encodeYAML(w io.Writer, h *section.Header) error {
	fields := h.Fields()
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range section.FieldNames {
		var v yaml.Node
		if err := v.Encode(fields[name]); err != nil {
			return err
		}
		doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: name}, &v)
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()

	return enc.Encode(doc)
}
