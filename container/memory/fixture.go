package memory

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
)

// Fixture is the YAML description of a synthetic container:
//
//	floats:
//	  entry/instrument/detector/count_time: 0.00134
//	ints:
//	  entry/instrument/detector/bit_depth_image: 16
//	stacks:
//	  /entry/data/data_000001:
//	    frames: 3
//	    rows: 4
//	    cols: 4
//	    fill: 0
//	    pixels:
//	      - {frame: 1, index: 2, value: 5}
//
// A stack is either given densely through data (frames*rows*cols samples) or
// built from fill plus sparse pixels.
type Fixture struct {
	Floats map[string]float64      `yaml:"floats"`
	Ints   map[string]int64        `yaml:"ints"`
	Groups []string                `yaml:"groups"`
	Stacks map[string]FixtureStack `yaml:"stacks"`
}

// FixtureStack describes one frame stack.
type FixtureStack struct {
	Frames int            `yaml:"frames"`
	Rows   int            `yaml:"rows"`
	Cols   int            `yaml:"cols"`
	Fill   uint16         `yaml:"fill"`
	Data   []uint16       `yaml:"data"`
	Pixels []FixturePixel `yaml:"pixels"`
}

// FixturePixel sets a single pixel of a stack.
type FixturePixel struct {
	Frame int    `yaml:"frame"`
	Index int    `yaml:"index"`
	Value uint16 `yaml:"value"`
}

// Build materializes the fixture as a File.
func (fx *Fixture) Build() (*File, error) {
	f := NewFile()
	for p, v := range fx.Floats {
		f.SetFloat64(p, v)
	}
	for p, v := range fx.Ints {
		f.SetInt64(p, v)
	}
	for _, g := range fx.Groups {
		f.AddGroup(g)
	}

	for p, st := range fx.Stacks {
		shape := container.StackShape{Frames: st.Frames, Rows: st.Rows, Cols: st.Cols}
		data := st.Data
		if data == nil {
			if err := shape.Validate(); err != nil {
				return nil, fmt.Errorf("stack %s: %w", p, err)
			}
			data = make([]uint16, shape.Frames*shape.FrameSize())
			if st.Fill != 0 {
				for i := range data {
					data[i] = st.Fill
				}
			}
		}

		if err := f.AddStack(p, shape, data); err != nil {
			return nil, err
		}
		for _, px := range st.Pixels {
			if err := f.SetPixel(p, px.Frame, px.Index, px.Value); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}

// DecodeFixture reads a YAML fixture from r.
func DecodeFixture(r io.Reader) (*File, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	return fx.Build()
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	f, err := DecodeFixture(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// IsFixturePath reports whether name looks like a YAML fixture.
func IsFixturePath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// FixtureOpener opens YAML fixture files from disk, re-reading them on every Open.
type FixtureOpener struct{}

var _ container.Opener = FixtureOpener{}

// Open loads the fixture at name.
func (FixtureOpener) Open(name string) (container.Reader, error) {
	if !IsFixturePath(name) {
		return nil, fmt.Errorf("%w: %s is not a YAML fixture", errs.ErrBackendUnavailable, name)
	}

	f, err := LoadFixture(name)
	if err != nil {
		return nil, err
	}

	return f.Reader(), nil
}
