// Package memory implements an in-process container backend.
//
// A File holds scalars and frame stacks addressed by slash-separated paths;
// groups are implied by the paths. A Store hands out Readers over named Files
// and counts how often each was opened, which the compressor tests use to
// observe the open/close discipline. Files can also be loaded from YAML
// fixtures (see LoadFixture), so the CLI can run without an HDF5 library.
package memory

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/mfcomp/container"
	"github.com/arloliu/mfcomp/errs"
)

// Stack is a dense frame stack stored frame-major, then row-major.
type Stack struct {
	Shape container.StackShape
	Data  []uint16
}

// File is an in-memory container. Build it fully before opening readers on it;
// readers do not synchronize with later mutations.
type File struct {
	floats map[string]float64
	ints   map[string]int64
	stacks map[string]*Stack
	groups map[string]struct{}
}

// NewFile creates an empty File.
func NewFile() *File {
	return &File{
		floats: make(map[string]float64),
		ints:   make(map[string]int64),
		stacks: make(map[string]*Stack),
		groups: map[string]struct{}{"": {}},
	}
}

func (f *File) addParents(path string) {
	for i := strings.LastIndexByte(path, '/'); i > 0; i = strings.LastIndexByte(path[:i], '/') {
		f.groups[path[:i]] = struct{}{}
	}
}

// SetFloat64 stores a double scalar at path.
func (f *File) SetFloat64(path string, v float64) *File {
	path = container.CleanPath(path)
	f.floats[path] = v
	f.addParents(path)

	return f
}

// SetInt64 stores an integer scalar at path.
func (f *File) SetInt64(path string, v int64) *File {
	path = container.CleanPath(path)
	f.ints[path] = v
	f.addParents(path)

	return f
}

// AddGroup creates an empty group at path.
func (f *File) AddGroup(path string) *File {
	path = container.CleanPath(path)
	f.groups[path] = struct{}{}
	f.addParents(path)

	return f
}

// AddStack stores a frame stack at path. data must hold shape.Frames*Rows*Cols
// samples; a nil data allocates a zero-filled stack.
func (f *File) AddStack(path string, shape container.StackShape, data []uint16) error {
	if err := shape.Validate(); err != nil {
		return err
	}

	want := shape.Frames * shape.FrameSize()
	if data == nil {
		data = make([]uint16, want)
	}
	if len(data) != want {
		return fmt.Errorf("%w: stack %s has %d samples, shape %s needs %d",
			errs.ErrInvalidFrameSize, path, len(data), shape, want)
	}

	path = container.CleanPath(path)
	f.stacks[path] = &Stack{Shape: shape, Data: data}
	f.addParents(path)

	return nil
}

// Stack returns the stack stored at path.
func (f *File) Stack(path string) (*Stack, bool) {
	s, ok := f.stacks[container.CleanPath(path)]
	return s, ok
}

// SetPixel sets one pixel of a stored stack.
func (f *File) SetPixel(path string, frame, index int, value uint16) error {
	s, ok := f.Stack(path)
	if !ok {
		return fmt.Errorf("%w: stack %s", errs.ErrNotFound, path)
	}

	fs := s.Shape.FrameSize()
	if frame < 0 || frame >= s.Shape.Frames || index < 0 || index >= fs {
		return fmt.Errorf("%w: %s frame %d pixel %d", errs.ErrFrameOutOfRange, path, frame, index)
	}
	s.Data[frame*fs+index] = value

	return nil
}

// Reader opens a read handle over f.
func (f *File) Reader() container.Reader {
	return &reader{file: f}
}

type reader struct {
	file   *File
	closed bool
	onDone func()
}

var _ container.Reader = (*reader)(nil)

func (r *reader) check() error {
	if r.closed {
		return fmt.Errorf("memory container: read after close")
	}

	return nil
}

func (r *reader) Children(group string) ([]string, error) {
	if err := r.check(); err != nil {
		return nil, err
	}

	group = container.CleanPath(group)
	if _, ok := r.file.groups[group]; !ok {
		return nil, fmt.Errorf("%w: group %q", errs.ErrNotFound, group)
	}

	prefix := group + "/"
	if group == "" {
		prefix = ""
	}

	seen := make(map[string]struct{})
	collect := func(path string) {
		if path == group || !strings.HasPrefix(path, prefix) {
			return
		}
		rest := path[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = struct{}{}
		}
	}

	for p := range r.file.groups {
		collect(p)
	}
	for p := range r.file.stacks {
		collect(p)
	}
	for p := range r.file.floats {
		collect(p)
	}
	for p := range r.file.ints {
		collect(p)
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	slices.Sort(names)

	return names, nil
}

func (r *reader) ReadFloat64(path string) (float64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	path = container.CleanPath(path)
	if v, ok := r.file.floats[path]; ok {
		return v, nil
	}
	if v, ok := r.file.ints[path]; ok {
		return float64(v), nil
	}

	return 0, fmt.Errorf("%w: scalar %q", errs.ErrNotFound, path)
}

func (r *reader) ReadInt64(path string) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	path = container.CleanPath(path)
	if v, ok := r.file.ints[path]; ok {
		return v, nil
	}
	if v, ok := r.file.floats[path]; ok {
		return int64(v), nil
	}

	return 0, fmt.Errorf("%w: scalar %q", errs.ErrNotFound, path)
}

func (r *reader) StackShape(path string) (container.StackShape, error) {
	if err := r.check(); err != nil {
		return container.StackShape{}, err
	}

	s, ok := r.file.Stack(path)
	if !ok {
		return container.StackShape{}, fmt.Errorf("%w: stack %q", errs.ErrNotFound, path)
	}

	return s.Shape, nil
}

func (r *reader) ReadFrame(path string, index int, dst []uint16) error {
	if err := r.check(); err != nil {
		return err
	}

	s, ok := r.file.Stack(path)
	if !ok {
		return fmt.Errorf("%w: stack %q", errs.ErrNotFound, path)
	}
	if err := container.CheckFrame(path, s.Shape, index, dst); err != nil {
		return err
	}

	fs := s.Shape.FrameSize()
	copy(dst, s.Data[index*fs:(index+1)*fs])

	return nil
}

func (r *reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.onDone != nil {
		r.onDone()
	}

	return nil
}

// Store is a named collection of Files implementing container.Opener.
type Store struct {
	mu     sync.Mutex
	files  map[string]*File
	opens  map[string]int
	active int
}

var _ container.Opener = (*Store)(nil)

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		files: make(map[string]*File),
		opens: make(map[string]int),
	}
}

// Put registers f under name.
func (s *Store) Put(name string, f *File) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[name] = f
}

// Open opens a reader over the File registered as name.
func (s *Store) Open(name string) (container.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: container %q", errs.ErrNotFound, name)
	}
	s.opens[name]++
	s.active++

	return &reader{file: f, onDone: s.release}, nil
}

func (s *Store) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active--
}

// Opens returns how many times name has been opened.
func (s *Store) Opens(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.opens[name]
}

// Active returns the number of readers not yet closed.
func (s *Store) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}
