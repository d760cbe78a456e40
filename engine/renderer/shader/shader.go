package shader

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	// StageVertex is the vertex processing stage.
	StageVertex Stage = iota

	// StageFragment is the fragment processing stage.
	StageFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	name     string
	vertex   string
	fragment string
	chunks   map[string]string
	programs *ProgramCache
	refs     int
	disposed bool
	log      *zap.Logger
}

// Shader is a WGSL shader asset: unprocessed stage sources, the custom chunks its includes
// may reference and the cache of programs compiled from it. Shaders are reference counted.
type Shader interface {
	// Name returns the shader's identifier.
	Name() string

	// Source returns the unprocessed source of a stage.
	//
	// Parameters:
	//   - stage: StageVertex or StageFragment
	//
	// Returns:
	//   - string: the raw WGSL source with directives
	Source(stage Stage) string

	// Chunks returns the custom include chunks of this shader.
	//
	// Returns:
	//   - map[string]string: chunk sources keyed by include name
	Chunks() map[string]string

	// Programs returns the cache of programs compiled from this shader, keyed by define mask.
	//
	// Returns:
	//   - *ProgramCache: the shader's program cache
	Programs() *ProgramCache

	// Retain increments the reference count.
	Retain()

	// Release decrements the reference count. At zero the shader is disposed and its
	// programs are released.
	//
	// Returns:
	//   - bool: true if this call disposed the shader
	Release() bool

	// RefCount returns the current reference count.
	RefCount() int

	// IsDisposed reports whether the shader has been disposed.
	IsDisposed() bool
}

var _ Shader = &shader{}

// NewShader creates a Shader whose vertex and fragment entry points live in one WGSL module.
// Use WithFragmentSource to give the fragment stage its own module.
//
// Parameters:
//   - name: a unique identifier for the shader
//   - source: the WGSL source of the vertex stage (and fragment stage unless overridden)
//   - options: variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: a new Shader with a reference count of zero
func NewShader(name, source string, options ...ShaderBuilderOption) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s needs a source", name))
	}
	s := &shader{
		name:     name,
		vertex:   source,
		fragment: source,
		chunks:   make(map[string]string),
		log:      zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.programs = newProgramCache(s, s.log)
	return s
}

// NewShaderFromPath reads a WGSL source file and creates a Shader from it.
//
// Parameters:
//   - name: a unique identifier for the shader
//   - path: the file path to read WGSL source from
//   - options: variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: the new shader
//   - error: an error if the file could not be read
func NewShaderFromPath(name, path string, options ...ShaderBuilderOption) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shader %s: %w", path, err)
	}
	return NewShader(name, string(data), options...), nil
}

func (s *shader) Name() string {
	return s.name
}

func (s *shader) Source(stage Stage) string {
	if stage == StageFragment {
		return s.fragment
	}
	return s.vertex
}

func (s *shader) Chunks() map[string]string {
	return s.chunks
}

func (s *shader) Programs() *ProgramCache {
	return s.programs
}

func (s *shader) Retain() {
	s.refs++
}

func (s *shader) Release() bool {
	if s.disposed {
		return false
	}
	if s.refs > 0 {
		s.refs--
	}
	if s.refs > 0 {
		return false
	}
	s.disposed = true
	s.programs.Release()
	return true
}

func (s *shader) RefCount() int {
	return s.refs
}

func (s *shader) IsDisposed() bool {
	return s.disposed
}
