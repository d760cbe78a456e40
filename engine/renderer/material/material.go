package material

import (
	"slices"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
)

// Render queue bands. Materials at or above RenderQueueTransparent are drawn back to front
// after every opaque material.
const (
	RenderQueueBackground  = 1000
	RenderQueueGeometry    = 2000
	RenderQueueAlphaTest   = 2450
	RenderQueueTransparent = 3000
	RenderQueueOverlay     = 4000
)

var materialIDs atomic.Uint64

// material is the implementation of the Material interface.
type material struct {
	id       uint64
	name     string
	shader   shader.Shader
	defines  *shader.Defines
	uniforms map[string]any
	queue    int
	state    pipeline.State
	version  uint64
	refs     int
	disposed bool
}

// Material binds a Shader to the values of its material uniform block, the defines that select
// its program variant and the fixed-function state it is drawn with.
//
// Every mutation increments Version, which the renderer compares against the version it last
// uploaded to decide whether material uniforms must be pushed again.
type Material interface {
	// ID returns a process-unique identifier.
	ID() uint64

	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shader returns the shader the material draws with.
	Shader() shader.Shader

	// Defines returns the material-level define set. Call Touch after editing it.
	//
	// Returns:
	//   - *shader.Defines: the mutable define set
	Defines() *shader.Defines

	// SetUniform stores the value of a member of the material uniform block.
	//
	// Parameters:
	//   - name: the member name in the shader's material block
	//   - value: a value accepted by shader.UniformBlock.Encode
	SetUniform(name string, value any)

	// Uniform returns the stored value of a material uniform.
	//
	// Parameters:
	//   - name: the member name
	//
	// Returns:
	//   - any: the value
	//   - bool: whether the value is set
	Uniform(name string) (any, bool)

	// UniformNames returns the names of all set uniforms in sorted order.
	UniformNames() []string

	// RenderQueue returns the queue value used to order and split draw lists.
	RenderQueue() int

	// SetRenderQueue sets the queue value.
	//
	// Parameters:
	//   - queue: the render queue, see the RenderQueue constants
	SetRenderQueue(queue int)

	// IsTransparent reports whether the material belongs to the transparent draw list.
	IsTransparent() bool

	// State returns the fixed-function pipeline state.
	State() pipeline.State

	// SetState replaces the fixed-function pipeline state.
	//
	// Parameters:
	//   - state: the new state
	SetState(state pipeline.State)

	// Version returns the dirty-version counter.
	Version() uint64

	// Touch marks the material dirty after an external edit such as Defines().Add.
	Touch()

	// Retain increments the reference count.
	Retain()

	// Release decrements the reference count. At zero the material is disposed and releases
	// its shader.
	//
	// Returns:
	//   - bool: true if this call disposed the material
	Release() bool

	// RefCount returns the current reference count.
	RefCount() int

	// IsDisposed reports whether the material has been disposed.
	IsDisposed() bool
}

var _ Material = &material{}

// NewMaterial creates a material for s and retains s.
//
// Parameters:
//   - s: the shader to draw with; must not be nil
//   - options: variadic list of MaterialBuilderOption functions
//
// Returns:
//   - Material: the new material
func NewMaterial(s shader.Shader, options ...MaterialBuilderOption) Material {
	if s == nil {
		panic("material: shader must not be nil")
	}
	m := &material{
		id:       materialIDs.Add(1),
		name:     s.Name(),
		shader:   s,
		defines:  shader.NewDefines(),
		uniforms: make(map[string]any),
		queue:    RenderQueueGeometry,
		state:    pipeline.DefaultState,
		version:  1,
	}
	for _, opt := range options {
		opt(m)
	}
	s.Retain()
	return m
}

func (m *material) ID() uint64               { return m.id }
func (m *material) Name() string             { return m.name }
func (m *material) Shader() shader.Shader    { return m.shader }
func (m *material) Defines() *shader.Defines { return m.defines }
func (m *material) RenderQueue() int         { return m.queue }
func (m *material) IsTransparent() bool      { return m.queue >= RenderQueueTransparent }
func (m *material) State() pipeline.State    { return m.state }
func (m *material) Version() uint64          { return m.version }
func (m *material) Touch()                   { m.version++ }
func (m *material) Retain()                  { m.refs++ }
func (m *material) RefCount() int            { return m.refs }
func (m *material) IsDisposed() bool         { return m.disposed }

func (m *material) SetUniform(name string, value any) {
	m.uniforms[name] = value
	m.version++
}

func (m *material) Uniform(name string) (any, bool) {
	v, ok := m.uniforms[name]
	return v, ok
}

func (m *material) UniformNames() []string {
	names := make([]string, 0, len(m.uniforms))
	for name := range m.uniforms {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (m *material) SetRenderQueue(queue int) {
	if m.queue != queue {
		m.queue = queue
		m.version++
	}
}

func (m *material) SetState(state pipeline.State) {
	if m.state != state {
		m.state = state
		m.version++
	}
}

func (m *material) Release() bool {
	if m.disposed {
		return false
	}
	if m.refs > 0 {
		m.refs--
	}
	if m.refs > 0 {
		return false
	}
	m.disposed = true
	m.shader.Release()
	return true
}
