package material

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithUniform is an option builder that sets the initial value of a material uniform.
//
// Parameters:
//   - name: the member name in the shader's material block
//   - value: the value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the uniform to a material
func WithUniform(name string, value any) MaterialBuilderOption {
	return func(m *material) {
		m.uniforms[name] = value
	}
}

// WithDefines is an option builder that adds material-level defines ("NAME" or "NAME VALUE").
func WithDefines(defines ...string) MaterialBuilderOption {
	return func(m *material) {
		m.defines = shader.NewDefines(append(m.defines.Entries(), defines...)...)
	}
}

// WithRenderQueue is an option builder that sets the render queue of the material.
//
// Parameters:
//   - queue: the render queue value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the render queue to a material
func WithRenderQueue(queue int) MaterialBuilderOption {
	return func(m *material) {
		m.queue = queue
	}
}

// WithState is an option builder that sets the fixed-function pipeline state.
func WithState(state pipeline.State) MaterialBuilderOption {
	return func(m *material) {
		m.state = state
	}
}

// WithTransparent places the material in the transparent queue with alpha blending and no
// depth writes.
func WithTransparent() MaterialBuilderOption {
	return func(m *material) {
		m.queue = RenderQueueTransparent
		m.state = pipeline.TransparentState
	}
}
