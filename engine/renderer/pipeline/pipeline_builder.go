package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// StateBuilderOption is a functional option used to configure a State during construction.
type StateBuilderOption func(*State)

// WithDepthTestEnabled sets whether depth testing is enabled.
//
// Parameters:
//   - enabled: a boolean indicating whether depth testing should be enabled
//
// Returns:
//   - StateBuilderOption: a function that sets the depth test flag
func WithDepthTestEnabled(enabled bool) StateBuilderOption {
	return func(s *State) {
		s.depthTest = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writes are enabled.
//
// Parameters:
//   - enabled: a boolean indicating whether depth writes should be enabled
//
// Returns:
//   - StateBuilderOption: a function that sets the depth write flag
func WithDepthWriteEnabled(enabled bool) StateBuilderOption {
	return func(s *State) {
		s.depthWrite = enabled
	}
}

// WithDepthBias sets the constant and slope-scaled depth bias, used by shadow casters.
//
// Parameters:
//   - bias: the constant depth bias
//   - slopeScale: the slope-scaled depth bias
//
// Returns:
//   - StateBuilderOption: a function that sets the depth bias
func WithDepthBias(bias int32, slopeScale float32) StateBuilderOption {
	return func(s *State) {
		s.depthBias = bias
		s.depthBiasSlopeScale = slopeScale
	}
}

// WithBlend sets the blend mode.
func WithBlend(mode BlendMode) StateBuilderOption {
	return func(s *State) {
		s.blend = mode
	}
}

// WithCullMode sets the face culling mode.
func WithCullMode(mode wgpu.CullMode) StateBuilderOption {
	return func(s *State) {
		s.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
func WithTopology(topology wgpu.PrimitiveTopology) StateBuilderOption {
	return func(s *State) {
		s.topology = topology
	}
}

// WithFrontFace sets the winding order of front faces.
func WithFrontFace(frontFace wgpu.FrontFace) StateBuilderOption {
	return func(s *State) {
		s.frontFace = frontFace
	}
}

// WithWriteMask sets the colour channels written by the technique.
func WithWriteMask(writeMask wgpu.ColorWriteMask) StateBuilderOption {
	return func(s *State) {
		s.writeMask = writeMask
	}
}
