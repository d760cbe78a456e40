package shader

import "go.uber.org/zap"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithFragmentSource gives the fragment stage its own WGSL module.
//
// Parameters:
//   - source: the WGSL source of the fragment stage
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithFragmentSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.fragment = source
	}
}

// WithChunk adds a custom include chunk.
//
// Parameters:
//   - name: the include name used in #include <name>
//   - source: the chunk source
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithChunk(name, source string) ShaderBuilderOption {
	return func(s *shader) {
		s.chunks[name] = source
	}
}

// WithLogger sets the logger used to report unresolved includes and compile failures.
func WithLogger(log *zap.Logger) ShaderBuilderOption {
	return func(s *shader) {
		if log != nil {
			s.log = log
		}
	}
}
