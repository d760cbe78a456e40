package scene

import (
	"github.com/Carmen-Shannon/oxy-ecs/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAmbientColor sets the ambient light colour.
//
// Parameters:
//   - c: the linear RGB colour
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAmbientColor(c mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.ambientColor = c
	}
}

// WithFog enables linear fog.
func WithFog(color mgl32.Vec3, near, far float32) SceneBuilderOption {
	return func(s *scene) {
		s.fog = Fog{Enabled: true, Color: color, Near: near, Far: far}
		s.defines.Add("USE_FOG")
	}
}

// WithDefines adds scene-level defines ("NAME" or "NAME VALUE").
func WithDefines(defines ...string) SceneBuilderOption {
	return func(s *scene) {
		s.defines = shader.NewDefines(append(s.defines.Entries(), defines...)...)
	}
}
